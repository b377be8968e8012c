package httpserver

import (
	"net/http"

	libmetrics "greenvolt/backend/libs/metrics"
)

// Routes aggregates handlers for HTTP server.
type Routes struct {
	Signup http.HandlerFunc
	Login  http.HandlerFunc
	Me     http.HandlerFunc
	Health http.HandlerFunc
}

// NewRouter wires all HTTP routes. reg may be nil.
func NewRouter(routes Routes, reg *libmetrics.Registry) http.Handler {
	mux := http.NewServeMux()
	handle := func(path, verb string, h http.HandlerFunc) {
		if h == nil {
			return
		}
		var next http.Handler = method(verb, h)
		if reg != nil {
			next = reg.Instrument(path, next)
		}
		mux.Handle(path, next)
	}

	handle("/auth/signup", http.MethodPost, routes.Signup)
	handle("/auth/login", http.MethodPost, routes.Login)
	handle("/auth/me", http.MethodGet, routes.Me)
	handle("/health", http.MethodGet, routes.Health)
	if reg != nil {
		mux.Handle("/metrics", reg.Handler())
	}
	return mux
}

func method(expected string, handler http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	}
}
