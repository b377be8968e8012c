package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	libmetrics "greenvolt/backend/libs/metrics"
	"greenvolt/backend/services/api-gateway/internal/http/handlers"
	"greenvolt/backend/services/api-gateway/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AuthHandlers    *handlers.AuthHandlers
	BillingHandlers *handlers.BillingHandlers
	HealthHandler   http.HandlerFunc
	Metrics         *libmetrics.Registry
}

// billingRoute is a billing-service endpoint exposed under /api.
type billingRoute struct {
	method string
	path   string
}

var billingRoutes = []billingRoute{
	{http.MethodPost, "/pricing"},
	{http.MethodGet, "/pricing"},
	{http.MethodPost, "/pricing/bulk"},
	{http.MethodGet, "/pricing/rate"},
	{http.MethodPost, "/meters"},
	{http.MethodGet, "/meters/user/{user_id:[0-9]+}"},
	{http.MethodPost, "/readings"},
	{http.MethodGet, "/readings/{meter_id:[0-9]+}"},
	{http.MethodGet, "/readings/{meter_id:[0-9]+}/daily"},
	{http.MethodGet, "/readings/{meter_id:[0-9]+}/monthly"},
	{http.MethodPost, "/ev-charging"},
	{http.MethodGet, "/ev-charging/{user_id:[0-9]+}"},
	{http.MethodGet, "/ev-charging/{user_id:[0-9]+}/monthly-summary"},
	{http.MethodPost, "/consumption"},
	{http.MethodPost, "/consumption/bulk"},
	{http.MethodGet, "/consumption/{user_id:[0-9]+}"},
	{http.MethodGet, "/billing/{user_id:[0-9]+}"},
	{http.MethodGet, "/billing/{user_id:[0-9]+}/detailed_hourly"},
	{http.MethodGet, "/billing/{user_id:[0-9]+}/items"},
	{http.MethodGet, "/billing/{user_id:[0-9]+}/export"},
	{http.MethodGet, "/analytics/{user_id:[0-9]+}"},
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()
	instrument := func(route string, h http.Handler) http.Handler {
		if deps.Metrics == nil {
			return h
		}
		return deps.Metrics.Instrument(route, h)
	}

	r.Handle("/health", deps.HealthHandler).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix(handlers.APIPrefix).Subrouter()
	api.Handle("/auth/signup", instrument("/api/auth/signup", http.HandlerFunc(deps.AuthHandlers.Signup))).Methods(http.MethodPost)
	api.Handle("/auth/login", instrument("/api/auth/login", http.HandlerFunc(deps.AuthHandlers.Login))).Methods(http.MethodPost)

	authenticated := func(route string, h http.HandlerFunc) http.Handler {
		return instrument(route, middleware.Chain(h, authMiddleware))
	}
	api.Handle("/auth/me", authenticated("/api/auth/me", deps.AuthHandlers.Me)).Methods(http.MethodGet)
	for _, br := range billingRoutes {
		api.Handle(br.path, authenticated(handlers.APIPrefix+br.path, deps.BillingHandlers.Forward)).Methods(br.method)
	}
	return r
}
