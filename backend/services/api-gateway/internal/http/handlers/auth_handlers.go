package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/api-gateway/internal/clients"
	"greenvolt/backend/services/api-gateway/internal/http/middleware"
)

// AuthHandlers proxies auth-service endpoints.
type AuthHandlers struct {
	client *clients.AuthClient
	logger *zap.Logger
}

// NewAuthHandlers returns handler struct.
func NewAuthHandlers(client *clients.AuthClient, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{client: client, logger: logger}
}

func requestHeaders(r *http.Request) http.Header {
	h := http.Header{}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		h.Set(clients.RequestIDHeader, id)
	}
	return h
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	resp, err := h.client.Signup(r.Context(), body, requestHeaders(r))
	if err != nil {
		writeProxyError(w, h.logger, "auth service", err)
		return
	}
	writeUpstream(w, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	resp, err := h.client.Login(r.Context(), body, requestHeaders(r))
	if err != nil {
		writeProxyError(w, h.logger, "auth service", err)
		return
	}
	writeUpstream(w, resp)
}

// Me handles GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	resp, err := h.client.Me(r.Context(), userID, requestHeaders(r))
	if err != nil {
		writeProxyError(w, h.logger, "auth service", err)
		return
	}
	writeUpstream(w, resp)
}
