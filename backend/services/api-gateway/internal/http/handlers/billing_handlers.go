package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"greenvolt/backend/services/api-gateway/internal/clients"
	"greenvolt/backend/services/api-gateway/internal/http/middleware"
)

// APIPrefix is stripped before forwarding to billing-service.
const APIPrefix = "/api"

// BillingHandlers proxies billing-service endpoints.
type BillingHandlers struct {
	client *clients.BillingClient
	logger *zap.Logger
}

// NewBillingHandlers returns handler.
func NewBillingHandlers(client *clients.BillingClient, logger *zap.Logger) *BillingHandlers {
	return &BillingHandlers{client: client, logger: logger}
}

// Forward relays an authenticated /api request to billing-service with the
// verified caller in X-User-ID.
func (h *BillingHandlers) Forward(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	target := strings.TrimPrefix(r.URL.Path, APIPrefix)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	resp, err := h.client.Forward(r.Context(), r.Method, target, body, userID, middleware.RequestIDFromContext(r.Context()))
	if err != nil {
		writeProxyError(w, h.logger, "billing service", err)
		return
	}
	writeUpstream(w, resp)
}
