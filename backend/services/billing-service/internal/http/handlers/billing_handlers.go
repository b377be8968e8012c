package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/export"
	"greenvolt/backend/services/billing-service/internal/service"
)

// BillingHandler serves /billing and /analytics.
type BillingHandler struct {
	svc    *service.BillingService
	logger *zap.Logger
}

// NewBillingHandler builds handler.
func NewBillingHandler(svc *service.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{svc: svc, logger: logger}
}

type reportFunc[T any] func(ctx context.Context, callerID, userID int64, start, end string) (T, error)

// serveReport runs a date-ranged report for the {user_id} path variable.
func serveReport[T any](h *BillingHandler, w http.ResponseWriter, r *http.Request, build reportFunc[T]) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	q := r.URL.Query()
	report, err := build(r.Context(), caller, userID, q.Get("start"), q.Get("end"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Bill handles GET /billing/{user_id}.
func (h *BillingHandler) Bill(w http.ResponseWriter, r *http.Request) {
	serveReport(h, w, r, h.svc.Bill)
}

// Hourly handles GET /billing/{user_id}/detailed_hourly.
func (h *BillingHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	serveReport(h, w, r, h.svc.HourlyBill)
}

// Items handles GET /billing/{user_id}/items.
func (h *BillingHandler) Items(w http.ResponseWriter, r *http.Request) {
	serveReport(h, w, r, h.svc.LineItems)
}

// Analytics handles GET /analytics/{user_id}.
func (h *BillingHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	serveReport(h, w, r, h.svc.Analytics)
}

// Export handles GET /billing/{user_id}/export?format=pdf|xlsx.
func (h *BillingHandler) Export(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	q := r.URL.Query()
	bill, err := h.svc.HourlyBill(r.Context(), caller, userID, q.Get("start"), q.Get("end"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	doc, err := export.Render(q.Get("format"), bill)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "format must be pdf or xlsx")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.Warn("failed to write export", zap.Error(err))
	}
}
