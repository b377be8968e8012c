package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/service"
)

// MeterHandler serves /meters.
type MeterHandler struct {
	svc    *service.MeterService
	logger *zap.Logger
}

// NewMeterHandler builds handler.
func NewMeterHandler(svc *service.MeterService, logger *zap.Logger) *MeterHandler {
	return &MeterHandler{svc: svc, logger: logger}
}

type createMeterRequest struct {
	SerialNumber string `json:"serial_number"`
	Location     string `json:"location"`
	UserID       int64  `json:"user_id"`
}

// Create handles POST /meters.
func (h *MeterHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req createMeterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	meter, err := h.svc.CreateMeter(r.Context(), caller, service.CreateMeterInput{
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
		UserID:       req.UserID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, meter)
}

// ListByUser handles GET /meters/user/{user_id}.
func (h *MeterHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	meters, err := h.svc.ListByUser(r.Context(), caller, userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meters)
}
