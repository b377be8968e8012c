package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/billing"
	"greenvolt/backend/services/billing-service/internal/models"
	"greenvolt/backend/services/billing-service/internal/service"
)

// ChargingHandler serves /ev-charging.
type ChargingHandler struct {
	svc    *service.ChargingService
	logger *zap.Logger
}

// NewChargingHandler builds handler.
func NewChargingHandler(svc *service.ChargingService, logger *zap.Logger) *ChargingHandler {
	return &ChargingHandler{svc: svc, logger: logger}
}

type createSessionRequest struct {
	UserID    int64      `json:"user_id"`
	StartTime *Timestamp `json:"start_time"`
	EndTime   *Timestamp `json:"end_time"`
	EnergyKWh *float64   `json:"energy_kwh"`
}

type sessionResponse struct {
	*models.ChargingSession
	MissingRateHours int              `json:"missing_rate_hours"`
	Buckets          []billing.Bucket `json:"buckets"`
}

// Create handles POST /ev-charging.
func (h *ChargingHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EnergyKWh == nil {
		writeError(w, http.StatusBadRequest, "energy_kwh required")
		return
	}

	session, alloc, err := h.svc.CreateSession(r.Context(), caller, service.CreateSessionInput{
		UserID:    req.UserID,
		StartTime: req.StartTime.ptr(),
		EndTime:   req.EndTime.ptr(),
		EnergyKWh: *req.EnergyKWh,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ChargingSession:  session,
		MissingRateHours: alloc.MissingRateHours,
		Buckets:          alloc.Buckets,
	})
}

// List handles GET /ev-charging/{user_id}.
func (h *ChargingHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	sessions, err := h.svc.ListByUser(r.Context(), caller, userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// MonthlySummary handles GET /ev-charging/{user_id}/monthly-summary?month=.
func (h *ChargingHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	summary, err := h.svc.MonthlySummary(r.Context(), caller, userID, r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
