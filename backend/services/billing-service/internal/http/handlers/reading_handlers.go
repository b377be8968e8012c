package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/service"
)

// ReadingHandler serves /readings.
type ReadingHandler struct {
	svc    *service.ReadingService
	logger *zap.Logger
}

// NewReadingHandler builds handler.
func NewReadingHandler(svc *service.ReadingService, logger *zap.Logger) *ReadingHandler {
	return &ReadingHandler{svc: svc, logger: logger}
}

type recordReadingRequest struct {
	MeterID   int64      `json:"meter_id"`
	EnergyKWh *float64   `json:"energy_kwh"`
	Timestamp *Timestamp `json:"timestamp"`
}

// Create handles POST /readings.
func (h *ReadingHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req recordReadingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EnergyKWh == nil {
		writeError(w, http.StatusBadRequest, "energy_kwh required")
		return
	}
	reading, err := h.svc.RecordReading(r.Context(), caller, service.RecordReadingInput{
		MeterID:   req.MeterID,
		EnergyKWh: *req.EnergyKWh,
		Timestamp: req.Timestamp.ptr(),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// List handles GET /readings/{meter_id}.
func (h *ReadingHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	meterID, ok := pathID(w, r, "meter_id")
	if !ok {
		return
	}
	readings, err := h.svc.ListByMeter(r.Context(), caller, meterID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// Daily handles GET /readings/{meter_id}/daily?date=.
func (h *ReadingHandler) Daily(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	meterID, ok := pathID(w, r, "meter_id")
	if !ok {
		return
	}
	total, err := h.svc.DailyTotal(r.Context(), caller, meterID, r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

// Monthly handles GET /readings/{meter_id}/monthly?month=.
func (h *ReadingHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	meterID, ok := pathID(w, r, "meter_id")
	if !ok {
		return
	}
	total, err := h.svc.MonthlyTotal(r.Context(), caller, meterID, r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}
