package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/service"
)

// ConsumptionHandler serves /consumption.
type ConsumptionHandler struct {
	svc    *service.ConsumptionService
	logger *zap.Logger
}

// NewConsumptionHandler builds handler.
func NewConsumptionHandler(svc *service.ConsumptionService, logger *zap.Logger) *ConsumptionHandler {
	return &ConsumptionHandler{svc: svc, logger: logger}
}

type consumptionRequest struct {
	UserID    int64     `json:"user_id"`
	MeterID   int64     `json:"smart_meter_id"`
	Timestamp Timestamp `json:"timestamp"`
	EnergyKWh *float64  `json:"energy_kwh"`
}

func (c consumptionRequest) input() service.ConsumptionInput {
	return service.ConsumptionInput{
		UserID:    c.UserID,
		MeterID:   c.MeterID,
		Timestamp: c.Timestamp.Time,
		EnergyKWh: c.EnergyKWh,
	}
}

// Create handles POST /consumption.
func (h *ConsumptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req consumptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EnergyKWh == nil {
		writeError(w, http.StatusBadRequest, "energy_kwh required")
		return
	}
	record, err := h.svc.Create(r.Context(), caller, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Bulk handles POST /consumption/bulk.
func (h *ConsumptionHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req []consumptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items := make([]service.ConsumptionInput, 0, len(req))
	for _, c := range req {
		items = append(items, c.input())
	}
	result, err := h.svc.BulkCreate(r.Context(), caller, items)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// List handles GET /consumption/{user_id}?start=&end=.
func (h *ConsumptionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	q := r.URL.Query()
	from, err := parseTime(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseTime(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.svc.ListByUser(r.Context(), caller, userID, from, to)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

