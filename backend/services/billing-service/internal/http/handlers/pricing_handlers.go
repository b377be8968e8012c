package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/billing"
	"greenvolt/backend/services/billing-service/internal/models"
	"greenvolt/backend/services/billing-service/internal/service"
)

// PricingHandler serves /pricing.
type PricingHandler struct {
	svc    *service.PricingService
	logger *zap.Logger
}

// NewPricingHandler builds handler.
func NewPricingHandler(svc *service.PricingService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{svc: svc, logger: logger}
}

// priceRequest accepts the hour as either hour_start or date.
type priceRequest struct {
	HourStart   *Timestamp `json:"hour_start"`
	Date        *Timestamp `json:"date"`
	PricePerKWh *float64   `json:"price_per_kwh"`
}

func (p priceRequest) input() service.PriceInput {
	in := service.PriceInput{PricePerKWh: p.PricePerKWh}
	switch {
	case p.HourStart != nil:
		in.HourStart = p.HourStart.Time
	case p.Date != nil:
		in.HourStart = p.Date.Time
	}
	return in
}

// Set handles POST /pricing.
func (h *PricingHandler) Set(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SetPrice(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	status := http.StatusOK
	if res.Status == models.PriceStatusAdded {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// Bulk handles POST /pricing/bulk.
func (h *PricingHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req []priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entries := make([]service.PriceInput, 0, len(req))
	for _, p := range req {
		entries = append(entries, p.input())
	}

	results, err := h.svc.BulkSetPrices(r.Context(), entries)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// List handles GET /pricing?start=&end=.
func (h *PricingHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	q := r.URL.Query()
	dates, err := billing.ParseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	prices, err := h.svc.ListPrices(r.Context(), dates)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

// Rate handles GET /pricing/rate?at=.
func (h *PricingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	at, err := parseTime(r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.RateAt(r.Context(), at)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
