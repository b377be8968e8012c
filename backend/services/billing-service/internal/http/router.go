package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	libmetrics "greenvolt/backend/libs/metrics"
	"greenvolt/backend/services/billing-service/internal/http/handlers"
)

// Routes groups HTTP handlers.
type Routes struct {
	Pricing     *handlers.PricingHandler
	Meters      *handlers.MeterHandler
	Readings    *handlers.ReadingHandler
	Charging    *handlers.ChargingHandler
	Consumption *handlers.ConsumptionHandler
	Billing     *handlers.BillingHandler
	Health      http.HandlerFunc
}

// NewRouter registers service endpoints. Every route is instrumented under
// its path template.
func NewRouter(routes Routes, reg *libmetrics.Registry) http.Handler {
	r := mux.NewRouter()
	handle := func(path string, h http.HandlerFunc, methods ...string) {
		var next http.Handler = h
		if reg != nil {
			next = reg.Instrument(path, h)
		}
		r.Handle(path, next).Methods(methods...)
	}

	if p := routes.Pricing; p != nil {
		handle("/pricing", p.Set, http.MethodPost)
		handle("/pricing", p.List, http.MethodGet)
		handle("/pricing/bulk", p.Bulk, http.MethodPost)
		handle("/pricing/rate", p.Rate, http.MethodGet)
	}
	if m := routes.Meters; m != nil {
		handle("/meters", m.Create, http.MethodPost)
		handle("/meters/user/{user_id:[0-9]+}", m.ListByUser, http.MethodGet)
	}
	if rd := routes.Readings; rd != nil {
		handle("/readings", rd.Create, http.MethodPost)
		handle("/readings/{meter_id:[0-9]+}", rd.List, http.MethodGet)
		handle("/readings/{meter_id:[0-9]+}/daily", rd.Daily, http.MethodGet)
		handle("/readings/{meter_id:[0-9]+}/monthly", rd.Monthly, http.MethodGet)
	}
	if c := routes.Charging; c != nil {
		handle("/ev-charging", c.Create, http.MethodPost)
		handle("/ev-charging/{user_id:[0-9]+}", c.List, http.MethodGet)
		handle("/ev-charging/{user_id:[0-9]+}/monthly-summary", c.MonthlySummary, http.MethodGet)
	}
	if c := routes.Consumption; c != nil {
		handle("/consumption", c.Create, http.MethodPost)
		handle("/consumption/bulk", c.Bulk, http.MethodPost)
		handle("/consumption/{user_id:[0-9]+}", c.List, http.MethodGet)
	}
	if b := routes.Billing; b != nil {
		handle("/billing/{user_id:[0-9]+}", b.Bill, http.MethodGet)
		handle("/billing/{user_id:[0-9]+}/detailed_hourly", b.Hourly, http.MethodGet)
		handle("/billing/{user_id:[0-9]+}/items", b.Items, http.MethodGet)
		handle("/billing/{user_id:[0-9]+}/export", b.Export, http.MethodGet)
		handle("/analytics/{user_id:[0-9]+}", b.Analytics, http.MethodGet)
	}
	if routes.Health != nil {
		r.HandleFunc("/health", routes.Health).Methods(http.MethodGet)
	}
	if reg != nil {
		r.Handle("/metrics", reg.Handler()).Methods(http.MethodGet)
	}
	return r
}
