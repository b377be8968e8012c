package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	libmetrics "greenvolt/backend/libs/metrics"
)

// Billing holds the billing-service collectors.
type Billing struct {
	priceUpserts     *prometheus.CounterVec
	missingRateHours *prometheus.CounterVec
	reports          *prometheus.CounterVec
	sessionsPriced   prometheus.Counter
	sessionEnergy    prometheus.Counter
	sessionCost      prometheus.Counter
	uncoveredHours   prometheus.Gauge
	auditRuns        *prometheus.CounterVec
}

// NewBilling registers billing collectors on reg.
func NewBilling(reg *libmetrics.Registry) *Billing {
	ns := reg.Namespace()
	b := &Billing{
		priceUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "price_upserts_total",
			Help:      "Hourly price upserts by outcome",
		}, []string{"status"}),
		missingRateHours: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "missing_rate_hours_total",
			Help:      "Unpriced hour buckets touched while billing, by view",
		}, []string{"view"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reports_built_total",
			Help:      "Billing reports built, by view",
		}, []string{"view"}),
		sessionsPriced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "ev_sessions_priced_total",
			Help:      "EV charging sessions priced at creation",
		}),
		sessionEnergy: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "ev_session_energy_kwh_total",
			Help:      "Energy of priced EV charging sessions",
		}),
		sessionCost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "ev_session_cost_total",
			Help:      "Snapshot cost of priced EV charging sessions",
		}),
		uncoveredHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "price_uncovered_hours",
			Help:      "Hours in the audit horizon without a price entry",
		}),
		auditRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "price_audit_runs_total",
			Help:      "Price coverage audit runs by result",
		}, []string{"result"}),
	}
	reg.Registerer().MustRegister(
		b.priceUpserts,
		b.missingRateHours,
		b.reports,
		b.sessionsPriced,
		b.sessionEnergy,
		b.sessionCost,
		b.uncoveredHours,
		b.auditRuns,
	)
	return b
}

// PriceUpserted counts one upsert outcome.
func (b *Billing) PriceUpserted(status string) {
	b.priceUpserts.WithLabelValues(status).Inc()
}

// MissingRateHours adds unpriced hours seen by a view.
func (b *Billing) MissingRateHours(view string, hours int) {
	if hours > 0 {
		b.missingRateHours.WithLabelValues(view).Add(float64(hours))
	}
}

// ReportBuilt counts one report.
func (b *Billing) ReportBuilt(view string) {
	b.reports.WithLabelValues(view).Inc()
}

// SessionPriced records a priced charging session.
func (b *Billing) SessionPriced(energyKWh, cost float64) {
	b.sessionsPriced.Inc()
	if energyKWh > 0 {
		b.sessionEnergy.Add(energyKWh)
	}
	if cost > 0 {
		b.sessionCost.Add(cost)
	}
}

// PriceCoverage records the result of a price coverage audit.
func (b *Billing) PriceCoverage(uncovered int, ok bool) {
	b.uncoveredHours.Set(float64(uncovered))
	b.auditRuns.WithLabelValues(strconv.FormatBool(ok)).Inc()
}
