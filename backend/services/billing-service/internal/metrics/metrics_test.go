package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libmetrics "greenvolt/backend/libs/metrics"
)

// sample returns the value of the series name{label=value}, or of the
// unlabelled series when label is empty.
func sample(t *testing.T, reg *libmetrics.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			matched := label == ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					matched = true
				}
			}
			if !matched {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("series %s{%s=%q} not found", name, label, value)
	return 0
}

func TestBillingCollectors(t *testing.T) {
	reg := libmetrics.New("greenvolt_billing")
	b := NewBilling(reg)

	b.PriceUpserted("added")
	b.PriceUpserted("added")
	b.PriceUpserted("updated")
	b.MissingRateHours("bill", 3)
	b.MissingRateHours("bill", 0)
	b.SessionPriced(4, 1.0)
	b.PriceCoverage(5, true)

	assert.Equal(t, 2.0, sample(t, reg, "greenvolt_billing_price_upserts_total", "status", "added"))
	assert.Equal(t, 1.0, sample(t, reg, "greenvolt_billing_price_upserts_total", "status", "updated"))
	assert.Equal(t, 3.0, sample(t, reg, "greenvolt_billing_missing_rate_hours_total", "view", "bill"))
	assert.Equal(t, 1.0, sample(t, reg, "greenvolt_billing_ev_sessions_priced_total", "", ""))
	assert.Equal(t, 4.0, sample(t, reg, "greenvolt_billing_ev_session_energy_kwh_total", "", ""))
	assert.Equal(t, 5.0, sample(t, reg, "greenvolt_billing_price_uncovered_hours", "", ""))
	assert.Equal(t, 1.0, sample(t, reg, "greenvolt_billing_price_audit_runs_total", "result", "true"))
}
