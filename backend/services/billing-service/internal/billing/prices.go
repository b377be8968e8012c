package billing

import (
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// RateLookup resolves the price of the hour bucket containing t. A missing
// price is reported with found=false and a zero price, never as an error.
type RateLookup interface {
	RateForHour(t time.Time) (price float64, found bool)
}

// PriceTable is an in-memory snapshot of hourly prices keyed by hour start.
type PriceTable map[time.Time]float64

// NewPriceTable indexes entries by their (re-floored) hour start. Later
// entries for the same hour win.
func NewPriceTable(entries []models.PriceEntry) PriceTable {
	table := make(PriceTable, len(entries))
	for _, e := range entries {
		table[HourStart(e.HourStart)] = e.PricePerKWh
	}
	return table
}

// RateForHour implements RateLookup.
func (p PriceTable) RateForHour(t time.Time) (float64, bool) {
	price, ok := p[HourStart(t)]
	return price, ok
}
