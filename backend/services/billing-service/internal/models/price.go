package models

import "time"

// PriceEntry is the price of one hour bucket. HourStart is always floored to
// the hour in UTC.
type PriceEntry struct {
	ID          int64     `db:"id" json:"id"`
	HourStart   time.Time `db:"hour_start" json:"hour_start"`
	PricePerKWh float64   `db:"price_per_kwh" json:"price_per_kwh"`
}

// Upsert outcomes.
const (
	PriceStatusAdded   = "added"
	PriceStatusUpdated = "updated"
	PriceStatusFailed  = "failed"
)
