package models

import "time"

// ChargingSession is an EV charging session. Cost is computed once at
// creation and never recomputed.
type ChargingSession struct {
	ID        int64      `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time"`
	EnergyKWh float64    `db:"energy_kwh" json:"energy_kwh"`
	Cost      float64    `db:"cost" json:"cost"`
}
