package models

import "time"

// SmartMeter is a household meter owned by a user.
type SmartMeter struct {
	ID               int64     `db:"id" json:"id"`
	SerialNumber     string    `db:"serial_number" json:"serial_number"`
	Location         string    `db:"location" json:"location"`
	InstallationDate time.Time `db:"installation_date" json:"installation_date"`
	UserID           int64     `db:"user_id" json:"user_id"`
}

// MeterReading is an immutable energy measurement taken by a meter.
type MeterReading struct {
	ID        int64     `db:"id" json:"id"`
	MeterID   int64     `db:"meter_id" json:"meter_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	EnergyKWh float64   `db:"energy_kwh" json:"energy_kwh"`
}

// Consumption is a generic energy record used by bulk analytics.
type Consumption struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	MeterID   int64     `db:"meter_id" json:"smart_meter_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	EnergyKWh float64   `db:"energy_kwh" json:"energy_kwh"`
}
