package service

import (
	"context"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// UserDirectory answers whether a user account exists.
type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// MeterRepository stores smart meters.
type MeterRepository interface {
	Create(ctx context.Context, meter *models.SmartMeter) error
	GetByID(ctx context.Context, id int64) (*models.SmartMeter, error)
	ListByUser(ctx context.Context, userID int64) ([]models.SmartMeter, error)
}

// ReadingRepository stores meter readings. Ranges are [from, until).
type ReadingRepository interface {
	Create(ctx context.Context, reading *models.MeterReading) error
	ListByMeter(ctx context.Context, meterID int64) ([]models.MeterReading, error)
	ListByMeters(ctx context.Context, meterIDs []int64, from, until time.Time) ([]models.MeterReading, error)
	SumByMeter(ctx context.Context, meterID int64, from, until time.Time) (float64, error)
}

// PriceRepository stores hourly prices. Upsert reports whether a new entry
// was inserted.
type PriceRepository interface {
	Upsert(ctx context.Context, hourStart time.Time, price float64) (*models.PriceEntry, bool, error)
	GetByHour(ctx context.Context, hourStart time.Time) (*models.PriceEntry, error)
	ListRange(ctx context.Context, from, until time.Time) ([]models.PriceEntry, error)
}

// SessionRepository stores EV charging sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ChargingSession) error
	ListByUser(ctx context.Context, userID int64) ([]models.ChargingSession, error)
	ListByUserStartedBetween(ctx context.Context, userID int64, from, until time.Time) ([]models.ChargingSession, error)
}

// ConsumptionRepository stores generic consumption records. ListByUser is
// inclusive on both ends.
type ConsumptionRepository interface {
	Create(ctx context.Context, record *models.Consumption) error
	ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]models.Consumption, error)
}

// PriceCache holds hot hour prices in front of the PriceRepository. A miss is
// reported with ok=false.
type PriceCache interface {
	Get(ctx context.Context, hourStart time.Time) (price float64, ok bool, err error)
	Set(ctx context.Context, hourStart time.Time, price float64) error
}

// Recorder receives billing metrics.
type Recorder interface {
	PriceUpserted(status string)
	MissingRateHours(view string, hours int)
	SessionPriced(energyKWh, cost float64)
	ReportBuilt(view string)
}

type nopRecorder struct{}

func (nopRecorder) PriceUpserted(string)           {}
func (nopRecorder) MissingRateHours(string, int)   {}
func (nopRecorder) SessionPriced(float64, float64) {}
func (nopRecorder) ReportBuilt(string)             {}

// Clock returns the current time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
