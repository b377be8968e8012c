package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/billing"
	"greenvolt/backend/services/billing-service/internal/models"
)

// ReadingService records and summarizes meter readings.
type ReadingService struct {
	meters   MeterRepository
	readings ReadingRepository
	now      Clock
	logger   *zap.Logger
}

// NewReadingService builds service.
func NewReadingService(meters MeterRepository, readings ReadingRepository, now Clock, logger *zap.Logger) *ReadingService {
	if now == nil {
		now = utcNow
	}
	return &ReadingService{meters: meters, readings: readings, now: now, logger: logger}
}

// RecordReadingInput is a new measurement. A nil Timestamp means now.
type RecordReadingInput struct {
	MeterID   int64
	EnergyKWh float64
	Timestamp *time.Time
}

// EnergyTotal is the energy a meter measured over a day or month.
type EnergyTotal struct {
	MeterID  int64   `json:"meter_id"`
	Date     string  `json:"date,omitempty"`
	Month    string  `json:"month,omitempty"`
	TotalKWh float64 `json:"total_kwh"`
}

// RecordReading stores a reading on a meter the caller owns.
func (s *ReadingService) RecordReading(ctx context.Context, callerID int64, in RecordReadingInput) (*models.MeterReading, error) {
	if in.MeterID <= 0 {
		return nil, invalid("meter_id is required")
	}
	if !finite(in.EnergyKWh) || in.EnergyKWh < 0 {
		return nil, invalid("energy_kwh must be a finite, non-negative number")
	}
	meter, err := ownedMeter(ctx, s.meters, callerID, in.MeterID)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		ts = *in.Timestamp
	}
	reading := &models.MeterReading{
		MeterID:   meter.ID,
		Timestamp: ts.UTC(),
		EnergyKWh: in.EnergyKWh,
	}
	if err := s.readings.Create(ctx, reading); err != nil {
		return nil, err
	}

	s.logger.Debug("meter reading recorded",
		zap.Int64("meter_id", meter.ID),
		zap.Float64("energy_kwh", reading.EnergyKWh),
		zap.Time("timestamp", reading.Timestamp),
	)
	return reading, nil
}

// ListByMeter returns every reading of a meter the caller owns.
func (s *ReadingService) ListByMeter(ctx context.Context, callerID, meterID int64) ([]models.MeterReading, error) {
	if _, err := ownedMeter(ctx, s.meters, callerID, meterID); err != nil {
		return nil, err
	}
	readings, err := s.readings.ListByMeter(ctx, meterID)
	if err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []models.MeterReading{}
	}
	return readings, nil
}

// DailyTotal sums a meter's energy on one day, today when date is empty.
func (s *ReadingService) DailyTotal(ctx context.Context, callerID, meterID int64, date string) (EnergyTotal, error) {
	day, err := dayOrToday(date, s.now())
	if err != nil {
		return EnergyTotal{}, err
	}
	if _, err := ownedMeter(ctx, s.meters, callerID, meterID); err != nil {
		return EnergyTotal{}, err
	}
	total, err := s.readings.SumByMeter(ctx, meterID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return EnergyTotal{}, err
	}
	return EnergyTotal{
		MeterID:  meterID,
		Date:     day.Format(billing.DateLayout),
		TotalKWh: billing.Round(total, billing.EnergyDecimals),
	}, nil
}

// MonthlyTotal sums a meter's energy over one calendar month, the current
// month when month is empty.
func (s *ReadingService) MonthlyTotal(ctx context.Context, callerID, meterID int64, month string) (EnergyTotal, error) {
	first, err := monthOrCurrent(month, s.now())
	if err != nil {
		return EnergyTotal{}, err
	}
	if _, err := ownedMeter(ctx, s.meters, callerID, meterID); err != nil {
		return EnergyTotal{}, err
	}
	total, err := s.readings.SumByMeter(ctx, meterID, first, first.AddDate(0, 1, 0))
	if err != nil {
		return EnergyTotal{}, err
	}
	return EnergyTotal{
		MeterID:  meterID,
		Month:    first.Format(monthLayout),
		TotalKWh: billing.Round(total, billing.EnergyDecimals),
	}, nil
}
