package repository

import (
	"context"
	"database/sql"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// ReadingRepository persists meter readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Create inserts a reading.
func (r *ReadingRepository) Create(ctx context.Context, reading *models.MeterReading) error {
	const query = `
		INSERT INTO meter_readings (meter_id, timestamp, energy_kwh)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return translate(r.db.QueryRowContext(ctx, query,
		reading.MeterID,
		reading.Timestamp,
		reading.EnergyKWh,
	).Scan(&reading.ID))
}

// ListByMeter returns every reading of a meter in time order.
func (r *ReadingRepository) ListByMeter(ctx context.Context, meterID int64) ([]models.MeterReading, error) {
	const query = `
		SELECT id, meter_id, timestamp, energy_kwh
		FROM meter_readings
		WHERE meter_id = $1
		ORDER BY timestamp, id
	`
	rows, err := r.db.QueryContext(ctx, query, meterID)
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

// ListByMeters returns readings of any of the meters with timestamps in
// [from, until).
func (r *ReadingRepository) ListByMeters(ctx context.Context, meterIDs []int64, from, until time.Time) ([]models.MeterReading, error) {
	if len(meterIDs) == 0 {
		return nil, nil
	}
	const query = `
		SELECT id, meter_id, timestamp, energy_kwh
		FROM meter_readings
		WHERE meter_id = ANY($1)
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp, id
	`
	rows, err := r.db.QueryContext(ctx, query, meterIDs, from, until)
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

// SumByMeter totals a meter's energy with timestamps in [from, until).
func (r *ReadingRepository) SumByMeter(ctx context.Context, meterID int64, from, until time.Time) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(energy_kwh), 0)
		FROM meter_readings
		WHERE meter_id = $1
		  AND timestamp >= $2
		  AND timestamp < $3
	`
	var total float64
	if err := r.db.QueryRowContext(ctx, query, meterID, from, until).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanReadings(rows *sql.Rows) ([]models.MeterReading, error) {
	defer rows.Close()

	var readings []models.MeterReading
	for rows.Next() {
		var m models.MeterReading
		if err := rows.Scan(&m.ID, &m.MeterID, &m.Timestamp, &m.EnergyKWh); err != nil {
			return nil, err
		}
		m.Timestamp = m.Timestamp.UTC()
		readings = append(readings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}
