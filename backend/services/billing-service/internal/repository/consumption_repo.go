package repository

import (
	"context"
	"database/sql"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// ConsumptionRepository persists generic consumption records.
type ConsumptionRepository struct {
	db *sql.DB
}

// NewConsumptionRepository returns repository.
func NewConsumptionRepository(db *sql.DB) *ConsumptionRepository {
	return &ConsumptionRepository{db: db}
}

// Create inserts a record.
func (r *ConsumptionRepository) Create(ctx context.Context, c *models.Consumption) error {
	const query = `
		INSERT INTO consumption (user_id, smart_meter_id, timestamp, energy_kwh)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return translate(r.db.QueryRowContext(ctx, query,
		c.UserID,
		c.MeterID,
		c.Timestamp,
		c.EnergyKWh,
	).Scan(&c.ID))
}

// ListByUser returns records with timestamps in [from, to], in time order.
func (r *ConsumptionRepository) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]models.Consumption, error) {
	const query = `
		SELECT id, user_id, smart_meter_id, timestamp, energy_kwh
		FROM consumption
		WHERE user_id = $1
		  AND timestamp >= $2
		  AND timestamp <= $3
		ORDER BY timestamp, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Consumption
	for rows.Next() {
		var c models.Consumption
		if err := rows.Scan(&c.ID, &c.UserID, &c.MeterID, &c.Timestamp, &c.EnergyKWh); err != nil {
			return nil, err
		}
		c.Timestamp = c.Timestamp.UTC()
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
