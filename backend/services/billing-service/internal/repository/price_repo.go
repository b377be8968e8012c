package repository

import (
	"context"
	"database/sql"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// PriceRepository persists the hourly price table.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository returns repository.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Upsert sets the price of an hour bucket. The boolean reports whether a new
// row was inserted rather than an existing one updated.
func (r *PriceRepository) Upsert(ctx context.Context, hourStart time.Time, price float64) (*models.PriceEntry, bool, error) {
	const query = `
		INSERT INTO prices (hour_start, price_per_kwh)
		VALUES ($1, $2)
		ON CONFLICT (hour_start) DO UPDATE SET
			price_per_kwh = EXCLUDED.price_per_kwh
		RETURNING id, hour_start, price_per_kwh, (xmax = 0) AS inserted
	`
	var (
		e        models.PriceEntry
		inserted bool
	)
	if err := r.db.QueryRowContext(ctx, query, hourStart, price).Scan(
		&e.ID,
		&e.HourStart,
		&e.PricePerKWh,
		&inserted,
	); err != nil {
		return nil, false, translate(err)
	}
	e.HourStart = e.HourStart.UTC()
	return &e, inserted, nil
}

// GetByHour returns the entry for an exact hour start or ErrNotFound.
func (r *PriceRepository) GetByHour(ctx context.Context, hourStart time.Time) (*models.PriceEntry, error) {
	const query = `
		SELECT id, hour_start, price_per_kwh
		FROM prices
		WHERE hour_start = $1
	`
	var e models.PriceEntry
	if err := r.db.QueryRowContext(ctx, query, hourStart).Scan(&e.ID, &e.HourStart, &e.PricePerKWh); err != nil {
		return nil, translate(err)
	}
	e.HourStart = e.HourStart.UTC()
	return &e, nil
}

// ListRange returns entries with hour_start in [from, until), in time order.
func (r *PriceRepository) ListRange(ctx context.Context, from, until time.Time) ([]models.PriceEntry, error) {
	const query = `
		SELECT id, hour_start, price_per_kwh
		FROM prices
		WHERE hour_start >= $1
		  AND hour_start < $2
		ORDER BY hour_start
	`
	rows, err := r.db.QueryContext(ctx, query, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PriceEntry
	for rows.Next() {
		var e models.PriceEntry
		if err := rows.Scan(&e.ID, &e.HourStart, &e.PricePerKWh); err != nil {
			return nil, err
		}
		e.HourStart = e.HourStart.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
