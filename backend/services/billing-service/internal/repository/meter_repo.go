package repository

import (
	"context"
	"database/sql"

	"greenvolt/backend/services/billing-service/internal/models"
)

// MeterRepository persists smart meters.
type MeterRepository struct {
	db *sql.DB
}

// NewMeterRepository returns repository.
func NewMeterRepository(db *sql.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// Create inserts a meter. A reused serial number yields ErrDuplicate.
func (r *MeterRepository) Create(ctx context.Context, m *models.SmartMeter) error {
	const query = `
		INSERT INTO smart_meters (serial_number, location, installation_date, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		m.SerialNumber,
		m.Location,
		m.InstallationDate,
		m.UserID,
	).Scan(&m.ID)
	return translate(err)
}

// GetByID returns a meter or ErrNotFound.
func (r *MeterRepository) GetByID(ctx context.Context, id int64) (*models.SmartMeter, error) {
	const query = `
		SELECT id, serial_number, location, installation_date, user_id
		FROM smart_meters
		WHERE id = $1
	`
	var m models.SmartMeter
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.SerialNumber,
		&m.Location,
		&m.InstallationDate,
		&m.UserID,
	); err != nil {
		return nil, translate(err)
	}
	m.InstallationDate = m.InstallationDate.UTC()
	return &m, nil
}

// ListByUser returns a user's meters ordered by id.
func (r *MeterRepository) ListByUser(ctx context.Context, userID int64) ([]models.SmartMeter, error) {
	const query = `
		SELECT id, serial_number, location, installation_date, user_id
		FROM smart_meters
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meters []models.SmartMeter
	for rows.Next() {
		var m models.SmartMeter
		if err := rows.Scan(
			&m.ID,
			&m.SerialNumber,
			&m.Location,
			&m.InstallationDate,
			&m.UserID,
		); err != nil {
			return nil, err
		}
		m.InstallationDate = m.InstallationDate.UTC()
		meters = append(meters, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meters, nil
}
