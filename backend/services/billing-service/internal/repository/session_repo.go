package repository

import (
	"context"
	"database/sql"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// SessionRepository persists EV charging sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a priced session.
func (r *SessionRepository) Create(ctx context.Context, s *models.ChargingSession) error {
	const query = `
		INSERT INTO ev_charging_sessions (user_id, start_time, end_time, energy_kwh, cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return translate(r.db.QueryRowContext(ctx, query,
		s.UserID,
		s.StartTime,
		s.EndTime,
		s.EnergyKWh,
		s.Cost,
	).Scan(&s.ID))
}

// ListByUser returns a user's sessions, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]models.ChargingSession, error) {
	const query = `
		SELECT id, user_id, start_time, end_time, energy_kwh, cost
		FROM ev_charging_sessions
		WHERE user_id = $1
		ORDER BY start_time DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListByUserStartedBetween returns sessions whose start_time is in [from, until).
func (r *SessionRepository) ListByUserStartedBetween(ctx context.Context, userID int64, from, until time.Time) ([]models.ChargingSession, error) {
	const query = `
		SELECT id, user_id, start_time, end_time, energy_kwh, cost
		FROM ev_charging_sessions
		WHERE user_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, until)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]models.ChargingSession, error) {
	defer rows.Close()

	var sessions []models.ChargingSession
	for rows.Next() {
		var (
			s   models.ChargingSession
			end sql.NullTime
		)
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.StartTime,
			&end,
			&s.EnergyKWh,
			&s.Cost,
		); err != nil {
			return nil, err
		}
		s.StartTime = s.StartTime.UTC()
		if end.Valid {
			t := end.Time.UTC()
			s.EndTime = &t
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
