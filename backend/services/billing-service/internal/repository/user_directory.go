package repository

import (
	"context"
	"database/sql"
)

// UserDirectory checks accounts in the users table owned by auth-service.
type UserDirectory struct {
	db *sql.DB
}

// NewUserDirectory returns directory.
func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// UserExists reports whether the user id is registered.
func (r *UserDirectory) UserExists(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
