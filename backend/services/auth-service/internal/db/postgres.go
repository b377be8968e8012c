package db

import (
	"context"
	"database/sql"

	libdb "greenvolt/backend/libs/db"
)

// Schema creates the users table shared with billing-service.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// NewPostgres connects to Postgres and ensures the users table exists.
func NewPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := libdb.NewPostgresDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := libdb.ApplySchema(ctx, db, Schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
