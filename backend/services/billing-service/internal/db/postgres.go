package db

import (
	"context"
	"database/sql"
	"time"

	libdb "greenvolt/backend/libs/db"
)

// Pool tuning for the billing workload.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewPostgres returns a DB connection and applies the billing schema.
func NewPostgres(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	db, err := libdb.Open(dsn, libdb.PoolOptions{
		MaxOpenConns:    pool.MaxOpenConns,
		MaxIdleConns:    pool.MaxIdleConns,
		ConnMaxLifetime: pool.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := libdb.ApplySchema(ctx, db, Schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
