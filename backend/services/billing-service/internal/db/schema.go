package db

// Schema creates the billing tables. The users table is owned by
// auth-service; it is created here too so either service can start first.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS smart_meters (
		id                BIGSERIAL PRIMARY KEY,
		serial_number     TEXT NOT NULL UNIQUE,
		location          TEXT NOT NULL DEFAULT '',
		installation_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		user_id           BIGINT NOT NULL REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS smart_meters_user_idx ON smart_meters (user_id)`,
	`CREATE TABLE IF NOT EXISTS meter_readings (
		id         BIGSERIAL PRIMARY KEY,
		meter_id   BIGINT NOT NULL REFERENCES smart_meters(id),
		timestamp  TIMESTAMPTZ NOT NULL,
		energy_kwh DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS meter_readings_meter_ts_idx ON meter_readings (meter_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS prices (
		id            BIGSERIAL PRIMARY KEY,
		hour_start    TIMESTAMPTZ NOT NULL UNIQUE,
		price_per_kwh DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ev_charging_sessions (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ,
		energy_kwh DOUBLE PRECISION NOT NULL,
		cost       DOUBLE PRECISION NOT NULL,
		CHECK (end_time IS NULL OR end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS ev_sessions_user_start_idx ON ev_charging_sessions (user_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS consumption (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL REFERENCES users(id),
		smart_meter_id BIGINT NOT NULL REFERENCES smart_meters(id),
		timestamp      TIMESTAMPTZ NOT NULL,
		energy_kwh     DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS consumption_user_ts_idx ON consumption (user_id, timestamp)`,
}
