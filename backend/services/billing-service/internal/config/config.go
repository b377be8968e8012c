package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "greenvolt/backend/libs/config"
	"greenvolt/backend/libs/logging"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config defines billing service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"BILLING_HTTP_PORT"`
	} `yaml:"http"`
	Storage struct {
		Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
	} `yaml:"storage"`
	Database struct {
		DSN             string        `yaml:"dsn" env:"BILLING_POSTGRES_DSN"`
		MaxOpenConns    int           `yaml:"maxOpenConns" env:"BILLING_POSTGRES_MAX_OPEN"`
		MaxIdleConns    int           `yaml:"maxIdleConns" env:"BILLING_POSTGRES_MAX_IDLE"`
		ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" env:"BILLING_POSTGRES_CONN_LIFETIME"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"BILLING_REDIS_ADDR"`
		Password string `yaml:"password" env:"BILLING_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"BILLING_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"BILLING_REDIS_TTL"`
	} `yaml:"redis"`
	Audit struct {
		Schedule     string `yaml:"schedule" env:"BILLING_PRICE_AUDIT_SCHEDULE"`
		HorizonHours int    `yaml:"horizonHours" env:"BILLING_PRICE_AUDIT_HORIZON"`
	} `yaml:"audit"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
		File  string `yaml:"file" env:"LOG_FILE"`
	} `yaml:"log"`
}

// Load configuration from file/env.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8083"
	cfg.Storage.Driver = StoragePostgres
	cfg.Redis.TTL = 3600
	cfg.Audit.Schedule = "@hourly"
	cfg.Audit.HorizonHours = 24

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected storage driver is usable.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StoragePostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	return libconfig.Port(c.HTTP.Port, "8083")
}

// PriceCacheTTL returns the redis price TTL.
func (c *Config) PriceCacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// Logging returns logger options.
func (c *Config) Logging() logging.Options {
	return logging.Options{Level: c.Log.Level, File: c.Log.File}
}
