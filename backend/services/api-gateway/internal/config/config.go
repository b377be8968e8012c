package config

import (
	"errors"
	"strings"
	"time"

	libconfig "greenvolt/backend/libs/config"
	"greenvolt/backend/libs/logging"
)

// Config defines gateway configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"API_GATEWAY_HTTP_PORT"`
	} `yaml:"http"`
	JWT struct {
		Secret string `yaml:"secret" env:"API_GATEWAY_JWT_SECRET"`
	} `yaml:"jwt"`
	Services struct {
		AuthURL    string `yaml:"authUrl" env:"AUTH_SERVICE_URL"`
		BillingURL string `yaml:"billingUrl" env:"BILLING_SERVICE_URL"`
	} `yaml:"services"`
	HTTPClient struct {
		Timeout time.Duration `yaml:"timeout" env:"API_GATEWAY_HTTP_TIMEOUT"`
	} `yaml:"httpClient"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" env:"API_GATEWAY_CORS_ORIGINS"`
	} `yaml:"cors"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
		File  string `yaml:"file" env:"LOG_FILE"`
	} `yaml:"log"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8000"
	cfg.Services.AuthURL = "http://localhost:8080"
	cfg.Services.BillingURL = "http://localhost:8083"
	cfg.HTTPClient.Timeout = 30 * time.Second
	cfg.CORS.AllowedOrigins = []string{"*"}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(cfg.Services.AuthURL) == "" || strings.TrimSpace(cfg.Services.BillingURL) == "" {
		return nil, errors.New("config: auth and billing service urls required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	return libconfig.Port(c.HTTP.Port, "8000")
}

// HTTPTimeout returns http client timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPClient.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.HTTPClient.Timeout
}

// Logging returns logger options.
func (c *Config) Logging() logging.Options {
	return logging.Options{Level: c.Log.Level, File: c.Log.File}
}
