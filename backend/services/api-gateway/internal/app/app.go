package app

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	libmetrics "greenvolt/backend/libs/metrics"
	"greenvolt/backend/services/api-gateway/internal/clients"
	"greenvolt/backend/services/api-gateway/internal/config"
	httpserver "greenvolt/backend/services/api-gateway/internal/http"
	"greenvolt/backend/services/api-gateway/internal/http/handlers"
	"greenvolt/backend/services/api-gateway/internal/http/middleware"
)

// App wires API gateway dependencies.
type App struct {
	server *httpserver.Server
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())

	authClient := clients.NewAuthClient(cfg.Services.AuthURL, httpClient)
	billingClient := clients.NewBillingClient(cfg.Services.BillingURL, httpClient)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandlers:    handlers.NewAuthHandlers(authClient, logger),
		BillingHandlers: handlers.NewBillingHandlers(billingClient, logger),
		HealthHandler:   handlers.NewHealthHandler(),
		Metrics:         libmetrics.New("gateway"),
	}, middleware.AuthMiddleware(cfg.JWT.Secret))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		NewCORS(cfg.CORS.AllowedOrigins),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// NewCORS builds the CORS middleware for browser clients.
func NewCORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           600,
	})
	return c.Handler
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources (none yet).
func (a *App) Close() {}
