package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	libmetrics "greenvolt/backend/libs/metrics"
	appconfig "greenvolt/backend/services/auth-service/internal/config"
	"greenvolt/backend/services/auth-service/internal/db"
	httpserver "greenvolt/backend/services/auth-service/internal/http"
	"greenvolt/backend/services/auth-service/internal/http/handlers"
	"greenvolt/backend/services/auth-service/internal/password"
	"greenvolt/backend/services/auth-service/internal/repository"
	"greenvolt/backend/services/auth-service/internal/service"
)

// App wires dependencies for the auth service.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New builds application graph.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	var users service.UserRepository
	if cfg.Storage.Driver == appconfig.StorageMemory {
		logger.Warn("using in-memory user storage, accounts are lost on restart")
		users = repository.NewMemoryUserRepository()
	} else {
		sqlDB, err := db.NewPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = sqlDB
		users = repository.NewUserRepository(sqlDB)
	}

	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authSvc := service.NewAuthService(users, hasher, tokenSvc, logger)

	routes := httpserver.Routes{
		Signup: handlers.NewSignupHandler(authSvc, logger),
		Login:  handlers.NewLoginHandler(authSvc, logger),
		Me:     handlers.NewMeHandler(authSvc, tokenSvc, logger),
		Health: handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, libmetrics.New("auth"))
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger)
	return a, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
