package app

import (
	"context"
	"database/sql"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libmetrics "greenvolt/backend/libs/metrics"
	libredis "greenvolt/backend/libs/redis"
	"greenvolt/backend/services/billing-service/internal/config"
	"greenvolt/backend/services/billing-service/internal/db"
	httpserver "greenvolt/backend/services/billing-service/internal/http"
	"greenvolt/backend/services/billing-service/internal/http/handlers"
	"greenvolt/backend/services/billing-service/internal/jobs"
	"greenvolt/backend/services/billing-service/internal/metrics"
	redisstore "greenvolt/backend/services/billing-service/internal/redis"
	"greenvolt/backend/services/billing-service/internal/repository"
	"greenvolt/backend/services/billing-service/internal/repository/memory"
	"greenvolt/backend/services/billing-service/internal/service"
)

// App wires billing service dependencies.
type App struct {
	server *httpserver.Server
	audit  *jobs.PriceAudit
	db     *sql.DB
	redis  *goredis.Client
	logger *zap.Logger
}

type stores struct {
	users       service.UserDirectory
	meters      service.MeterRepository
	readings    service.ReadingRepository
	prices      service.PriceRepository
	sessions    service.SessionRepository
	consumption service.ConsumptionRepository
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var cache service.PriceCache
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		cache = redisstore.NewPriceCache(client, cfg.PriceCacheTTL(), redisstore.BreakerSettings{}, logger)
	} else {
		logger.Info("redis addr not set, price cache disabled")
	}

	reg := libmetrics.New("billing")
	rec := metrics.NewBilling(reg)

	pricing := service.NewPricingService(st.prices, cache, rec, logger)
	meters := service.NewMeterService(st.users, st.meters, nil, logger)
	readings := service.NewReadingService(st.meters, st.readings, nil, logger)
	charging := service.NewChargingService(st.users, st.sessions, pricing, nil, rec, logger)
	consumption := service.NewConsumptionService(st.users, st.meters, st.consumption, logger)
	billingSvc := service.NewBillingService(st.users, st.meters, st.readings, st.sessions, pricing, rec, logger)

	routes := httpserver.Routes{
		Pricing:     handlers.NewPricingHandler(pricing, logger),
		Meters:      handlers.NewMeterHandler(meters, logger),
		Readings:    handlers.NewReadingHandler(readings, logger),
		Charging:    handlers.NewChargingHandler(charging, logger),
		Consumption: handlers.NewConsumptionHandler(consumption, logger),
		Billing:     handlers.NewBillingHandler(billingSvc, logger),
		Health:      handlers.NewHealthHandler(),
	}
	a.server = httpserver.NewServer(cfg.HTTPAddress(), httpserver.NewRouter(routes, reg), logger)

	if cfg.Audit.Schedule != "" {
		a.audit = jobs.NewPriceAudit(pricing, rec, cfg.Audit.HorizonHours, logger)
		if err := a.audit.Start(cfg.Audit.Schedule); err != nil {
			a.audit = nil
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		a.logger.Warn("using in-memory storage, data is lost on restart")
		mem := memory.NewStore()
		return stores{
			users:       memory.AnyUser{},
			meters:      mem.Meters(),
			readings:    mem.Readings(),
			prices:      mem.Prices(),
			sessions:    mem.Sessions(),
			consumption: mem.Consumption(),
		}, nil
	}

	sqlDB, err := db.NewPostgres(ctx, cfg.Database.DSN, db.Pool{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return stores{}, err
	}
	a.db = sqlDB
	return stores{
		users:       repository.NewUserDirectory(sqlDB),
		meters:      repository.NewMeterRepository(sqlDB),
		readings:    repository.NewReadingRepository(sqlDB),
		prices:      repository.NewPriceRepository(sqlDB),
		sessions:    repository.NewSessionRepository(sqlDB),
		consumption: repository.NewConsumptionRepository(sqlDB),
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.audit != nil {
		stopped := make(chan struct{})
		go func() {
			a.audit.Stop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			a.logger.Warn("price audit did not stop in time")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
