package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/billing"
	"greenvolt/backend/services/billing-service/internal/models"
	"greenvolt/backend/services/billing-service/internal/repository"
)

// PricingService maintains the hourly price table.
type PricingService struct {
	repo    PriceRepository
	cache   PriceCache
	metrics Recorder
	logger  *zap.Logger
}

// NewPricingService builds service. cache and metrics may be nil.
func NewPricingService(repo PriceRepository, cache PriceCache, metrics Recorder, logger *zap.Logger) *PricingService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &PricingService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// PriceInput is one requested hour price. A nil PricePerKWh is rejected.
type PriceInput struct {
	HourStart   time.Time
	PricePerKWh *float64
}

// PriceResult is the outcome of one upsert.
type PriceResult struct {
	HourStart   time.Time `json:"hour_start"`
	PricePerKWh float64   `json:"price_per_kwh"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// RateQuote is a point price lookup.
type RateQuote struct {
	HourStart   time.Time `json:"hour_start"`
	PricePerKWh float64   `json:"price_per_kwh"`
	Found       bool      `json:"found"`
}

func validatePrice(in PriceInput) error {
	if in.HourStart.IsZero() {
		return invalid("hour_start is required")
	}
	if in.PricePerKWh == nil {
		return invalid("price_per_kwh is required")
	}
	if !finite(*in.PricePerKWh) {
		return invalid("price_per_kwh must be a finite number")
	}
	return nil
}

// SetPrice inserts or replaces the price of the hour containing in.HourStart.
func (s *PricingService) SetPrice(ctx context.Context, in PriceInput) (PriceResult, error) {
	if err := validatePrice(in); err != nil {
		return PriceResult{}, err
	}
	return s.upsert(ctx, in)
}

// BulkSetPrices upserts each entry independently. A failing entry is reported
// with status "failed" and does not stop the others.
func (s *PricingService) BulkSetPrices(ctx context.Context, entries []PriceInput) ([]PriceResult, error) {
	if len(entries) == 0 {
		return nil, invalid("price list is empty")
	}

	results := make([]PriceResult, 0, len(entries))
	for _, in := range entries {
		res, err := s.SetPrice(ctx, in)
		if err != nil {
			s.metrics.PriceUpserted(models.PriceStatusFailed)
			s.logger.Warn("bulk price entry failed",
				zap.Time("hour_start", in.HourStart),
				zap.Error(err),
			)
			res = PriceResult{
				HourStart: billing.HourStart(in.HourStart),
				Status:    models.PriceStatusFailed,
				Error:     err.Error(),
			}
			if in.PricePerKWh != nil {
				res.PricePerKWh = *in.PricePerKWh
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *PricingService) upsert(ctx context.Context, in PriceInput) (PriceResult, error) {
	hour := billing.HourStart(in.HourStart)
	entry, created, err := s.repo.Upsert(ctx, hour, *in.PricePerKWh)
	if err != nil {
		return PriceResult{}, fmt.Errorf("pricing: upsert %s: %w", hour.Format(time.RFC3339), err)
	}

	status := models.PriceStatusUpdated
	if created {
		status = models.PriceStatusAdded
	}
	s.metrics.PriceUpserted(status)

	if s.cache != nil {
		if err := s.cache.Set(ctx, entry.HourStart, entry.PricePerKWh); err != nil {
			s.logger.Warn("failed to cache price", zap.Time("hour_start", entry.HourStart), zap.Error(err))
		}
	}

	s.logger.Info("price set",
		zap.Time("hour_start", entry.HourStart),
		zap.Float64("price_per_kwh", entry.PricePerKWh),
		zap.String("status", status),
	)
	return PriceResult{HourStart: entry.HourStart, PricePerKWh: entry.PricePerKWh, Status: status}, nil
}

// ListPrices returns the prices of every hour on the days of r.
func (s *PricingService) ListPrices(ctx context.Context, r billing.DateRange) ([]models.PriceEntry, error) {
	entries, err := s.repo.ListRange(ctx, r.From(), r.Until())
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.PriceEntry{}
	}
	return entries, nil
}

// RateAt looks up the price of the hour containing t. An unpriced hour is not
// an error.
func (s *PricingService) RateAt(ctx context.Context, t time.Time) (RateQuote, error) {
	if t.IsZero() {
		return RateQuote{}, invalid("timestamp is required")
	}
	hour := billing.HourStart(t)
	quote := RateQuote{HourStart: hour}

	if s.cache != nil {
		price, ok, err := s.cache.Get(ctx, hour)
		if err != nil {
			s.logger.Debug("price cache unavailable", zap.Error(err))
		}
		if ok {
			quote.PricePerKWh, quote.Found = price, true
			return quote, nil
		}
	}

	entry, err := s.repo.GetByHour(ctx, hour)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return quote, nil
		}
		return RateQuote{}, err
	}
	quote.PricePerKWh, quote.Found = entry.PricePerKWh, true

	if s.cache != nil {
		if err := s.cache.Set(ctx, hour, entry.PricePerKWh); err != nil {
			s.logger.Debug("failed to warm price cache", zap.Error(err))
		}
	}
	return quote, nil
}

// Table loads every price for hours in [from, until) as a lookup table.
func (s *PricingService) Table(ctx context.Context, from, until time.Time) (billing.PriceTable, error) {
	entries, err := s.repo.ListRange(ctx, billing.HourStart(from), until)
	if err != nil {
		return nil, fmt.Errorf("pricing: load table: %w", err)
	}
	return billing.NewPriceTable(entries), nil
}

// UncoveredHours lists the hour buckets in [from, from+hours) with no price.
func (s *PricingService) UncoveredHours(ctx context.Context, from time.Time, hours int) ([]time.Time, error) {
	if hours <= 0 {
		return nil, invalid("hours must be positive")
	}
	start := billing.HourStart(from)
	until := start.Add(time.Duration(hours) * time.Hour)
	table, err := s.Table(ctx, start, until)
	if err != nil {
		return nil, err
	}
	missing := []time.Time{}
	for h := start; h.Before(until); h = h.Add(time.Hour) {
		if _, ok := table.RateForHour(h); !ok {
			missing = append(missing, h)
		}
	}
	return missing, nil
}
