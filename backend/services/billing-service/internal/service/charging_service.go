package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/billing"
	"greenvolt/backend/services/billing-service/internal/models"
)

// ChargingService records EV charging sessions and prices them once, at
// creation.
type ChargingService struct {
	users    UserDirectory
	sessions SessionRepository
	pricing  *PricingService
	now      Clock
	metrics  Recorder
	logger   *zap.Logger
}

// NewChargingService builds service. metrics may be nil.
func NewChargingService(
	users UserDirectory,
	sessions SessionRepository,
	pricing *PricingService,
	now Clock,
	metrics Recorder,
	logger *zap.Logger,
) *ChargingService {
	if now == nil {
		now = utcNow
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ChargingService{
		users:    users,
		sessions: sessions,
		pricing:  pricing,
		now:      now,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateSessionInput is a new charging session. A nil StartTime means now; a
// nil EndTime marks an ongoing session.
type CreateSessionInput struct {
	UserID    int64
	StartTime *time.Time
	EndTime   *time.Time
	EnergyKWh float64
}

// MonthlySummary totals the sessions started in one month.
type MonthlySummary struct {
	UserID         int64   `json:"user_id"`
	Month          string  `json:"month"`
	Sessions       int     `json:"sessions"`
	TotalEnergyKWh float64 `json:"total_energy_kwh"`
	TotalCost      float64 `json:"total_cost"`
}

// CreateSession prices the session over the hour buckets it spans and stores
// the cost as a snapshot.
func (s *ChargingService) CreateSession(ctx context.Context, callerID int64, in CreateSessionInput) (*models.ChargingSession, billing.Allocation, error) {
	if in.UserID <= 0 {
		return nil, billing.Allocation{}, invalid("user_id is required")
	}
	if !finite(in.EnergyKWh) || in.EnergyKWh < 0 {
		return nil, billing.Allocation{}, invalid("energy_kwh must be a finite, non-negative number")
	}

	start := s.now()
	if in.StartTime != nil && !in.StartTime.IsZero() {
		start = *in.StartTime
	}
	var end *time.Time
	if in.EndTime != nil && !in.EndTime.IsZero() {
		e := in.EndTime.UTC()
		end = &e
	}
	from, until := billing.SessionWindow(start, end)
	if !until.After(from) {
		return nil, billing.Allocation{}, invalid("end_time must be after start_time")
	}

	if err := authorize(callerID, in.UserID); err != nil {
		return nil, billing.Allocation{}, err
	}
	if err := requireUser(ctx, s.users, in.UserID); err != nil {
		return nil, billing.Allocation{}, err
	}

	rates, err := s.pricing.Table(ctx, from, until)
	if err != nil {
		return nil, billing.Allocation{}, err
	}
	alloc, err := billing.Allocate(from, until, in.EnergyKWh, rates)
	if err != nil {
		return nil, billing.Allocation{}, invalid("%v", err)
	}

	session := &models.ChargingSession{
		UserID:    in.UserID,
		StartTime: from,
		EndTime:   end,
		EnergyKWh: in.EnergyKWh,
		Cost:      alloc.Cost,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, billing.Allocation{}, err
	}

	s.metrics.SessionPriced(session.EnergyKWh, session.Cost)
	s.metrics.MissingRateHours("ev_session", alloc.MissingRateHours)
	s.logger.Info("charging session priced",
		zap.Int64("session_id", session.ID),
		zap.Int64("user_id", session.UserID),
		zap.Float64("energy_kwh", session.EnergyKWh),
		zap.Float64("cost", session.Cost),
		zap.Int("buckets", len(alloc.Buckets)),
		zap.Int("missing_rate_hours", alloc.MissingRateHours),
	)
	return session, alloc, nil
}

// ListByUser returns the sessions of userID.
func (s *ChargingService) ListByUser(ctx context.Context, callerID, userID int64) ([]models.ChargingSession, error) {
	if err := authorize(callerID, userID); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.ChargingSession{}
	}
	return sessions, nil
}

// MonthlySummary totals the snapshot costs of sessions started in month, the
// current month when empty.
func (s *ChargingService) MonthlySummary(ctx context.Context, callerID, userID int64, month string) (MonthlySummary, error) {
	first, err := monthOrCurrent(month, s.now())
	if err != nil {
		return MonthlySummary{}, err
	}
	if err := authorize(callerID, userID); err != nil {
		return MonthlySummary{}, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return MonthlySummary{}, err
	}

	sessions, err := s.sessions.ListByUserStartedBetween(ctx, userID, first, first.AddDate(0, 1, 0))
	if err != nil {
		return MonthlySummary{}, err
	}
	ev := billing.SummarizeSessions(sessions)
	return MonthlySummary{
		UserID:         userID,
		Month:          first.Format(monthLayout),
		Sessions:       ev.Sessions,
		TotalEnergyKWh: billing.Round(ev.EnergyKWh, billing.SummaryDecimals),
		TotalCost:      billing.Round(ev.Cost, billing.SummaryDecimals),
	}, nil
}
