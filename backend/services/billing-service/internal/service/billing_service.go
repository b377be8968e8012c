package service

import (
	"context"

	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/billing"
)

// Report view names used in logs and metrics.
const (
	ViewBill       = "bill"
	ViewHourlyBill = "hourly_bill"
	ViewLineItems  = "line_items"
	ViewAnalytics  = "analytics"
)

// BillingService builds bills and analytics from stored readings, sessions
// and prices. Every view is derived from the same aggregation.
type BillingService struct {
	users    UserDirectory
	meters   MeterRepository
	readings ReadingRepository
	sessions SessionRepository
	pricing  *PricingService
	metrics  Recorder
	logger   *zap.Logger
}

// NewBillingService builds service. metrics may be nil.
func NewBillingService(
	users UserDirectory,
	meters MeterRepository,
	readings ReadingRepository,
	sessions SessionRepository,
	pricing *PricingService,
	metrics Recorder,
	logger *zap.Logger,
) *BillingService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &BillingService{
		users:    users,
		meters:   meters,
		readings: readings,
		sessions: sessions,
		pricing:  pricing,
		metrics:  metrics,
		logger:   logger,
	}
}

// householdUsage is the aggregated meter usage of one user over a range.
type householdUsage struct {
	period    billing.Period
	dates     billing.DateRange
	usage     billing.Usage
	hasMeters bool
}

func (s *BillingService) household(ctx context.Context, callerID, userID int64, start, end, view string) (householdUsage, error) {
	dates, err := parseRange(start, end)
	if err != nil {
		return householdUsage{}, err
	}
	if err := authorize(callerID, userID); err != nil {
		return householdUsage{}, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return householdUsage{}, err
	}

	h := householdUsage{
		period: billing.NewPeriod(userID, dates),
		dates:  dates,
		usage:  billing.Aggregate(nil, billing.PriceTable{}),
	}

	meters, err := s.meters.ListByUser(ctx, userID)
	if err != nil {
		return householdUsage{}, err
	}
	if len(meters) == 0 {
		return h, nil
	}
	h.hasMeters = true

	ids := make([]int64, 0, len(meters))
	for _, m := range meters {
		ids = append(ids, m.ID)
	}
	readings, err := s.readings.ListByMeters(ctx, ids, dates.From(), dates.Until())
	if err != nil {
		return householdUsage{}, err
	}
	rates, err := s.pricing.Table(ctx, dates.From(), dates.Until())
	if err != nil {
		return householdUsage{}, err
	}
	h.usage = billing.Aggregate(readings, rates)

	s.metrics.ReportBuilt(view)
	s.metrics.MissingRateHours(view, h.usage.MissingRateHours)
	if h.usage.MissingRateHours > 0 {
		s.logger.Warn("billing period has unpriced hours",
			zap.Int64("user_id", userID),
			zap.String("view", view),
			zap.String("start", dates.StartDate()),
			zap.String("end", dates.EndDate()),
			zap.Int("missing_rate_hours", h.usage.MissingRateHours),
		)
	}
	return h, nil
}

// Bill returns total energy, total cost and the daily breakdown for userID
// over the inclusive date range.
func (s *BillingService) Bill(ctx context.Context, callerID, userID int64, start, end string) (billing.Bill, error) {
	h, err := s.household(ctx, callerID, userID, start, end, ViewBill)
	if err != nil {
		return billing.Bill{}, err
	}
	return billing.BuildBill(h.period, h.usage), nil
}

// HourlyBill is Bill plus the per-hour-bucket breakdown.
func (s *BillingService) HourlyBill(ctx context.Context, callerID, userID int64, start, end string) (billing.HourlyBill, error) {
	h, err := s.household(ctx, callerID, userID, start, end, ViewHourlyBill)
	if err != nil {
		return billing.HourlyBill{}, err
	}
	return billing.BuildHourlyBill(h.period, h.usage), nil
}

// LineItems returns every priced reading in range.
func (s *BillingService) LineItems(ctx context.Context, callerID, userID int64, start, end string) (billing.LineItems, error) {
	h, err := s.household(ctx, callerID, userID, start, end, ViewLineItems)
	if err != nil {
		return billing.LineItems{}, err
	}
	return billing.BuildLineItems(h.period, h.usage), nil
}

// Analytics combines household usage with EV sessions started in range. A
// user without meters gets an all-zero report.
func (s *BillingService) Analytics(ctx context.Context, callerID, userID int64, start, end string) (billing.AnalyticsReport, error) {
	h, err := s.household(ctx, callerID, userID, start, end, ViewAnalytics)
	if err != nil {
		return billing.AnalyticsReport{}, err
	}

	var ev billing.EVUsage
	if h.hasMeters {
		sessions, err := s.sessions.ListByUserStartedBetween(ctx, userID, h.dates.From(), h.dates.Until())
		if err != nil {
			return billing.AnalyticsReport{}, err
		}
		ev = billing.SummarizeSessions(sessions)
	}
	return billing.BuildAnalytics(h.period, billing.Analyze(h.usage, ev, h.dates)), nil
}
