package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CoverageChecker lists unpriced hours ahead of a point in time.
type CoverageChecker interface {
	UncoveredHours(ctx context.Context, from time.Time, hours int) ([]time.Time, error)
}

// CoverageRecorder receives audit results.
type CoverageRecorder interface {
	PriceCoverage(uncovered int, ok bool)
}

// PriceAudit periodically checks that upcoming hours have prices, so that
// bills are not silently priced at zero.
type PriceAudit struct {
	checker  CoverageChecker
	recorder CoverageRecorder
	horizon  int
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewPriceAudit builds the job. horizonHours is how far ahead to look.
func NewPriceAudit(checker CoverageChecker, recorder CoverageRecorder, horizonHours int, logger *zap.Logger) *PriceAudit {
	if horizonHours <= 0 {
		horizonHours = 24
	}
	return &PriceAudit{
		checker:  checker,
		recorder: recorder,
		horizon:  horizonHours,
		timeout:  30 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules the audit with a cron spec such as "@hourly" or "5 * * * *".
func (a *PriceAudit) Start(spec string) error {
	if _, err := a.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		_, _ = a.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("jobs: schedule price audit %q: %w", spec, err)
	}
	a.cron.Start()
	a.logger.Info("price audit scheduled", zap.String("spec", spec), zap.Int("horizon_hours", a.horizon))
	return nil
}

// Stop stops scheduling and waits for a running audit to finish.
func (a *PriceAudit) Stop() {
	<-a.cron.Stop().Done()
}

// RunOnce checks the horizon starting at the current hour and returns the
// number of unpriced hours.
func (a *PriceAudit) RunOnce(ctx context.Context) (int, error) {
	missing, err := a.checker.UncoveredHours(ctx, a.now(), a.horizon)
	if err != nil {
		if a.recorder != nil {
			a.recorder.PriceCoverage(0, false)
		}
		a.logger.Error("price audit failed", zap.Error(err))
		return 0, err
	}
	if a.recorder != nil {
		a.recorder.PriceCoverage(len(missing), true)
	}
	if len(missing) > 0 {
		a.logger.Warn("upcoming hours have no price",
			zap.Int("missing_hours", len(missing)),
			zap.Time("first_missing", missing[0]),
			zap.Int("horizon_hours", a.horizon),
		)
	}
	return len(missing), nil
}
