package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenvolt/backend/services/billing-service/internal/models"
	"greenvolt/backend/services/billing-service/internal/repository/memory"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func price(v float64) *float64 { return &v }

func kwh(v float64) *float64 { return &v }

func inf() float64 { return math.Inf(1) }

type fixture struct {
	store       *memory.Store
	pricing     *PricingService
	meters      *MeterService
	readings    *ReadingService
	charging    *ChargingService
	consumption *ConsumptionService
	billing     *BillingService
	cache       *mapCache
}

type mapCache struct {
	prices map[time.Time]float64
	err    error
	gets   int
}

func (c *mapCache) Get(_ context.Context, hour time.Time) (float64, bool, error) {
	c.gets++
	if c.err != nil {
		return 0, false, c.err
	}
	p, ok := c.prices[hour]
	return p, ok, nil
}

func (c *mapCache) Set(_ context.Context, hour time.Time, price float64) error {
	if c.err != nil {
		return c.err
	}
	c.prices[hour] = price
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(alice, bob)
	logger := zap.NewNop()
	clock := func() time.Time { return ts("2025-08-20T12:34:00Z") }
	cache := &mapCache{prices: map[time.Time]float64{}}

	pricing := NewPricingService(store.Prices(), cache, nil, logger)
	return &fixture{
		store:       store,
		cache:       cache,
		pricing:     pricing,
		meters:      NewMeterService(store.Users(), store.Meters(), clock, logger),
		readings:    NewReadingService(store.Meters(), store.Readings(), clock, logger),
		charging:    NewChargingService(store.Users(), store.Sessions(), pricing, clock, nil, logger),
		consumption: NewConsumptionService(store.Users(), store.Meters(), store.Consumption(), logger),
		billing:     NewBillingService(store.Users(), store.Meters(), store.Readings(), store.Sessions(), pricing, nil, logger),
	}
}

func (f *fixture) setPrices(t *testing.T, prices map[string]float64) {
	t.Helper()
	for hour, p := range prices {
		_, err := f.pricing.SetPrice(context.Background(), PriceInput{HourStart: ts(hour), PricePerKWh: &p})
		require.NoError(t, err)
	}
}

func (f *fixture) meter(t *testing.T, owner int64, serial string) *models.SmartMeter {
	t.Helper()
	m, err := f.meters.CreateMeter(context.Background(), owner, CreateMeterInput{SerialNumber: serial, Location: "garage", UserID: owner})
	require.NoError(t, err)
	return m
}

func (f *fixture) reading(t *testing.T, owner, meterID int64, at string, kwh float64) {
	t.Helper()
	_, err := f.readings.RecordReading(context.Background(), owner, RecordReadingInput{MeterID: meterID, EnergyKWh: kwh, Timestamp: ptr(ts(at))})
	require.NoError(t, err)
}

func TestSetPriceUpsertsSingleEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.pricing.SetPrice(ctx, PriceInput{HourStart: ts("2025-08-15T09:17:00Z"), PricePerKWh: price(0.20)})
	require.NoError(t, err)
	assert.Equal(t, models.PriceStatusAdded, res.Status)
	assert.Equal(t, ts("2025-08-15T09:00:00Z"), res.HourStart)

	res, err = f.pricing.SetPrice(ctx, PriceInput{HourStart: ts("2025-08-15T09:00:00Z"), PricePerKWh: price(0.25)})
	require.NoError(t, err)
	assert.Equal(t, models.PriceStatusUpdated, res.Status)

	assert.Equal(t, 1, f.store.Prices().Count())
	quote, err := f.pricing.RateAt(ctx, ts("2025-08-15T09:59:00Z"))
	require.NoError(t, err)
	assert.True(t, quote.Found)
	assert.Equal(t, 0.25, quote.PricePerKWh)
}

func TestSetPriceRejectsNonFinite(t *testing.T) {
	f := newFixture(t)
	_, err := f.pricing.SetPrice(context.Background(), PriceInput{HourStart: ts("2025-08-15T09:00:00Z"), PricePerKWh: price(inf())})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBulkSetPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setPrices(t, map[string]float64{"2025-08-15T10:00:00Z": 0.1})

	results, err := f.pricing.BulkSetPrices(ctx, []PriceInput{
		{HourStart: ts("2025-08-15T09:00:00Z"), PricePerKWh: price(0.2)},
		{HourStart: ts("2025-08-15T10:00:00Z"), PricePerKWh: price(0.3)},
		{PricePerKWh: price(0.4)},
		{HourStart: ts("2025-08-15T11:00:00Z"), PricePerKWh: price(-0.05)},
		{HourStart: ts("2025-08-15T10:00:00Z")},
	})
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, models.PriceStatusAdded, results[0].Status)
	assert.Equal(t, models.PriceStatusUpdated, results[1].Status)
	assert.Equal(t, models.PriceStatusFailed, results[2].Status)
	assert.NotEmpty(t, results[2].Error)
	assert.Equal(t, models.PriceStatusAdded, results[3].Status)
	assert.Equal(t, models.PriceStatusFailed, results[4].Status)
	assert.Contains(t, results[4].Error, "price_per_kwh is required")
	assert.Equal(t, 3, f.store.Prices().Count())

	quote, err := f.pricing.RateAt(ctx, ts("2025-08-15T10:30:00Z"))
	require.NoError(t, err)
	assert.True(t, quote.Found)
	assert.Equal(t, 0.3, quote.PricePerKWh)

	_, err = f.pricing.BulkSetPrices(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRateAtMissingHourIsNotAnError(t *testing.T) {
	f := newFixture(t)
	quote, err := f.pricing.RateAt(context.Background(), ts("2025-08-15T03:30:00Z"))
	require.NoError(t, err)
	assert.False(t, quote.Found)
	assert.Zero(t, quote.PricePerKWh)
}

func TestRateAtFallsBackWhenCacheFails(t *testing.T) {
	f := newFixture(t)
	f.setPrices(t, map[string]float64{"2025-08-15T09:00:00Z": 0.2})
	f.cache.err = errors.New("redis down")

	quote, err := f.pricing.RateAt(context.Background(), ts("2025-08-15T09:10:00Z"))
	require.NoError(t, err)
	assert.True(t, quote.Found)
	assert.Equal(t, 0.2, quote.PricePerKWh)
}

func TestUncoveredHours(t *testing.T) {
	f := newFixture(t)
	f.setPrices(t, map[string]float64{
		"2025-08-15T09:00:00Z": 0.2,
		"2025-08-15T11:00:00Z": 0.2,
	})

	missing, err := f.pricing.UncoveredHours(context.Background(), ts("2025-08-15T09:40:00Z"), 4)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{ts("2025-08-15T10:00:00Z"), ts("2025-08-15T12:00:00Z")}, missing)
}

func TestCreateSessionSplitsAcrossHours(t *testing.T) {
	f := newFixture(t)
	f.setPrices(t, map[string]float64{
		"2025-08-15T09:00:00Z": 0.20,
		"2025-08-15T10:00:00Z": 0.30,
	})

	session, alloc, err := f.charging.CreateSession(context.Background(), alice, CreateSessionInput{
		UserID:    alice,
		StartTime: ptr(ts("2025-08-15T09:30:00Z")),
		EndTime:   ptr(ts("2025-08-15T10:30:00Z")),
		EnergyKWh: 4.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.00, session.Cost)
	assert.Len(t, alloc.Buckets, 2)
	assert.NotZero(t, session.ID)
}

func TestCreateSessionOpenEndedPricedAsOneHour(t *testing.T) {
	f := newFixture(t)
	f.setPrices(t, map[string]float64{
		"2025-08-15T09:00:00Z": 0.20,
		"2025-08-15T10:00:00Z": 0.40,
	})

	session, alloc, err := f.charging.CreateSession(context.Background(), alice, CreateSessionInput{
		UserID:    alice,
		StartTime: ptr(ts("2025-08-15T09:45:00Z")),
		EnergyKWh: 2.0,
	})
	require.NoError(t, err)
	assert.Nil(t, session.EndTime)
	assert.Equal(t, ts("2025-08-15T10:45:00Z"), alloc.End)
	assert.InDelta(t, 0.5*0.20+1.5*0.40, session.Cost, 1e-9)
}

func TestCreateSessionCostIsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setPrices(t, map[string]float64{"2025-08-15T09:00:00Z": 0.20})

	_, _, err := f.charging.CreateSession(ctx, alice, CreateSessionInput{
		UserID:    alice,
		StartTime: ptr(ts("2025-08-15T09:00:00Z")),
		EndTime:   ptr(ts("2025-08-15T09:30:00Z")),
		EnergyKWh: 5,
	})
	require.NoError(t, err)

	f.setPrices(t, map[string]float64{"2025-08-15T09:00:00Z": 0.90})
	sessions, err := f.charging.ListByUser(ctx, alice, alice)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 1.0, sessions[0].Cost)
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := ts("2025-08-15T09:00:00Z")

	_, _, err := f.charging.CreateSession(ctx, alice, CreateSessionInput{UserID: alice, StartTime: &start, EndTime: &start, EnergyKWh: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = f.charging.CreateSession(ctx, alice, CreateSessionInput{UserID: alice, StartTime: &start, EnergyKWh: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = f.charging.CreateSession(ctx, bob, CreateSessionInput{UserID: alice, StartTime: &start, EnergyKWh: 1})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = f.charging.CreateSession(ctx, 99, CreateSessionInput{UserID: 99, StartTime: &start, EnergyKWh: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMonthlySessionSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setPrices(t, map[string]float64{"2025-08-15T09:00:00Z": 0.5})

	for _, start := range []string{"2025-08-15T09:00:00Z", "2025-08-31T23:30:00Z", "2025-09-01T00:00:00Z"} {
		_, _, err := f.charging.CreateSession(ctx, alice, CreateSessionInput{UserID: alice, StartTime: ptr(ts(start)), EnergyKWh: 2})
		require.NoError(t, err)
	}

	summary, err := f.charging.MonthlySummary(ctx, alice, alice, "2025-08")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sessions)
	assert.Equal(t, 4.0, summary.TotalEnergyKWh)
	assert.Equal(t, 1.0, summary.TotalCost)

	current, err := f.charging.MonthlySummary(ctx, alice, alice, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-08", current.Month)

	_, err = f.charging.MonthlySummary(ctx, alice, alice, "August")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMeterOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.meter(t, alice, "GV-001")

	_, err := f.meters.CreateMeter(ctx, alice, CreateMeterInput{SerialNumber: "GV-001", UserID: alice})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.meters.CreateMeter(ctx, bob, CreateMeterInput{SerialNumber: "GV-002", UserID: alice})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.meters.CreateMeter(ctx, 99, CreateMeterInput{SerialNumber: "GV-003", UserID: 99})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.readings.RecordReading(ctx, bob, RecordReadingInput{MeterID: m.ID, EnergyKWh: 1})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.readings.ListByMeter(ctx, alice, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	meters, err := f.meters.ListByUser(ctx, alice, alice)
	require.NoError(t, err)
	assert.Len(t, meters, 1)
	assert.Equal(t, ts("2025-08-20T12:34:00Z"), meters[0].InstallationDate)
}

func TestReadingTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.meter(t, alice, "GV-001")
	f.reading(t, alice, m.ID, "2025-08-20T01:00:00Z", 1.5)
	f.reading(t, alice, m.ID, "2025-08-20T23:59:59Z", 2.0)
	f.reading(t, alice, m.ID, "2025-08-02T10:00:00Z", 4.0)
	f.reading(t, alice, m.ID, "2025-07-31T10:00:00Z", 8.0)

	reading, err := f.readings.RecordReading(ctx, alice, RecordReadingInput{MeterID: m.ID, EnergyKWh: 0.5})
	require.NoError(t, err)
	assert.Equal(t, ts("2025-08-20T12:34:00Z"), reading.Timestamp)

	today, err := f.readings.DailyTotal(ctx, alice, m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-20", today.Date)
	assert.Equal(t, 4.0, today.TotalKWh)

	month, err := f.readings.MonthlyTotal(ctx, alice, m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-08", month.Month)
	assert.Equal(t, 8.0, month.TotalKWh)

	july, err := f.readings.MonthlyTotal(ctx, alice, m.ID, "2025-07")
	require.NoError(t, err)
	assert.Equal(t, 8.0, july.TotalKWh)

	_, err = f.readings.DailyTotal(ctx, alice, m.ID, "20/08/2025")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConsumptionBulk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.meter(t, alice, "GV-001")
	theirs := f.meter(t, bob, "GV-002")

	res, err := f.consumption.BulkCreate(ctx, alice, []ConsumptionInput{
		{UserID: alice, MeterID: mine.ID, Timestamp: ts("2025-08-15T09:00:00Z"), EnergyKWh: kwh(1.2)},
		{UserID: alice, MeterID: theirs.ID, Timestamp: ts("2025-08-15T10:00:00Z"), EnergyKWh: kwh(0.8)},
		{UserID: alice, MeterID: mine.ID, Timestamp: ts("2025-08-16T09:00:00Z"), EnergyKWh: kwh(2.1)},
		{UserID: alice, MeterID: mine.ID, Timestamp: ts("2025-08-16T10:00:00Z")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.UploadedCount)
	assert.Equal(t, 2, res.FailedCount)
	assert.Contains(t, res.Details[1].Error, "smart meter")
	assert.Contains(t, res.Details[3].Error, "energy_kwh is required")

	records, err := f.consumption.ListByUser(ctx, alice, alice, ts("2025-08-15T00:00:00Z"), ts("2025-08-16T09:00:00Z"))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = f.consumption.BulkCreate(ctx, alice, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.consumption.ListByUser(ctx, bob, alice, ts("2025-08-15T00:00:00Z"), ts("2025-08-16T00:00:00Z"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBillAndHourlyBillAgree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setPrices(t, map[string]float64{
		"2025-08-15T09:00:00Z": 0.20,
		"2025-08-15T18:00:00Z": 0.40,
	})
	m1 := f.meter(t, alice, "GV-001")
	m2 := f.meter(t, alice, "GV-002")
	f.reading(t, alice, m1.ID, "2025-08-15T09:10:00Z", 1.0)
	f.reading(t, alice, m2.ID, "2025-08-15T09:40:00Z", 2.0)
	f.reading(t, alice, m1.ID, "2025-08-15T18:05:00Z", 3.0)
	f.reading(t, alice, m1.ID, "2025-08-16T02:00:00Z", 5.0)
	f.reading(t, alice, m1.ID, "2025-08-17T02:00:00Z", 50.0)

	bill, err := f.billing.Bill(ctx, alice, alice, "2025-08-15", "2025-08-16")
	require.NoError(t, err)
	hourly, err := f.billing.HourlyBill(ctx, alice, alice, "2025-08-15", "2025-08-16")
	require.NoError(t, err)
	items, err := f.billing.LineItems(ctx, alice, alice, "2025-08-15", "2025-08-16")
	require.NoError(t, err)

	assert.Equal(t, 11.0, bill.TotalKWh)
	assert.Equal(t, 1.8, bill.TotalCost)
	assert.Equal(t, 1, bill.MissingRateHours)
	assert.Equal(t, bill.TotalKWh, hourly.TotalKWh)
	assert.Equal(t, bill.TotalCost, hourly.TotalCost)
	assert.Equal(t, bill.TotalCost, items.TotalCost)
	assert.Len(t, bill.DailyBreakdown, 2)
	assert.Len(t, hourly.HourlyBreakdown, 3)
	require.Len(t, items.Items, 4)
	assert.True(t, items.Items[3].RateMissing)
}

func TestBillAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.billing.Bill(ctx, bob, alice, "2025-08-15", "2025-08-16")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.billing.Bill(ctx, 99, 99, "2025-08-15", "2025-08-16")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.billing.Bill(ctx, alice, alice, "2025-08-16", "2025-08-15")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyticsWithoutMetersIsZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.charging.CreateSession(ctx, alice, CreateSessionInput{UserID: alice, StartTime: ptr(ts("2025-08-15T09:00:00Z")), EnergyKWh: 7})
	require.NoError(t, err)

	rep, err := f.billing.Analytics(ctx, alice, alice, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.Zero(t, rep.TotalKWh)
	assert.Zero(t, rep.EVKWh)
	assert.Zero(t, rep.TotalCost)
	assert.Nil(t, rep.PeakUsageHour)
	assert.Len(t, rep.HourlyProfile, 24)
}

func TestAnalyticsCombinesHouseholdAndEV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setPrices(t, map[string]float64{
		"2025-08-15T14:00:00Z": 0.10,
		"2025-08-15T18:00:00Z": 0.20,
	})
	m := f.meter(t, alice, "GV-001")
	f.reading(t, alice, m.ID, "2025-08-15T14:10:00Z", 5.0)
	f.reading(t, alice, m.ID, "2025-08-15T18:10:00Z", 7.0)
	_, _, err := f.charging.CreateSession(ctx, alice, CreateSessionInput{
		UserID:    alice,
		StartTime: ptr(ts("2025-08-15T18:00:00Z")),
		EndTime:   ptr(ts("2025-08-15T18:30:00Z")),
		EnergyKWh: 8,
	})
	require.NoError(t, err)

	rep, err := f.billing.Analytics(ctx, alice, alice, "2025-08-15", "2025-08-16")
	require.NoError(t, err)
	assert.Equal(t, 12.0, rep.HouseholdKWh)
	assert.Equal(t, 8.0, rep.EVKWh)
	assert.Equal(t, 20.0, rep.TotalKWh)
	assert.Equal(t, 1.9, rep.HouseholdCost)
	assert.Equal(t, 1.6, rep.EVCost)
	assert.Equal(t, 3.5, rep.TotalCost)
	assert.Equal(t, 10.0, rep.AverageDailyKWh)
	assert.Equal(t, 9.5, rep.CO2OffsetKg)
	require.NotNil(t, rep.PeakUsageHour)
	assert.Equal(t, 18, *rep.PeakUsageHour)
}
