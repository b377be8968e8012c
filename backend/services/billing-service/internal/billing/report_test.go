package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenvolt/backend/services/billing-service/internal/models"
)

func sampleReadings() []models.MeterReading {
	return []models.MeterReading{
		{ID: 3, MeterID: 1, Timestamp: at("2025-08-16T18:20:00Z"), EnergyKWh: 4.5},
		{ID: 1, MeterID: 1, Timestamp: at("2025-08-15T09:10:00Z"), EnergyKWh: 1.5},
		{ID: 2, MeterID: 2, Timestamp: at("2025-08-15T09:50:00Z"), EnergyKWh: 0.5},
		{ID: 4, MeterID: 2, Timestamp: at("2025-08-16T21:05:00Z"), EnergyKWh: 1.25},
	}
}

func sampleRates() PriceTable {
	return PriceTable{
		at("2025-08-15T09:00:00Z"): 0.20,
		at("2025-08-16T18:00:00Z"): 0.36,
	}
}

func TestAggregateGroupsChronologically(t *testing.T) {
	u := Aggregate(sampleReadings(), sampleRates())

	assert.InDelta(t, 7.75, u.EnergyKWh, 1e-9)
	assert.InDelta(t, 2.0*0.20+4.5*0.36, u.Cost, 1e-9)
	assert.Equal(t, 1, u.MissingRateHours)

	require.Len(t, u.Items, 4)
	assert.Equal(t, []int64{1, 2, 3, 4}, []int64{u.Items[0].ReadingID, u.Items[1].ReadingID, u.Items[2].ReadingID, u.Items[3].ReadingID})
	assert.True(t, u.Items[3].RateMissing)
	assert.Zero(t, u.Items[3].Cost)

	require.Len(t, u.Days, 2)
	assert.Equal(t, at("2025-08-15T00:00:00Z"), u.Days[0].Date)
	assert.InDelta(t, 2.0, u.Days[0].EnergyKWh, 1e-9)

	require.Len(t, u.Hours, 3)
	assert.InDelta(t, 2.0, u.Hours[0].EnergyKWh, 1e-9)
	assert.True(t, u.Hours[2].RateMissing)

	assert.InDelta(t, 2.0, u.HourOfDay[9], 1e-9)
	assert.InDelta(t, 4.5, u.HourOfDay[18], 1e-9)
}

func TestAggregateCountsDistinctMissingHours(t *testing.T) {
	readings := []models.MeterReading{
		{ID: 1, Timestamp: at("2025-08-15T03:05:00Z"), EnergyKWh: 1},
		{ID: 2, Timestamp: at("2025-08-15T03:45:00Z"), EnergyKWh: 1},
		{ID: 3, Timestamp: at("2025-08-15T04:00:00Z"), EnergyKWh: 1},
	}

	u := Aggregate(readings, PriceTable{})
	assert.Equal(t, 2, u.MissingRateHours)
	assert.Equal(t, 3.0, u.EnergyKWh)
	assert.Zero(t, u.Cost)
}

func TestAggregateEmpty(t *testing.T) {
	u := Aggregate(nil, PriceTable{})

	assert.Zero(t, u.EnergyKWh)
	assert.NotNil(t, u.Items)
	assert.NotNil(t, u.Days)
	assert.NotNil(t, u.Hours)
}

func TestBillViewsAgree(t *testing.T) {
	r, err := ParseDateRange("2025-08-15", "2025-08-16")
	require.NoError(t, err)
	u := Aggregate(sampleReadings(), sampleRates())
	p := NewPeriod(7, r)

	bill := BuildBill(p, u)
	hourly := BuildHourlyBill(p, u)
	items := BuildLineItems(p, u)

	assert.Equal(t, bill.TotalKWh, hourly.TotalKWh)
	assert.Equal(t, bill.TotalCost, hourly.TotalCost)
	assert.Equal(t, bill.TotalKWh, items.TotalKWh)
	assert.Equal(t, bill.TotalCost, items.TotalCost)
	assert.Equal(t, 2.02, bill.TotalCost)

	require.Len(t, bill.DailyBreakdown, 2)
	assert.Equal(t, "2025-08-15", bill.DailyBreakdown[0].Date)
	assert.Equal(t, 0.4, bill.DailyBreakdown[0].Cost)
	assert.InDelta(t, 0.95, bill.DailyBreakdown[0].CO2AvoidedKg, 1e-9)
	assert.InDelta(t, 3.68, bill.CO2AvoidedKg, 1e-9)
	assert.Equal(t, bill.CO2AvoidedKg, hourly.CO2AvoidedKg)
	assert.Len(t, hourly.HourlyBreakdown, 3)
	assert.Len(t, items.Items, 4)
}

func TestBillJSONShape(t *testing.T) {
	r, err := ParseDateRange("2025-08-15", "2025-08-15")
	require.NoError(t, err)

	raw, err := json.Marshal(BuildHourlyBill(NewPeriod(3, r), Aggregate(nil, PriceTable{})))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(3), out["user_id"])
	assert.Equal(t, "2025-08-15", out["start_date"])
	assert.Equal(t, float64(0), out["co2_avoided_kg"])
	assert.Equal(t, []any{}, out["daily_breakdown"])
	assert.Equal(t, []any{}, out["hourly_breakdown"])
}

func TestPeakHour(t *testing.T) {
	var bins [24]float64
	assert.Nil(t, PeakHour(bins))

	bins[14] = 5.0
	bins[18] = 7.0
	require.NotNil(t, PeakHour(bins))
	assert.Equal(t, 18, *PeakHour(bins))

	bins[6] = 7.0
	assert.Equal(t, 6, *PeakHour(bins))
}

func TestAnalyzeCombinesEV(t *testing.T) {
	r, err := ParseDateRange("2025-08-15", "2025-08-16")
	require.NoError(t, err)
	u := Aggregate(sampleReadings(), sampleRates())
	end := at("2025-08-15T22:00:00Z")
	ev := SummarizeSessions([]models.ChargingSession{
		{ID: 1, StartTime: at("2025-08-15T20:00:00Z"), EndTime: &end, EnergyKWh: 10, Cost: 2.5},
		{ID: 2, StartTime: at("2025-08-16T07:00:00Z"), EnergyKWh: 2.25, Cost: 0.5},
	})

	rep := BuildAnalytics(NewPeriod(1, r), Analyze(u, ev, r))

	assert.Equal(t, 7.75, rep.HouseholdKWh)
	assert.Equal(t, 12.25, rep.EVKWh)
	assert.Equal(t, 20.0, rep.TotalKWh)
	assert.Equal(t, 2.02, rep.HouseholdCost)
	assert.Equal(t, 3.0, rep.EVCost)
	assert.Equal(t, 5.02, rep.TotalCost)
	assert.Equal(t, 10.0, rep.AverageDailyKWh)
	assert.Equal(t, 9.5, rep.CO2OffsetKg)
	require.NotNil(t, rep.PeakUsageHour)
	assert.Equal(t, 18, *rep.PeakUsageHour)
	assert.Len(t, rep.HourlyProfile, 24)
	assert.Equal(t, 4.5, rep.HourlyProfile[18].KWh)
}

func TestAnalyzeNoUsage(t *testing.T) {
	r, err := ParseDateRange("2025-08-01", "2025-08-31")
	require.NoError(t, err)

	rep := BuildAnalytics(NewPeriod(1, r), Analyze(Aggregate(nil, PriceTable{}), EVUsage{}, r))

	assert.Zero(t, rep.TotalKWh)
	assert.Zero(t, rep.TotalCost)
	assert.Zero(t, rep.AverageDailyKWh)
	assert.Zero(t, rep.CO2OffsetKg)
	assert.Nil(t, rep.PeakUsageHour)
}

func TestDateRange(t *testing.T) {
	r, err := ParseDateRange("2025-08-15", "2025-08-17")
	require.NoError(t, err)

	assert.Equal(t, 3, r.Days())
	assert.True(t, r.Contains(at("2025-08-17T23:59:59Z")))
	assert.False(t, r.Contains(at("2025-08-18T00:00:00Z")))
	assert.Equal(t, at("2025-08-18T00:00:00Z"), r.Until())

	_, err = ParseDateRange("2025-08-17", "2025-08-15")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	_, err = ParseDateRange("15/08/2025", "2025-08-15")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	_, err = ParseDateRange("", "2025-08-15")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestPriceTableFloorsLookups(t *testing.T) {
	table := NewPriceTable([]models.PriceEntry{
		{HourStart: at("2025-08-15T09:00:00Z"), PricePerKWh: 0.2},
	})

	price, ok := table.RateForHour(at("2025-08-15T09:59:59Z"))
	assert.True(t, ok)
	assert.Equal(t, 0.2, price)

	price, ok = table.RateForHour(at("2025-08-15T10:00:00Z"))
	assert.False(t, ok)
	assert.Zero(t, price)
}
