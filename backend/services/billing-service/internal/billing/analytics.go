package billing

import "greenvolt/backend/services/billing-service/internal/models"

// EmissionFactorKgPerKWh is the grid CO2 intensity avoided per kWh.
const EmissionFactorKgPerKWh = 0.475

// CO2Avoided is the grid emission avoided by kwh of energy.
func CO2Avoided(kwh float64) float64 {
	return kwh * EmissionFactorKgPerKWh
}

// EVUsage totals the charging sessions started within a period.
type EVUsage struct {
	Sessions  int
	EnergyKWh float64
	Cost      float64
}

// SummarizeSessions sums energy and snapshot cost of sessions. Sessions are
// taken as given: callers select them by start_time.
func SummarizeSessions(sessions []models.ChargingSession) EVUsage {
	var ev EVUsage
	for _, s := range sessions {
		ev.Sessions++
		ev.EnergyKWh += s.EnergyKWh
		ev.Cost += s.Cost
	}
	return ev
}

// Analytics are the derived figures for a user over a date range.
type Analytics struct {
	HouseholdKWh     float64
	HouseholdCost    float64
	EVKWh            float64
	EVCost           float64
	TotalKWh         float64
	TotalCost        float64
	AverageDailyKWh  float64
	PeakUsageHour    *int
	CO2OffsetKg      float64
	HourOfDay        [24]float64
	MissingRateHours int
}

// Analyze combines household usage with EV usage over r.
func Analyze(household Usage, ev EVUsage, r DateRange) Analytics {
	a := Analytics{
		HouseholdKWh:     household.EnergyKWh,
		HouseholdCost:    household.Cost,
		EVKWh:            ev.EnergyKWh,
		EVCost:           ev.Cost,
		TotalKWh:         household.EnergyKWh + ev.EnergyKWh,
		TotalCost:        household.Cost + ev.Cost,
		PeakUsageHour:    PeakHour(household.HourOfDay),
		HourOfDay:        household.HourOfDay,
		MissingRateHours: household.MissingRateHours,
	}
	if days := r.Days(); days > 0 {
		a.AverageDailyKWh = a.TotalKWh / float64(days)
	}
	a.CO2OffsetKg = CO2Avoided(a.TotalKWh)
	return a
}

// PeakHour returns the hour of day with the most energy, preferring the
// lowest hour on ties. It returns nil when every bin is zero.
func PeakHour(bins [24]float64) *int {
	peak := -1
	for h, v := range bins {
		if v <= 0 {
			continue
		}
		if peak < 0 || v > bins[peak] {
			peak = h
		}
	}
	if peak < 0 {
		return nil
	}
	return &peak
}
