package billing

import "time"

// DailyLine is a rounded per-day row of a bill.
type DailyLine struct {
	Date         string  `json:"date"`
	KWh          float64 `json:"kwh"`
	Cost         float64 `json:"cost"`
	CO2AvoidedKg float64 `json:"co2_avoided_kg"`
}

// HourlyLine is a rounded per-hour-bucket row of a bill.
type HourlyLine struct {
	HourStart   time.Time `json:"hour_start"`
	KWh         float64   `json:"kwh"`
	Cost        float64   `json:"cost"`
	RateMissing bool      `json:"rate_missing"`
}

// HourProfile is the energy drawn at one hour of day across a period.
type HourProfile struct {
	Hour int     `json:"hour"`
	KWh  float64 `json:"kwh"`
}

// Period identifies whose usage a report covers.
type Period struct {
	UserID    int64  `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// NewPeriod builds the report header for userID over r.
func NewPeriod(userID int64, r DateRange) Period {
	return Period{UserID: userID, StartDate: r.StartDate(), EndDate: r.EndDate()}
}

// Bill is the daily view of a user's household usage.
type Bill struct {
	Period
	TotalKWh         float64     `json:"total_kwh"`
	TotalCost        float64     `json:"total_cost"`
	CO2AvoidedKg     float64     `json:"co2_avoided_kg"`
	MissingRateHours int         `json:"missing_rate_hours"`
	DailyBreakdown   []DailyLine `json:"daily_breakdown"`
}

// HourlyBill adds the hour-bucket view to a Bill.
type HourlyBill struct {
	Bill
	HourlyBreakdown []HourlyLine `json:"hourly_breakdown"`
}

// LineItems is the per-reading view of a user's household usage.
type LineItems struct {
	Period
	TotalKWh         float64    `json:"total_kwh"`
	TotalCost        float64    `json:"total_cost"`
	MissingRateHours int        `json:"missing_rate_hours"`
	Items            []LineItem `json:"items"`
}

// AnalyticsReport is the combined household and EV summary.
type AnalyticsReport struct {
	Period
	HouseholdKWh     float64       `json:"household_kwh"`
	HouseholdCost    float64       `json:"household_cost"`
	EVKWh            float64       `json:"ev_kwh"`
	EVCost           float64       `json:"ev_cost"`
	TotalKWh         float64       `json:"total_kwh"`
	TotalCost        float64       `json:"total_cost"`
	AverageDailyKWh  float64       `json:"average_daily_kwh"`
	PeakUsageHour    *int          `json:"peak_usage_hour"`
	CO2OffsetKg      float64       `json:"co2_offset_kg"`
	MissingRateHours int           `json:"missing_rate_hours"`
	HourlyProfile    []HourProfile `json:"hourly_profile"`
}

// BuildBill renders the daily view of u.
func BuildBill(p Period, u Usage) Bill {
	b := Bill{
		Period:           p,
		TotalKWh:         Round(u.EnergyKWh, SummaryDecimals),
		TotalCost:        Round(u.Cost, SummaryDecimals),
		CO2AvoidedKg:     Round(CO2Avoided(u.EnergyKWh), SummaryDecimals),
		MissingRateHours: u.MissingRateHours,
		DailyBreakdown:   make([]DailyLine, 0, len(u.Days)),
	}
	for _, d := range u.Days {
		b.DailyBreakdown = append(b.DailyBreakdown, DailyLine{
			Date:         d.Date.Format(DateLayout),
			KWh:          Round(d.EnergyKWh, SummaryDecimals),
			Cost:         Round(d.Cost, SummaryDecimals),
			CO2AvoidedKg: Round(CO2Avoided(d.EnergyKWh), SummaryDecimals),
		})
	}
	return b
}

// BuildHourlyBill renders the daily and hour-bucket views of u. Totals are
// identical to BuildBill for the same input.
func BuildHourlyBill(p Period, u Usage) HourlyBill {
	hb := HourlyBill{
		Bill:            BuildBill(p, u),
		HourlyBreakdown: make([]HourlyLine, 0, len(u.Hours)),
	}
	for _, h := range u.Hours {
		hb.HourlyBreakdown = append(hb.HourlyBreakdown, HourlyLine{
			HourStart:   h.HourStart,
			KWh:         Round(h.EnergyKWh, SummaryDecimals),
			Cost:        Round(h.Cost, SummaryDecimals),
			RateMissing: h.RateMissing,
		})
	}
	return hb
}

// BuildLineItems renders the per-reading view of u. Line costs keep stored
// precision; totals use summary precision.
func BuildLineItems(p Period, u Usage) LineItems {
	li := LineItems{
		Period:           p,
		TotalKWh:         Round(u.EnergyKWh, SummaryDecimals),
		TotalCost:        Round(u.Cost, SummaryDecimals),
		MissingRateHours: u.MissingRateHours,
		Items:            make([]LineItem, 0, len(u.Items)),
	}
	for _, it := range u.Items {
		it.Cost = Round(it.Cost, StoredCostDecimals)
		li.Items = append(li.Items, it)
	}
	return li
}

// BuildAnalytics renders a.
func BuildAnalytics(p Period, a Analytics) AnalyticsReport {
	rep := AnalyticsReport{
		Period:           p,
		HouseholdKWh:     Round(a.HouseholdKWh, SummaryDecimals),
		HouseholdCost:    Round(a.HouseholdCost, SummaryDecimals),
		EVKWh:            Round(a.EVKWh, SummaryDecimals),
		EVCost:           Round(a.EVCost, SummaryDecimals),
		TotalKWh:         Round(a.TotalKWh, SummaryDecimals),
		TotalCost:        Round(a.TotalCost, SummaryDecimals),
		AverageDailyKWh:  Round(a.AverageDailyKWh, SummaryDecimals),
		PeakUsageHour:    a.PeakUsageHour,
		CO2OffsetKg:      Round(a.CO2OffsetKg, SummaryDecimals),
		MissingRateHours: a.MissingRateHours,
		HourlyProfile:    make([]HourProfile, 0, len(a.HourOfDay)),
	}
	for h, kwh := range a.HourOfDay {
		rep.HourlyProfile = append(rep.HourlyProfile, HourProfile{Hour: h, KWh: Round(kwh, ProfileDecimals)})
	}
	return rep
}
