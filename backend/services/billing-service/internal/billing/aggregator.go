package billing

import (
	"sort"
	"time"

	"greenvolt/backend/services/billing-service/internal/models"
)

// LineItem is one priced meter reading.
type LineItem struct {
	ReadingID   int64     `json:"reading_id"`
	MeterID     int64     `json:"meter_id"`
	Timestamp   time.Time `json:"timestamp"`
	HourStart   time.Time `json:"hour_start"`
	EnergyKWh   float64   `json:"energy_kwh"`
	PricePerKWh float64   `json:"price_per_kwh"`
	Cost        float64   `json:"cost"`
	RateMissing bool      `json:"rate_missing"`
}

// DayTotal is the usage of one UTC calendar day.
type DayTotal struct {
	Date      time.Time
	EnergyKWh float64
	Cost      float64
}

// HourTotal is the usage of one hour bucket.
type HourTotal struct {
	HourStart   time.Time
	EnergyKWh   float64
	Cost        float64
	RateMissing bool
}

// Usage is the priced aggregation of a set of readings. Days and Hours are in
// chronological order; HourOfDay accumulates energy by hour of day across the
// whole set.
type Usage struct {
	EnergyKWh        float64
	Cost             float64
	MissingRateHours int
	Items            []LineItem
	Days             []DayTotal
	Hours            []HourTotal
	HourOfDay        [24]float64
}

// Aggregate prices every reading at its hour-floor rate and rolls the results
// up per day, per hour bucket and per hour of day. A nil or empty input yields
// a zero Usage with empty (non-nil) slices.
func Aggregate(readings []models.MeterReading, rates RateLookup) Usage {
	sorted := make([]models.MeterReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	u := Usage{
		Items: make([]LineItem, 0, len(sorted)),
		Days:  []DayTotal{},
		Hours: []HourTotal{},
	}
	missing := make(map[time.Time]struct{})

	for _, r := range sorted {
		ts := r.Timestamp.UTC()
		hour := HourStart(ts)
		price, found := rates.RateForHour(hour)

		item := LineItem{
			ReadingID:   r.ID,
			MeterID:     r.MeterID,
			Timestamp:   ts,
			HourStart:   hour,
			EnergyKWh:   r.EnergyKWh,
			PricePerKWh: price,
			Cost:        r.EnergyKWh * price,
			RateMissing: !found,
		}
		u.Items = append(u.Items, item)
		u.EnergyKWh += item.EnergyKWh
		u.Cost += item.Cost
		u.HourOfDay[hour.Hour()] += item.EnergyKWh
		if !found {
			missing[hour] = struct{}{}
		}

		day := DayStart(ts)
		if n := len(u.Days); n == 0 || !u.Days[n-1].Date.Equal(day) {
			u.Days = append(u.Days, DayTotal{Date: day})
		}
		d := &u.Days[len(u.Days)-1]
		d.EnergyKWh += item.EnergyKWh
		d.Cost += item.Cost

		if n := len(u.Hours); n == 0 || !u.Hours[n-1].HourStart.Equal(hour) {
			u.Hours = append(u.Hours, HourTotal{HourStart: hour, RateMissing: !found})
		}
		h := &u.Hours[len(u.Hours)-1]
		h.EnergyKWh += item.EnergyKWh
		h.Cost += item.Cost
	}

	u.MissingRateHours = len(missing)
	return u
}
