package billing

import (
	"errors"
	"math"
	"time"
)

// OpenSessionWindow is the duration an open-ended session is priced over.
const OpenSessionWindow = time.Hour

var (
	// ErrInvalidInterval is returned when an interval does not end after it starts.
	ErrInvalidInterval = errors.New("billing: end must be after start")
	// ErrInvalidEnergy is returned for negative or non-finite energy amounts.
	ErrInvalidEnergy = errors.New("billing: energy must be a finite, non-negative kWh amount")
)

// Bucket is the share of an interval's energy that fell into one hour.
type Bucket struct {
	HourStart   time.Time `json:"hour_start"`
	Seconds     float64   `json:"seconds"`
	EnergyKWh   float64   `json:"energy_kwh"`
	PricePerKWh float64   `json:"price_per_kwh"`
	RateMissing bool      `json:"rate_missing"`
	Cost        float64   `json:"cost"`
}

// Allocation is the priced hour-by-hour split of an interval.
type Allocation struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	EnergyKWh        float64   `json:"energy_kwh"`
	Cost             float64   `json:"cost"`
	MissingRateHours int       `json:"missing_rate_hours"`
	Buckets          []Bucket  `json:"buckets"`
}

// SessionWindow returns the interval a session is priced over. A session
// without an end is priced as if it lasted OpenSessionWindow.
func SessionWindow(start time.Time, end *time.Time) (time.Time, time.Time) {
	start = start.UTC()
	if end == nil {
		return start, start.Add(OpenSessionWindow)
	}
	return start, end.UTC()
}

// Allocate spreads energyKWh over [start, end) proportionally to the time
// spent in each calendar hour and prices every share with rates. The final
// bucket absorbs the remainder so shares always sum to energyKWh. Cost is
// rounded to StoredCostDecimals.
func Allocate(start, end time.Time, energyKWh float64, rates RateLookup) (Allocation, error) {
	if !end.After(start) {
		return Allocation{}, ErrInvalidInterval
	}
	if math.IsNaN(energyKWh) || math.IsInf(energyKWh, 0) || energyKWh < 0 {
		return Allocation{}, ErrInvalidEnergy
	}

	start, end = start.UTC(), end.UTC()
	duration := float64(end.Sub(start))

	alloc := Allocation{Start: start, End: end, EnergyKWh: energyKWh}
	var allocated, cost float64

	for cursor := HourStart(start); cursor.Before(end); cursor = cursor.Add(time.Hour) {
		next := cursor.Add(time.Hour)
		seg := minTime(next, end).Sub(maxTime(cursor, start))
		if seg <= 0 {
			continue
		}

		share := energyKWh * float64(seg) / duration
		if !next.Before(end) {
			share = energyKWh - allocated
		}
		allocated += share

		price, found := rates.RateForHour(cursor)
		bucket := Bucket{
			HourStart:   cursor,
			Seconds:     seg.Seconds(),
			EnergyKWh:   share,
			PricePerKWh: price,
			RateMissing: !found,
			Cost:        share * price,
		}
		if !found {
			alloc.MissingRateHours++
		}
		cost += bucket.Cost
		alloc.Buckets = append(alloc.Buckets, bucket)
	}

	alloc.Cost = Round(cost, StoredCostDecimals)
	return alloc, nil
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
