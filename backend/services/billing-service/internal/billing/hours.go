package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format accepted in range queries.
const DateLayout = "2006-01-02"

// ErrInvalidDateRange is returned for malformed or inverted date ranges.
var ErrInvalidDateRange = errors.New("billing: invalid date range")

// HourStart floors t to the top of its hour in UTC.
func HourStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
}

// DayStart floors t to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart floors t to the first day of its month, UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of whole UTC calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from the days containing start and end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: DayStart(start), End: DayStart(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidDateRange,
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := parseDay("start", start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := parseDay("end", end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

func parseDay(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s date is required", ErrInvalidDateRange, name)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s date %q must be YYYY-MM-DD", ErrInvalidDateRange, name, value)
	}
	return t, nil
}

// From is the first instant covered by the range.
func (r DateRange) From() time.Time { return r.Start }

// Until is the exclusive upper bound: midnight after the last day.
func (r DateRange) Until() time.Time { return r.End.AddDate(0, 0, 1) }

// Days is the inclusive number of calendar days.
func (r DateRange) Days() int {
	return int(r.Until().Sub(r.Start) / (24 * time.Hour))
}

// Contains reports whether t falls on one of the range's days.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From()) && t.Before(r.Until())
}

// StartDate formats the first day.
func (r DateRange) StartDate() string { return r.Start.Format(DateLayout) }

// EndDate formats the last day.
func (r DateRange) EndDate() string { return r.End.Format(DateLayout) }
