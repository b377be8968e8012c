package service

import (
	"strings"
	"time"

	"greenvolt/backend/services/billing-service/internal/billing"
)

const monthLayout = "2006-01"

// dayOrToday parses a YYYY-MM-DD day, defaulting to the day containing now.
func dayOrToday(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return billing.DayStart(now), nil
	}
	t, err := time.Parse(billing.DateLayout, value)
	if err != nil {
		return time.Time{}, invalid("date %q must be YYYY-MM-DD", value)
	}
	return t, nil
}

// monthOrCurrent parses a YYYY-MM month, defaulting to the month containing now.
func monthOrCurrent(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return billing.MonthStart(now), nil
	}
	t, err := time.Parse(monthLayout, value)
	if err != nil {
		return time.Time{}, invalid("month %q must be YYYY-MM", value)
	}
	return t, nil
}

// parseRange validates a YYYY-MM-DD date pair.
func parseRange(start, end string) (billing.DateRange, error) {
	r, err := billing.ParseDateRange(start, end)
	if err != nil {
		return billing.DateRange{}, invalid("%v", err)
	}
	return r, nil
}
