package core

import (
	"fmt"
	"time"
)

// WeekOf returns the year/week bucket for t using the simplified
// day-offset formula: week = ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7)
// with Sunday as weekday 0.
//
// This is NOT strict ISO-8601 week numbering. Persisted weekly aggregation
// keys depend on this exact bucketing; changing it to a standards-compliant
// algorithm would silently regroup historical data.
func WeekOf(t time.Time) (year, week int) {
	year = t.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location())
	days := int(t.Sub(jan1) / (24 * time.Hour))
	week = (days + int(jan1.Weekday()) + 1 + 6) / 7
	return year, week
}

// YearWeek formats t's week bucket as "YYYY-Wnn".
func YearWeek(t time.Time) string {
	y, w := WeekOf(t)
	return fmt.Sprintf("%d-W%02d", y, w)
}

// MonthCode formats a month key as "YYYY-MM".
func MonthCode(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d", year, int(month))
}

// MonthName returns the English month name ("January", ...).
func MonthName(month time.Month) string {
	return month.String()
}

// MonthEnd returns the last instant of the month containing t, capped at
// cap when the month extends past it (the in-progress current month).
func MonthEnd(t, cap time.Time) time.Time {
	end := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location()).Add(-time.Second)
	if end.After(cap) {
		return cap
	}
	return end
}
