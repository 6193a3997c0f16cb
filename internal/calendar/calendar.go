// Package calendar holds the date helpers shared by rentals, settlement and reporting.
// All calendar dates are normalised to midnight UTC.
package calendar

import (
	"fmt"
	"time"
)

// Day truncates t to its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (YYYY-MM-DD): %w", s, err)
	}

	return t, nil
}

// AddMonths moves d forward by n calendar months. Day overflow rolls into the
// following month (Jan 31 + 1 month = Mar 2 or 3).
func AddMonths(d time.Time, n int) time.Time {
	return d.AddDate(0, n, 0)
}

// MonthKey is the YYYY-MM bucket key for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// StartOfWeek returns the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}

	return Day(t).AddDate(0, 0, -offset+1)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts calendar days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours()/24) + 1
}
