package dateutil

import (
	"fmt"
	"time"
)

// DayIDLayout is the canonical day identifier layout (zero-padded, sorts chronologically)
const DayIDLayout = "2006-01-02"

// MondayIndex maps a weekday onto a Monday-first week (Monday=0 ... Sunday=6)
func MondayIndex(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// DayID formats the civil date of t as YYYY-MM-DD. The time of day is ignored.
func DayID(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDayID parses a YYYY-MM-DD identifier into a UTC midnight date
func ParseDayID(id string) (time.Time, error) {
	t, err := time.Parse(DayIDLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day id %q: %w", id, err)
	}
	return t, nil
}

// DaysInMonth returns the number of days of the month in the proleptic Gregorian calendar
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysOfMonth returns every date of the month in ascending order (UTC midnight)
func DaysOfMonth(year int, month time.Month) []time.Time {
	n := DaysInMonth(year, month)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC)
	}
	return days
}

// DaysOfYear returns every date of the year in ascending order
func DaysOfYear(year int) []time.Time {
	days := make([]time.Time, 0, 366)
	for m := time.January; m <= time.December; m++ {
		days = append(days, DaysOfMonth(year, m)...)
	}
	return days
}

// GridOffset returns the number of leading blank cells of a Monday-first 7-column grid
func GridOffset(year int, month time.Month) int {
	return MondayIndex(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// MonthGrid returns the Monday-first grid cells for the month.
// Leading blanks are zero times.
func MonthGrid(year int, month time.Month) []time.Time {
	offset := GridOffset(year, month)
	return append(make([]time.Time, offset), DaysOfMonth(year, month)...)
}
