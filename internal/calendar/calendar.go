package calendar

import (
	"context"

	"github.com/username/worktrack/internal/attendance"
)

// Source provides the public holiday table of a year
type Source interface {
	// Holidays returns every public holiday of the year keyed by day id
	Holidays(ctx context.Context, year int) (attendance.HolidayTable, error)
}
