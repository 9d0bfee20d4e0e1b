package calendar

import (
	"context"
	"fmt"

	"github.com/username/worktrack/internal/attendance"
	"go.uber.org/zap"
)

// CompositeCalendar implements Source with fallback strategy
type CompositeCalendar struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Source, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Holidays tries the primary source first and falls back on error
func (cc *CompositeCalendar) Holidays(ctx context.Context, year int) (attendance.HolidayTable, error) {
	table, err := cc.primary.Holidays(ctx, year)
	if err == nil {
		return table, nil
	}

	cc.logger.Warn("Primary calendar failed, falling back",
		zap.Int("year", year),
		zap.Error(err))

	table, fallbackErr := cc.fallback.Holidays(ctx, year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return table, nil
}
