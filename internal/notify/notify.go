// Package notify sends the daily attendance summary.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/username/worktrack/internal/attendance"
	"go.uber.org/zap"
)

// Notifier delivers a text message
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes messages to the log; used when no channel is configured
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message
func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info("Notification", zap.String("text", text))
	return nil
}

// FormatSummary renders the clock-in result and the month dashboard as plain text
func FormatSummary(rec attendance.Record, stats attendance.Stats, shiftCode string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", rec.Date, rec.Type.Label(shiftCode))
	switch {
	case rec.IsManual:
		b.WriteString(" (manual)")
	case rec.IsAutoClocked:
		b.WriteString(" (clocked)")
	}
	if rec.Note != "" {
		fmt.Fprintf(&b, " - %s", rec.Note)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Progress: %s/%s days (%s%%)\n",
		stats.TotalCalculatedDays.String(),
		stats.TargetWorkingDays.String(),
		stats.ProgressPercent.Round(0).String())
	fmt.Fprintf(&b, "Completed so far: %s\n", stats.CompletedWorkDays.String())
	if stats.MissingDays.IsPositive() {
		fmt.Fprintf(&b, "Missing: %s\n", stats.MissingDays.String())
	}
	fmt.Fprintf(&b, "Leave: %s used, %s left of %s",
		stats.UsedLeave.String(),
		stats.RemainingLeave.String(),
		stats.TotalLeave.String())

	return b.String()
}
