package daemon

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/worktrack/internal/attendance"
	"go.uber.org/zap"
)

type fakeClocker struct {
	calls int
	err   error
}

func (c *fakeClocker) AutoClock(context.Context) (attendance.Record, error) {
	c.calls++
	if c.err != nil {
		return attendance.Record{}, c.err
	}
	return attendance.Record{Date: "2025-06-10", Type: attendance.DayTypeWork, IsAutoClocked: true}, nil
}

func (c *fakeClocker) Stats(context.Context, int, time.Month) (attendance.Stats, error) {
	return attendance.Stats{
		TotalLeave:          decimal.NewFromInt(12),
		UsedLeave:           decimal.NewFromInt(3),
		RemainingLeave:      decimal.NewFromInt(9),
		TotalCalculatedDays: decimal.NewFromInt(24),
		CompletedWorkDays:   decimal.NewFromInt(8),
		TargetWorkingDays:   decimal.NewFromInt(24),
		MissingDays:         decimal.Zero,
		ProgressPercent:     decimal.NewFromInt(100),
	}, nil
}

func (c *fakeClocker) Settings(context.Context) (attendance.Settings, error) {
	return attendance.Settings{ShiftCode: "K2"}, nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return nil
}

func newTestDaemon(clocker Clocker, n *recordingNotifier, schedule Schedule, now *time.Time) *Daemon {
	d := NewDaemon(clocker, n, schedule, false, zap.NewNop())
	d.now = func() time.Time { return *now }
	return d
}

func TestRunSync_OncePerDay(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	clocker := &fakeClocker{}
	notifier := &recordingNotifier{}
	d := newTestDaemon(clocker, notifier, Schedule{Hour: 9, Location: time.UTC}, &now)

	for i := 0; i < 3; i++ {
		if err := d.runSync(); err != nil {
			t.Fatalf("runSync() error = %v", err)
		}
	}
	if clocker.calls != 1 {
		t.Errorf("AutoClock called %d times, want 1", clocker.calls)
	}
	if len(notifier.messages) != 1 || !strings.HasPrefix(notifier.messages[0], "2025-06-10: K2 (clocked)") {
		t.Errorf("messages = %q", notifier.messages)
	}

	now = now.AddDate(0, 0, 1)
	if err := d.runSync(); err != nil {
		t.Fatalf("runSync() next day error = %v", err)
	}
	if clocker.calls != 2 {
		t.Errorf("AutoClock called %d times after a day, want 2", clocker.calls)
	}
}

func TestRunSync_FailureRetries(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	clocker := &fakeClocker{err: errors.New("disk full")}
	notifier := &recordingNotifier{}
	d := newTestDaemon(clocker, notifier, Schedule{Hour: 9, Location: time.UTC}, &now)

	if err := d.runSync(); err == nil {
		t.Fatal("expected error, got nil")
	}
	if d.ranOn(now) {
		t.Error("failed run marked the day as done")
	}

	clocker.err = nil
	if err := d.runSync(); err != nil {
		t.Fatalf("runSync() retry error = %v", err)
	}
	if !d.ranOn(now) || len(notifier.messages) != 1 {
		t.Errorf("retry did not complete: ran=%v messages=%d", d.ranOn(now), len(notifier.messages))
	}
}

func TestOnTick_RetriesAfterFailedDailyRun(t *testing.T) {
	now := time.Date(2025, time.June, 10, 8, 59, 0, 0, time.UTC)
	clocker := &fakeClocker{err: errors.New("holiday source down")}
	notifier := &recordingNotifier{}
	d := newTestDaemon(clocker, notifier, Schedule{Hour: 9, Location: time.UTC}, &now)

	d.onTick(now)
	if clocker.calls != 0 {
		t.Fatalf("AutoClock called %d times before the daily time, want 0", clocker.calls)
	}

	now = now.Add(time.Minute)
	d.onTick(now)
	if clocker.calls != 1 || d.ranOn(now) {
		t.Fatalf("after failed 09:00 tick: calls=%d ran=%v", clocker.calls, d.ranOn(now))
	}

	clocker.err = nil
	now = now.Add(time.Minute)
	d.onTick(now)
	if clocker.calls != 2 || !d.ranOn(now) {
		t.Errorf("09:01 tick did not retry: calls=%d ran=%v", clocker.calls, d.ranOn(now))
	}

	now = now.Add(time.Minute)
	d.onTick(now)
	if clocker.calls != 2 {
		t.Errorf("AutoClock called %d times after success, want 2", clocker.calls)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("messages = %d, want 1", len(notifier.messages))
	}
}

func TestScheduleHelpers(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	d := NewDaemon(&fakeClocker{}, &recordingNotifier{}, Schedule{Hour: 9, Minute: 30, Location: loc}, false, zap.NewNop())

	tests := []struct {
		name       string
		now        time.Time
		wantDue    bool
		wantNextAt time.Time
	}{
		{
			name:       "before the daily time",
			now:        time.Date(2025, 6, 10, 8, 0, 0, 0, loc),
			wantNextAt: time.Date(2025, 6, 10, 9, 30, 0, 0, loc),
		},
		{
			name:       "at the daily time",
			now:        time.Date(2025, 6, 10, 9, 30, 20, 0, loc),
			wantDue:    true,
			wantNextAt: time.Date(2025, 6, 11, 9, 30, 0, 0, loc),
		},
		{
			name:       "after the daily time, other zone",
			now:        time.Date(2025, 6, 10, 5, 0, 0, 0, time.UTC),
			wantDue:    true,
			wantNextAt: time.Date(2025, 6, 11, 9, 30, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.dueNow(tt.now); got != tt.wantDue {
				t.Errorf("dueNow() = %v, want %v", got, tt.wantDue)
			}
			if got := d.calculateNextRun(tt.now); !got.Equal(tt.wantNextAt) {
				t.Errorf("calculateNextRun() = %v, want %v", got, tt.wantNextAt)
			}
		})
	}
}

func TestIntervalMode(t *testing.T) {
	now := time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC)
	d := newTestDaemon(&fakeClocker{}, &recordingNotifier{}, Schedule{Interval: time.Hour, Location: time.UTC}, &now)

	if !d.dueNow(now) {
		t.Error("interval mode should be due at startup")
	}
	if got := d.calculateNextRun(now); !got.Equal(now.Add(time.Hour)) {
		t.Errorf("calculateNextRun() = %v, want +1h", got)
	}

	if err := d.runSync(); err != nil {
		t.Fatalf("runSync() error = %v", err)
	}
	if d.dueNow(now) {
		t.Error("still due after running today")
	}
}

func TestGetStatus(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	d := newTestDaemon(&fakeClocker{}, &recordingNotifier{}, Schedule{Hour: 9, Location: time.UTC}, &now)

	if _, ok := d.GetStatus()["today"]; ok {
		t.Error("status has today before any run")
	}

	if err := d.runSync(); err != nil {
		t.Fatalf("runSync() error = %v", err)
	}
	status := d.GetStatus()
	today, ok := status["today"].(map[string]interface{})
	if !ok {
		t.Fatalf("status = %v, want today entry", status)
	}
	if today["type"] != "X1" || status["last_run_date"] != "2025-06-10" {
		t.Errorf("status = %v", status)
	}

	d.Stop()
	if d.GetStatus()["running"] != false {
		t.Error("running should be false after Stop")
	}
}
