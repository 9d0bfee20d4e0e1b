package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/internal/notify"
	"github.com/username/worktrack/pkg/dateutil"
	"go.uber.org/zap"
)

// ErrSyncRunning is returned when a sync is requested while another one runs
var ErrSyncRunning = errors.New("sync already in progress")

// Clocker is the part of the state owner the daemon drives
type Clocker interface {
	AutoClock(ctx context.Context) (attendance.Record, error)
	Stats(ctx context.Context, year int, month time.Month) (attendance.Stats, error)
	Settings(ctx context.Context) (attendance.Settings, error)
}

// Schedule says when the daily clock-in runs. A positive Interval switches to
// interval mode: a check every Interval, still at most one clock-in per day.
type Schedule struct {
	Hour     int
	Minute   int
	Interval time.Duration
	Location *time.Location
}

// Daemon represents the daemon process
type Daemon struct {
	clocker    Clocker
	notifier   notify.Notifier
	schedule   Schedule
	systemTray bool
	logger     *zap.Logger
	now        func() time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	trayApp    *TrayApp

	mu          sync.Mutex
	syncRunning bool
	lastRunDate string
	lastRunTime time.Time
	lastRecord  attendance.Record
}

// NewDaemon creates a new daemon instance
func NewDaemon(clocker Clocker, notifier notify.Notifier, schedule Schedule, systemTray bool, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	if schedule.Location == nil {
		schedule.Location = time.Local
	}

	return &Daemon{
		clocker:    clocker,
		notifier:   notifier,
		schedule:   schedule,
		systemTray: systemTray,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the daemon and blocks until it stops
func (d *Daemon) Start() error {
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			d.run()
			return nil
		}
		d.trayApp = trayApp
		// Blocks until Quit; the tray starts run() itself.
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	d.run()
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// run is the scheduling loop (called from tray or standalone)
func (d *Daemon) run() {
	tick := time.Minute
	if d.schedule.Interval > 0 {
		tick = d.schedule.Interval
		d.logger.Info("Daemon started in interval mode",
			zap.Duration("check_interval", tick))
	} else {
		d.logger.Info("Daemon started in daily mode",
			zap.Int("daily_hour", d.schedule.Hour),
			zap.Int("daily_minute", d.schedule.Minute),
			zap.String("timezone", d.schedule.Location.String()))
	}

	if d.dueNow(d.now()) {
		d.SyncNow()
	}
	d.logNextRun()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			d.Stop()
			return

		case <-ticker.C:
			d.onTick(d.now())
		}
	}
}

// onTick clocks in while today's run is owed; a failed run stays owed
func (d *Daemon) onTick(now time.Time) {
	if !d.dueNow(now) {
		return
	}
	d.SyncNow()
	d.logNextRun()
}

// dueNow is true when today's run is still owed: always in interval mode,
// after the daily time in daily mode.
func (d *Daemon) dueNow(now time.Time) bool {
	if d.ranOn(now) {
		return false
	}
	if d.schedule.Interval > 0 {
		return true
	}
	local := now.In(d.schedule.Location)
	scheduled := time.Date(local.Year(), local.Month(), local.Day(),
		d.schedule.Hour, d.schedule.Minute, 0, 0, d.schedule.Location)
	return !local.Before(scheduled)
}

func (d *Daemon) ranOn(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRunDate == dateutil.DayID(now.In(d.schedule.Location))
}

// calculateNextRun returns the next daily run after now
func (d *Daemon) calculateNextRun(now time.Time) time.Time {
	if d.schedule.Interval > 0 {
		return now.Add(d.schedule.Interval)
	}
	local := now.In(d.schedule.Location)
	today := time.Date(local.Year(), local.Month(), local.Day(),
		d.schedule.Hour, d.schedule.Minute, 0, 0, d.schedule.Location)

	if !local.Before(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

func (d *Daemon) logNextRun() {
	next := d.calculateNextRun(d.now())
	d.logger.Info("Next clock-in scheduled",
		zap.Time("next_run", next),
		zap.Duration("wait_duration", next.Sub(d.now())))
}

// runSync clocks in for today once and sends the summary
func (d *Daemon) runSync() error {
	d.mu.Lock()
	if d.syncRunning {
		d.mu.Unlock()
		d.logger.Warn("Sync already running, skipping concurrent execution")
		return ErrSyncRunning
	}
	now := d.now().In(d.schedule.Location)
	today := dateutil.DayID(now)
	if d.lastRunDate == today {
		d.mu.Unlock()
		d.logger.Info("Already clocked in today, skipping",
			zap.String("last_run_date", today),
			zap.Time("last_run_time", d.lastRunTime))
		return nil
	}
	d.syncRunning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.syncRunning = false
		d.mu.Unlock()
	}()

	rec, err := d.clocker.AutoClock(d.ctx)
	if err != nil {
		return fmt.Errorf("failed to clock in: %w", err)
	}

	d.mu.Lock()
	d.lastRunDate = today
	d.lastRunTime = now
	d.lastRecord = rec
	d.mu.Unlock()

	d.logger.Info("Clock-in completed",
		zap.String("date", today),
		zap.String("type", rec.Type.String()),
		zap.Bool("clocked", rec.IsAutoClocked))

	stats, err := d.clocker.Stats(d.ctx, now.Year(), now.Month())
	if err != nil {
		d.logger.Warn("Failed to compute stats for summary", zap.Error(err))
		return nil
	}
	shift := attendance.DefaultShiftCode
	if s, err := d.clocker.Settings(d.ctx); err == nil && s.ShiftCode != "" {
		shift = s.ShiftCode
	}

	if err := d.notifier.Notify(d.ctx, notify.FormatSummary(rec, stats, shift)); err != nil {
		d.logger.Warn("Failed to send summary", zap.Error(err))
	}
	return nil
}

// SyncNow triggers an immediate clock-in (also called from tray menu)
func (d *Daemon) SyncNow() {
	if err := d.runSync(); err != nil {
		d.logger.Error("Clock-in failed", zap.Error(err))
		if d.trayApp != nil {
			d.trayApp.ShowNotification("Clock-in failed", fmt.Sprintf("Error: %v", err))
		}
		return
	}
	if d.trayApp != nil {
		d.trayApp.ShowNotification("Clock-in completed", "Attendance recorded for today")
	}
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":       d.ctx.Err() == nil,
		"last_run_date": d.lastRunDate,
		"next_run":      d.calculateNextRun(d.now()).Format(time.RFC3339),
	}
	if d.lastRunDate != "" {
		status["today"] = map[string]interface{}{
			"date":          d.lastRecord.Date,
			"type":          d.lastRecord.Type.Code(),
			"auto_clocked":  d.lastRecord.IsAutoClocked,
			"manual":        d.lastRecord.IsManual,
			"last_run_time": d.lastRunTime.Format(time.RFC3339),
		}
	}
	return status
}
