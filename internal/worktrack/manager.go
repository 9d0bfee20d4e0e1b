// Package worktrack owns the attendance state: every load-modify-save cycle goes
// through Manager, one at a time.
package worktrack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/internal/calendar"
	"github.com/username/worktrack/internal/store"
	"github.com/username/worktrack/pkg/dateutil"
	"go.uber.org/zap"
)

// ErrInvalidSnapshot is returned when imported data fails validation
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ErrAlreadyInitialized is returned by Init when data exists and force is not set
var ErrAlreadyInitialized = errors.New("data already initialized")

// Manager manages the attendance snapshot
type Manager struct {
	store    store.Store
	calendar calendar.Source
	defaults attendance.Settings
	logger   *zap.Logger
	now      func() time.Time
	loc      *time.Location

	mu   sync.Mutex
	snap *attendance.Snapshot
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides time.Now (tests, replays)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLocation sets the time zone that decides what "today" is
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

// NewManager creates a new Manager. defaults are the settings of a fresh install;
// their Year is replaced by the current year.
func NewManager(st store.Store, cal calendar.Source, defaults attendance.Settings, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		calendar: cal,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Today returns today's day id in the manager's time zone
func (m *Manager) Today() string {
	return dateutil.DayID(m.now().In(m.loc))
}

func (m *Manager) currentYear() int {
	return m.now().In(m.loc).Year()
}

// Init seeds a fresh snapshot for the current year. With force an existing snapshot is replaced.
func (m *Manager) Init(ctx context.Context, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !force {
		_, err := m.store.Load(ctx)
		if err == nil {
			return ErrAlreadyInitialized
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to load data: %w", err)
		}
	}

	snap, err := m.seed(ctx)
	if err != nil {
		return err
	}
	return m.save(ctx, snap)
}

// Snapshot returns a copy of the whole state (export)
func (m *Manager) Snapshot(ctx context.Context) (*attendance.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	out := *snap
	out.Attendance = snap.Attendance.Clone()
	return &out, nil
}

// Import replaces the state with the given JSON snapshot after validating it
func (m *Manager) Import(ctx context.Context, data []byte) (*attendance.Snapshot, error) {
	snap, err := attendance.DecodeSnapshot(data, m.currentYear())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.save(ctx, snap); err != nil {
		return nil, err
	}

	m.logger.Info("Snapshot imported", zap.Int("days", len(snap.Attendance)))

	out := *snap
	out.Attendance = snap.Attendance.Clone()
	return &out, nil
}

// Month returns the records of the month in date order. Missing days of the year are
// seeded first.
func (m *Manager) Month(ctx context.Context, year int, month time.Month) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.loadYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return monthRecords(snap.Attendance, year, month), nil
}

// Optimize runs the optimizer over the month and persists the result
func (m *Manager) Optimize(ctx context.Context, year int, month time.Month) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.loadYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if err := m.optimize(ctx, snap, year, month); err != nil {
		return nil, err
	}
	if err := m.save(ctx, snap); err != nil {
		return nil, err
	}
	return monthRecords(snap.Attendance, year, month), nil
}

// Stats computes the dashboard of the month
func (m *Manager) Stats(ctx context.Context, year int, month time.Month) (attendance.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.loadYear(ctx, year)
	if err != nil {
		return attendance.Stats{}, err
	}
	return attendance.ComputeStats(year, month, snap.Attendance, snap.Settings, m.Today()), nil
}

// SetDay stores a manual choice for the day
func (m *Manager) SetDay(ctx context.Context, id string, dayType attendance.DayType, note string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.load(ctx)
	if err != nil {
		return attendance.Record{}, err
	}

	updated, err := attendance.SetDay(snap.Attendance, id, dayType, note)
	if err != nil {
		return attendance.Record{}, err
	}
	snap.Attendance = updated
	if err := m.save(ctx, snap); err != nil {
		return attendance.Record{}, err
	}

	m.logger.Info("Day set manually",
		zap.String("date", id),
		zap.String("type", dayType.String()))

	return updated[id], nil
}

// ResetDay drops the manual flag of the day. With auto-suggest on, the day's month is
// optimized again.
func (m *Manager) ResetDay(ctx context.Context, id string) (attendance.Record, error) {
	d, err := dateutil.ParseDayID(id)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("%w: %s", attendance.ErrInvalidDayID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.load(ctx)
	if err != nil {
		return attendance.Record{}, err
	}
	holidays, err := m.holidays(ctx, d.Year())
	if err != nil {
		return attendance.Record{}, err
	}

	updated, err := attendance.ResetDay(snap.Attendance, id, holidays)
	if err != nil {
		return attendance.Record{}, err
	}
	snap.Attendance = updated

	if snap.Settings.AutoSuggest {
		if err := m.optimize(ctx, snap, d.Year(), d.Month()); err != nil {
			return attendance.Record{}, err
		}
	}
	if err := m.save(ctx, snap); err != nil {
		return attendance.Record{}, err
	}
	return snap.Attendance[id], nil
}

// AutoClock applies the clock-in signal for today
func (m *Manager) AutoClock(ctx context.Context) (attendance.Record, error) {
	now := m.now().In(m.loc)
	today := dateutil.DayID(now)

	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.loadYear(ctx, now.Year())
	if err != nil {
		return attendance.Record{}, err
	}
	holidays, err := m.holidays(ctx, now.Year())
	if err != nil {
		return attendance.Record{}, err
	}

	updated, r, err := attendance.AutoClock(snap.Attendance, today, holidays)
	if err != nil {
		return attendance.Record{}, err
	}
	snap.Attendance = updated
	snap.LastSynced = now.UTC().Format(time.RFC3339)

	if err := m.save(ctx, snap); err != nil {
		return attendance.Record{}, err
	}

	m.logger.Info("Auto-clock applied",
		zap.String("date", today),
		zap.String("type", r.Type.String()),
		zap.Bool("manual", r.IsManual),
		zap.Bool("clocked", r.IsAutoClocked))

	return r, nil
}

// Settings returns the current settings
func (m *Manager) Settings(ctx context.Context) (attendance.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.load(ctx)
	if err != nil {
		return attendance.Settings{}, err
	}
	return snap.Settings, nil
}

// UpdateSettings replaces the settings. With auto-suggest on, the current month is
// optimized again under the new target and allowance.
func (m *Manager) UpdateSettings(ctx context.Context, s attendance.Settings) (attendance.Settings, error) {
	now := m.now().In(m.loc)

	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.loadYear(ctx, now.Year())
	if err != nil {
		return attendance.Settings{}, err
	}
	if s.ShiftCode == "" {
		s.ShiftCode = attendance.DefaultShiftCode
	}
	s.Year = now.Year()
	snap.Settings = s

	if s.AutoSuggest {
		if err := m.optimize(ctx, snap, now.Year(), now.Month()); err != nil {
			return attendance.Settings{}, err
		}
	}
	if err := m.save(ctx, snap); err != nil {
		return attendance.Settings{}, err
	}

	m.logger.Info("Settings updated",
		zap.String("target", s.TargetWorkingDays.String()),
		zap.String("leave", s.TotalLeave().String()))

	return s, nil
}

// Holidays returns the holiday table of the year
func (m *Manager) Holidays(ctx context.Context, year int) (attendance.HolidayTable, error) {
	return m.holidays(ctx, year)
}

func (m *Manager) holidays(ctx context.Context, year int) (attendance.HolidayTable, error) {
	table, err := m.calendar.Holidays(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays for %d: %w", year, err)
	}
	return table, nil
}

func (m *Manager) optimize(ctx context.Context, snap *attendance.Snapshot, year int, month time.Month) error {
	holidays, err := m.holidays(ctx, year)
	if err != nil {
		return err
	}
	snap.Attendance = attendance.OptimizeMonth(year, month, snap.Attendance, snap.Settings, holidays, m.Today())

	m.logger.Info("Month optimized",
		zap.Int("year", year),
		zap.Int("month", int(month)))

	return nil
}

// load returns the cached snapshot, reading the store once. Nothing stored yet means a
// fresh seed.
func (m *Manager) load(ctx context.Context) (*attendance.Snapshot, error) {
	if m.snap != nil {
		return m.snap, nil
	}

	snap, err := m.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		m.logger.Info("No stored data, seeding current year")
		if snap, err = m.seed(ctx); err != nil {
			return nil, err
		}
		if err := m.save(ctx, snap); err != nil {
			return nil, err
		}
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	m.snap = snap
	return snap, nil
}

// loadYear loads the snapshot and fills in any day of year that has no record
func (m *Manager) loadYear(ctx context.Context, year int) (*attendance.Snapshot, error) {
	snap, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	missing := false
	for _, d := range dateutil.DaysOfYear(year) {
		if _, ok := snap.Attendance[dateutil.DayID(d)]; !ok {
			missing = true
			break
		}
	}
	if !missing {
		return snap, nil
	}

	holidays, err := m.holidays(ctx, year)
	if err != nil {
		return nil, err
	}
	added := 0
	for id, r := range attendance.SeedYear(year, holidays) {
		if _, ok := snap.Attendance[id]; !ok {
			snap.Attendance[id] = r
			added++
		}
	}
	if year > snap.Settings.Year {
		snap.Settings.Year = year
	}

	m.logger.Info("Seeded missing days", zap.Int("year", year), zap.Int("added", added))

	if err := m.save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (m *Manager) seed(ctx context.Context) (*attendance.Snapshot, error) {
	year := m.currentYear()
	holidays, err := m.holidays(ctx, year)
	if err != nil {
		return nil, err
	}

	settings := m.defaults
	settings.Year = year
	if settings.ShiftCode == "" {
		settings.ShiftCode = attendance.DefaultShiftCode
	}

	return &attendance.Snapshot{
		Attendance: attendance.SeedYear(year, holidays),
		Settings:   settings,
	}, nil
}

func (m *Manager) save(ctx context.Context, snap *attendance.Snapshot) error {
	if err := m.store.Save(ctx, snap); err != nil {
		// The cached copy may be ahead of the store; drop it.
		m.snap = nil
		return fmt.Errorf("failed to save data: %w", err)
	}
	m.snap = snap
	return nil
}

func monthRecords(am attendance.Map, year int, month time.Month) []attendance.Record {
	days := dateutil.DaysOfMonth(year, month)
	records := make([]attendance.Record, 0, len(days))
	for _, d := range days {
		if r, ok := am[dateutil.DayID(d)]; ok {
			records = append(records, r)
		}
	}
	return records
}
