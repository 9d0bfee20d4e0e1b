package attendance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/worktrack/pkg/dateutil"
)

// ErrInvalidDayID is returned for identifiers that are not YYYY-MM-DD dates
var ErrInvalidDayID = errors.New("invalid day id")

const (
	DefaultTargetWorkingDays  = 24
	DefaultInitialAnnualLeave = 12
	DefaultShiftCode          = "X1"
)

// Days is a quantity of days in half-day steps.
// It encodes as a bare JSON number; null or non-numeric input decodes as 0.
type Days struct {
	decimal.Decimal
}

// NewDays returns a Days value from a float
func NewDays(v float64) Days {
	return Days{Decimal: decimal.NewFromFloat(v)}
}

// Float returns the value as float64 (for display and DTOs)
func (d Days) Float() float64 {
	f, _ := d.Decimal.Float64()
	return f
}

// MarshalJSON encodes the value as a bare number
func (d Days) MarshalJSON() ([]byte, error) {
	return []byte(d.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings; anything else becomes 0
func (d *Days) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	v, err := decimal.NewFromString(s)
	if err != nil {
		d.Decimal = decimal.Zero
		return nil
	}
	d.Decimal = v
	return nil
}

// Record is the attendance state of one day
type Record struct {
	Date          string  `json:"date"`
	Type          DayType `json:"type"`
	ActiveMinutes int     `json:"chromeActiveTime"`
	IsAutoClocked bool    `json:"isAutoClocked"`
	IsManual      bool    `json:"isManual"`
	Note          string  `json:"note"`
}

// Settings are the per-user inputs of the optimizer and the dashboard
type Settings struct {
	UserName           string `json:"userName"`
	InitialAnnualLeave Days   `json:"initialAnnualLeave"`
	SeniorityDays      Days   `json:"seniorityDays"`
	TargetWorkingDays  Days   `json:"targetWorkingDays"`
	ShiftCode          string `json:"shiftCode"`
	AutoSuggest        bool   `json:"autoSuggest"`
	Year               int    `json:"lastYearUpdated,omitempty"`
}

// DefaultSettings returns the settings of a fresh install for the given year
func DefaultSettings(year int) Settings {
	return Settings{
		InitialAnnualLeave: NewDays(DefaultInitialAnnualLeave),
		TargetWorkingDays:  NewDays(DefaultTargetWorkingDays),
		ShiftCode:          DefaultShiftCode,
		AutoSuggest:        true,
		Year:               year,
	}
}

// TotalLeave is the yearly leave allowance: initial + seniority
func (s Settings) TotalLeave() decimal.Decimal {
	return s.InitialAnnualLeave.Add(s.SeniorityDays.Decimal)
}

// HolidayTable maps a day id to the holiday's display name
type HolidayTable map[string]string

// Name returns the holiday name for the day id, if any
func (h HolidayTable) Name(id string) (string, bool) {
	name, ok := h[id]
	return name, ok
}

// Merge returns a new table with the entries of both; other wins on conflicts
func (h HolidayTable) Merge(other HolidayTable) HolidayTable {
	merged := make(HolidayTable, len(h)+len(other))
	for id, name := range h {
		merged[id] = name
	}
	for id, name := range other {
		merged[id] = name
	}
	return merged
}

// Map is the attendance map keyed by day id
type Map map[string]Record

// Clone returns a shallow copy; Record is a value type so the copy is independent
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for id, r := range m {
		out[id] = r
	}
	return out
}

// Snapshot is the persisted and exchanged state: {attendance, settings}
type Snapshot struct {
	Attendance Map      `json:"attendance"`
	Settings   Settings `json:"settings"`
	LastSynced string   `json:"lastSynced,omitempty"`
}

// Validate checks imported data: every key is a day id, every record has a known
// type and a date equal to its key. A missing date is filled from the key.
func (s *Snapshot) Validate() error {
	if s.Attendance == nil {
		s.Attendance = make(Map)
	}
	for id, r := range s.Attendance {
		if _, err := dateutil.ParseDayID(id); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDayID, id)
		}
		if !r.Type.Valid() {
			return fmt.Errorf("record %s: %w", id, ErrUnknownDayType)
		}
		if r.Date == "" {
			r.Date = id
			s.Attendance[id] = r
		} else if r.Date != id {
			return fmt.Errorf("record %s: date %q does not match its key", id, r.Date)
		}
	}
	return nil
}

// DecodeSnapshot reads a snapshot; a payload without settings gets DefaultSettings(year)
func DecodeSnapshot(data []byte, year int) (*Snapshot, error) {
	var raw struct {
		Attendance Map             `json:"attendance"`
		Settings   json.RawMessage `json:"settings"`
		LastSynced string          `json:"lastSynced"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	snap := &Snapshot{
		Attendance: raw.Attendance,
		Settings:   DefaultSettings(year),
		LastSynced: raw.LastSynced,
	}
	if len(raw.Settings) > 0 && string(raw.Settings) != "null" {
		snap.Settings = Settings{}
		if err := json.Unmarshal(raw.Settings, &snap.Settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings: %w", err)
		}
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}
