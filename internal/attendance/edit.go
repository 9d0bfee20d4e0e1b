package attendance

import (
	"fmt"

	"github.com/username/worktrack/pkg/dateutil"
)

// SetDay records an explicit user choice. The day becomes manual and is skipped by
// OptimizeMonth from then on.
func SetDay(m Map, id string, dayType DayType, note string) (Map, error) {
	if _, err := dateutil.ParseDayID(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDayID, id)
	}
	if !dayType.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDayType, int(dayType))
	}

	out := m.Clone()
	r := out[id]
	r.Date = id
	r.Type = dayType
	r.Note = note
	r.IsManual = true
	r.IsAutoClocked = false
	out[id] = r
	return out, nil
}

// ResetDay drops the manual flag and restores the default classification of the day
func ResetDay(m Map, id string, holidays HolidayTable) (Map, error) {
	d, err := dateutil.ParseDayID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDayID, id)
	}

	out := m.Clone()
	r := out[id]
	dayType, note := Classify(d, holidays)
	r.Date = id
	r.Type = dayType
	r.Note = note
	r.IsManual = false
	r.IsAutoClocked = false
	out[id] = r
	return out, nil
}

// AutoClock applies a clock-in signal for today. Manual days are left alone; a missing
// record is classified first. Worked and leave days get IsAutoClocked.
func AutoClock(m Map, today string, holidays HolidayTable) (Map, Record, error) {
	d, err := dateutil.ParseDayID(today)
	if err != nil {
		return nil, Record{}, fmt.Errorf("%w: %s", ErrInvalidDayID, today)
	}

	out := m.Clone()
	r, ok := out[today]
	if ok && r.IsManual {
		return out, r, nil
	}
	if !ok {
		dayType, note := Classify(d, holidays)
		r = Record{Date: today, Type: dayType, Note: note}
	}
	if r.Type.IsWorked() {
		r.IsAutoClocked = true
	}
	out[today] = r
	return out, r, nil
}
