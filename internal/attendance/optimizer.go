package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/worktrack/pkg/dateutil"
)

// Classify returns the default type and note of a day from the weekday and the holiday table.
// Saturdays default to DAY_OFF; OptimizeMonth may later upgrade them.
func Classify(date time.Time, holidays HolidayTable) (DayType, string) {
	if name, ok := holidays.Name(dateutil.DayID(date)); ok {
		return DayTypePublicHoliday, name
	}
	if dateutil.IsWeekday(date) {
		return DayTypeWork, ""
	}
	return DayTypeDayOff, ""
}

// SeedYear builds the default attendance of a whole year. Nothing is manual or auto-clocked.
func SeedYear(year int, holidays HolidayTable) Map {
	seed := make(Map, 366)
	for _, d := range dateutil.DaysOfYear(year) {
		id := dateutil.DayID(d)
		dayType, note := Classify(d, holidays)
		seed[id] = Record{Date: id, Type: dayType, Note: note}
	}
	return seed
}

// LeaveUsedOutsideMonth sums the leave weight of every record in year except those in month
func LeaveUsedOutsideMonth(m Map, year int, month time.Month) decimal.Decimal {
	used := decimal.Zero
	for id, r := range m {
		d, err := dateutil.ParseDayID(id)
		if err != nil || d.Year() != year || d.Month() == month {
			continue
		}
		used = used.Add(r.Type.LeaveWeight())
	}
	return used
}

// RemainingLeave is the leave budget the optimizer may still spend in month.
// Unlike LeaveBalance it never goes below zero.
func RemainingLeave(m Map, settings Settings, year int, month time.Month) decimal.Decimal {
	remaining := settings.TotalLeave().Sub(LeaveUsedOutsideMonth(m, year, month))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// OptimizeMonth reclassifies every non-manual day of the month and spends Saturdays on
// annual leave, then on extra work, until the monthly target is met. Leave is always
// drafted before extra work. The input map is not modified; the result is a new map.
func OptimizeMonth(year int, month time.Month, current Map, settings Settings, holidays HolidayTable, today string) Map {
	out := current.Clone()
	days := dateutil.DaysOfMonth(year, month)
	target := settings.TargetWorkingDays.Decimal
	remaining := RemainingLeave(current, settings, year, month)

	for _, d := range days {
		id := dateutil.DayID(d)
		r, ok := out[id]
		if ok && r.IsManual {
			continue
		}

		r.Date = id
		r.IsAutoClocked = false

		dayType, note := Classify(d, holidays)
		r.Type = dayType
		if dayType == DayTypePublicHoliday {
			r.Note = note
		} else if dayType == DayTypeWork && id == today {
			r.IsAutoClocked = true
		}
		out[id] = r
	}

	total := monthTotal(out, days)

	var saturdays []string
	for _, d := range days {
		if d.Weekday() != time.Saturday {
			continue
		}
		id := dateutil.DayID(d)
		if _, holiday := holidays.Name(id); holiday || out[id].IsManual {
			continue
		}
		saturdays = append(saturdays, id)
	}

	for _, id := range saturdays {
		if total.GreaterThanOrEqual(target) || remaining.LessThan(one) {
			break
		}
		r := out[id]
		r.Type = DayTypeAnnualLeave
		r.IsAutoClocked = id == today
		out[id] = r
		total = total.Add(one)
		remaining = remaining.Sub(one)
	}

	for _, id := range saturdays {
		if total.GreaterThanOrEqual(target) {
			break
		}
		r := out[id]
		if r.Type != DayTypeDayOff {
			continue
		}
		r.Type = DayTypeWork
		r.IsAutoClocked = id == today
		out[id] = r
		total = total.Add(one)
	}

	return out
}

func monthTotal(m Map, days []time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		if r, ok := m[dateutil.DayID(d)]; ok {
			total = total.Add(r.Type.Weight())
		}
	}
	return total
}
