package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/worktrack/pkg/dateutil"
)

var hundred = decimal.NewFromInt(100)

// MonthTotals are the countable days of one month
type MonthTotals struct {
	TotalCalculatedDays decimal.Decimal
	CompletedWorkDays   decimal.Decimal
}

// Stats is the dashboard of one month
type Stats struct {
	TotalLeave          decimal.Decimal
	UsedLeave           decimal.Decimal
	RemainingLeave      decimal.Decimal
	TotalCalculatedDays decimal.Decimal
	CompletedWorkDays   decimal.Decimal
	TargetWorkingDays   decimal.Decimal
	MissingDays         decimal.Decimal
	ProgressPercent     decimal.Decimal
}

// MonthStats sums countable weights over the recorded days of the month.
// CompletedWorkDays only counts days up to and including today.
func MonthStats(year int, month time.Month, m Map, today string) MonthTotals {
	totals := MonthTotals{TotalCalculatedDays: decimal.Zero, CompletedWorkDays: decimal.Zero}
	for _, d := range dateutil.DaysOfMonth(year, month) {
		id := dateutil.DayID(d)
		r, ok := m[id]
		if !ok {
			continue
		}
		w := r.Type.Weight()
		totals.TotalCalculatedDays = totals.TotalCalculatedDays.Add(w)
		if id <= today {
			totals.CompletedWorkDays = totals.CompletedWorkDays.Add(w)
		}
	}
	return totals
}

// YearLeaveUsage sums leave weights of every record dated in year, manual or not
func YearLeaveUsage(year int, m Map) decimal.Decimal {
	used := decimal.Zero
	for id, r := range m {
		d, err := dateutil.ParseDayID(id)
		if err != nil || d.Year() != year {
			continue
		}
		used = used.Add(r.Type.LeaveWeight())
	}
	return used
}

// LeaveBalance is initial + seniority - used. It is not clamped: a negative balance
// shows over-use on the dashboard.
func LeaveBalance(settings Settings, used decimal.Decimal) decimal.Decimal {
	return settings.TotalLeave().Sub(used)
}

// ProgressPercent is min(100, 100*total/target); a non-positive target yields 0
func ProgressPercent(total, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(hundred, total.Mul(hundred).Div(target))
}

// ComputeStats composes the aggregator functions for the dashboard of one month
func ComputeStats(year int, month time.Month, m Map, settings Settings, today string) Stats {
	totals := MonthStats(year, month, m, today)
	used := YearLeaveUsage(year, m)
	target := settings.TargetWorkingDays.Decimal

	missing := target.Sub(totals.TotalCalculatedDays)
	if missing.IsNegative() {
		missing = decimal.Zero
	}

	return Stats{
		TotalLeave:          settings.TotalLeave(),
		UsedLeave:           used,
		RemainingLeave:      LeaveBalance(settings, used),
		TotalCalculatedDays: totals.TotalCalculatedDays,
		CompletedWorkDays:   totals.CompletedWorkDays,
		TargetWorkingDays:   target,
		MissingDays:         missing,
		ProgressPercent:     ProgressPercent(totals.TotalCalculatedDays, target),
	}
}
