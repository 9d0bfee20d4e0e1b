package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMonthStats(t *testing.T) {
	m := Map{
		"2025-06-02": {Date: "2025-06-02", Type: DayTypeWork},
		"2025-06-03": {Date: "2025-06-03", Type: DayTypeHalfWork},
		"2025-06-04": {Date: "2025-06-04", Type: DayTypeHalfAnnualLeave},
		"2025-06-05": {Date: "2025-06-05", Type: DayTypePublicHoliday},
		"2025-06-06": {Date: "2025-06-06", Type: DayTypeSpecialHoliday},
		"2025-06-07": {Date: "2025-06-07", Type: DayTypeAnnualLeave},
		"2025-06-08": {Date: "2025-06-08", Type: DayTypeDayOff},
		"2025-06-30": {Date: "2025-06-30", Type: DayTypeWork},
		"2025-07-01": {Date: "2025-07-01", Type: DayTypeWork},
	}

	tests := []struct {
		name          string
		today         string
		wantTotal     string
		wantCompleted string
	}{
		{"before the month", "2025-05-31", "6", "0"},
		{"today is inclusive", "2025-06-03", "6", "1.5"},
		{"mid month", "2025-06-07", "6", "5"},
		{"after the month", "2025-08-01", "6", "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthStats(2025, time.June, m, tt.today)

			if !got.TotalCalculatedDays.Equal(dec(tt.wantTotal)) {
				t.Errorf("TotalCalculatedDays = %s, want %s", got.TotalCalculatedDays, tt.wantTotal)
			}
			if !got.CompletedWorkDays.Equal(dec(tt.wantCompleted)) {
				t.Errorf("CompletedWorkDays = %s, want %s", got.CompletedWorkDays, tt.wantCompleted)
			}
		})
	}
}

func TestMonthStats_EmptyMap(t *testing.T) {
	got := MonthStats(2025, time.June, Map{}, "2025-06-15")

	if !got.TotalCalculatedDays.IsZero() || !got.CompletedWorkDays.IsZero() {
		t.Errorf("MonthStats on empty map = %+v, want zeros", got)
	}
}

func TestYearLeaveUsage(t *testing.T) {
	m := Map{
		"2025-01-02": {Date: "2025-01-02", Type: DayTypeAnnualLeave},
		"2025-03-02": {Date: "2025-03-02", Type: DayTypeHalfAnnualLeave, IsManual: true},
		"2025-12-31": {Date: "2025-12-31", Type: DayTypeAnnualLeave},
		"2025-07-07": {Date: "2025-07-07", Type: DayTypeWork},
		"2024-12-31": {Date: "2024-12-31", Type: DayTypeAnnualLeave},
		"2026-01-01": {Date: "2026-01-01", Type: DayTypeHalfAnnualLeave},
	}

	if got := YearLeaveUsage(2025, m); !got.Equal(dec("2.5")) {
		t.Errorf("YearLeaveUsage(2025) = %s, want 2.5", got)
	}
	if got := YearLeaveUsage(2026, m); !got.Equal(dec("0.5")) {
		t.Errorf("YearLeaveUsage(2026) = %s, want 0.5", got)
	}
	if got := YearLeaveUsage(2023, m); !got.IsZero() {
		t.Errorf("YearLeaveUsage(2023) = %s, want 0", got)
	}
}

func TestLeaveBalance(t *testing.T) {
	tests := []struct {
		name      string
		initial   float64
		seniority float64
		used      string
		want      string
	}{
		{"unused", 12, 0, "0", "12"},
		{"seniority adds", 12, 2, "3.5", "10.5"},
		{"over-use goes negative", 12, 0, "13", "-1"},
		{"zero allowance", 0, 0, "0.5", "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{InitialAnnualLeave: NewDays(tt.initial), SeniorityDays: NewDays(tt.seniority)}

			if got := LeaveBalance(s, dec(tt.used)); !got.Equal(dec(tt.want)) {
				t.Errorf("LeaveBalance = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		target string
		want   string
	}{
		{"half way", "12", "24", "50"},
		{"complete", "24", "24", "100"},
		{"over target is capped", "26", "24", "100"},
		{"zero target", "10", "0", "0"},
		{"negative target", "10", "-1", "0"},
		{"nothing yet", "0", "24", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPercent(dec(tt.total), dec(tt.target)); !got.Equal(dec(tt.want)) {
				t.Errorf("ProgressPercent(%s, %s) = %s, want %s", tt.total, tt.target, got, tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	settings := testSettings(24, 12)
	settings.SeniorityDays = NewDays(1)
	m := OptimizeMonth(2025, time.June, Map{}, settings, HolidayTable{}, "")

	got := ComputeStats(2025, time.June, m, settings, "2025-06-10")

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"TotalLeave", got.TotalLeave, "13"},
		{"UsedLeave", got.UsedLeave, "3"},
		{"RemainingLeave", got.RemainingLeave, "10"},
		{"TotalCalculatedDays", got.TotalCalculatedDays, "24"},
		// Mon 2 - Fri 6, Sat 7 on leave, Mon 9, Tue 10.
		{"CompletedWorkDays", got.CompletedWorkDays, "8"},
		{"TargetWorkingDays", got.TargetWorkingDays, "24"},
		{"MissingDays", got.MissingDays, "0"},
		{"ProgressPercent", got.ProgressPercent, "100"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestComputeStats_MissingDays(t *testing.T) {
	settings := testSettings(24, 0)
	m := SeedYear(2025, HolidayTable{})

	got := ComputeStats(2025, time.June, m, settings, "2025-06-01")

	if !got.MissingDays.Equal(dec("3")) {
		t.Errorf("MissingDays = %s, want 3", got.MissingDays)
	}
	if !got.ProgressPercent.Equal(dec("87.5")) {
		t.Errorf("ProgressPercent = %s, want 87.5", got.ProgressPercent)
	}
}
