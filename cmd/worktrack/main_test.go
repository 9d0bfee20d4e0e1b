package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/username/worktrack/internal/attendance"
)

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input     string
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{"", 2025, time.June, false},
		{"2026-02", 2026, time.February, false},
		{"2026-13", 0, 0, true},
		{"June", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			year, month, err := parseMonth(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMonth(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if year != tt.wantYear || month != tt.wantMonth {
				t.Errorf("parseMonth(%q) = %d-%v, want %d-%v", tt.input, year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestRenderMonth(t *testing.T) {
	records := []attendance.Record{
		{Date: "2025-06-01", Type: attendance.DayTypeDayOff},
		{Date: "2025-06-02", Type: attendance.DayTypeWork},
		{Date: "2025-06-07", Type: attendance.DayTypeAnnualLeave, IsManual: true},
	}

	var buf bytes.Buffer
	renderMonth(&buf, 2025, time.June, records, "K2")
	lines := strings.Split(buf.String(), "\n")

	if lines[0] != "June 2025" {
		t.Errorf("title = %q", lines[0])
	}
	// June 1st 2025 is a Sunday: six blank cells, then the day in the last column.
	if !strings.HasSuffix(strings.TrimRight(lines[2], " "), " 1 DO") {
		t.Errorf("first week = %q", lines[2])
	}
	if !strings.HasPrefix(strings.TrimLeft(lines[3], " "), "2 K2") {
		t.Errorf("second week = %q", lines[3])
	}
	if !strings.Contains(lines[3], "7 AL*") {
		t.Errorf("manual leave not marked: %q", lines[3])
	}
	if !strings.Contains(lines[3], "3 -") {
		t.Errorf("missing record not shown as '-': %q", lines[3])
	}
}
