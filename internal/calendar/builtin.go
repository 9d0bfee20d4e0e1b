package calendar

import (
	"context"
	"fmt"

	"github.com/username/worktrack/internal/attendance"
)

// fixedHolidays repeat on the same solar date every year (MM-DD)
var fixedHolidays = map[string]string{
	"01-01": "Tết Dương lịch",
	"04-30": "Giải phóng miền Nam",
	"05-01": "Quốc tế Lao động",
	"09-02": "Quốc khánh",
	"09-03": "Nghỉ Quốc khánh",
}

// lunarHolidays are lunar-calendar holidays precomputed to solar dates.
// Extend this table when a new year is published.
var lunarHolidays = attendance.HolidayTable{
	"2024-02-08": "Giao thừa",
	"2024-02-09": "Mùng 1 Tết",
	"2024-02-10": "Mùng 2 Tết",
	"2024-02-11": "Mùng 3 Tết",
	"2024-02-12": "Mùng 4 Tết",
	"2024-04-18": "Giỗ Tổ Hùng Vương",

	"2025-01-28": "Giao thừa",
	"2025-01-29": "Mùng 1 Tết",
	"2025-01-30": "Mùng 2 Tết",
	"2025-01-31": "Mùng 3 Tết",
	"2025-04-07": "Giỗ Tổ Hùng Vương",

	"2026-02-16": "Giao thừa",
	"2026-02-17": "Mùng 1 Tết",
	"2026-02-18": "Mùng 2 Tết",
	"2026-02-19": "Mùng 3 Tết",
	"2026-04-26": "Giỗ Tổ Hùng Vương",

	"2027-02-05": "Giao thừa",
	"2027-02-06": "Mùng 1 Tết",
	"2027-02-07": "Mùng 2 Tết",
	"2027-02-08": "Mùng 3 Tết",
	"2027-04-16": "Giỗ Tổ Hùng Vương",
}

// BuiltinCalendar is the compiled-in Vietnamese public holiday calendar
type BuiltinCalendar struct{}

// NewBuiltinCalendar creates the compiled-in calendar
func NewBuiltinCalendar() *BuiltinCalendar {
	return &BuiltinCalendar{}
}

// Holidays returns the fixed holidays of the year plus the known lunar ones
func (BuiltinCalendar) Holidays(_ context.Context, year int) (attendance.HolidayTable, error) {
	table := make(attendance.HolidayTable)
	for monthDay, name := range fixedHolidays {
		table[fmt.Sprintf("%04d-%s", year, monthDay)] = name
	}
	prefix := fmt.Sprintf("%04d-", year)
	for id, name := range lunarHolidays {
		if id[:5] == prefix {
			table[id] = name
		}
	}
	return table, nil
}
