package api

import (
	"time"

	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/pkg/dateutil"
)

// DayDTO is one calendar cell
type DayDTO struct {
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	Weight        float64 `json:"weight"`
	IsManual      bool    `json:"isManual"`
	IsAutoClocked bool    `json:"isAutoClocked"`
	Note          string  `json:"note"`
	ActiveMinutes int     `json:"chromeActiveTime"`
}

// MonthResponse is the calendar of one month; GridOffset is the number of blank
// Monday-first cells before day 1.
type MonthResponse struct {
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	GridOffset int      `json:"gridOffset"`
	Days       []DayDTO `json:"days"`
}

// StatsResponse is the month dashboard
type StatsResponse struct {
	Year                int     `json:"year"`
	Month               int     `json:"month"`
	TotalLeave          float64 `json:"totalLeave"`
	UsedLeave           float64 `json:"usedLeave"`
	RemainingLeave      float64 `json:"remainingLeave"`
	TotalCalculatedDays float64 `json:"totalCalculatedDays"`
	CompletedWorkDays   float64 `json:"completedWorkDays"`
	TargetWorkingDays   float64 `json:"targetWorkingDays"`
	MissingDays         float64 `json:"missingDays"`
	ProgressPercent     float64 `json:"progressPercent"`
}

// SetDayRequest is the body of PUT /api/days/{id}; type takes a code ("AL") or a name ("ANNUAL_LEAVE")
type SetDayRequest struct {
	Type string `json:"type"`
	Note string `json:"note"`
}

// HolidayDTO is one entry of the holiday list
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toDayDTO(r attendance.Record, shiftCode string) DayDTO {
	w, _ := r.Type.Weight().Float64()
	return DayDTO{
		Date:          r.Date,
		Type:          r.Type.Code(),
		Name:          r.Type.String(),
		Label:         r.Type.Label(shiftCode),
		Weight:        w,
		IsManual:      r.IsManual,
		IsAutoClocked: r.IsAutoClocked,
		Note:          r.Note,
		ActiveMinutes: r.ActiveMinutes,
	}
}

func toMonthResponse(year int, month time.Month, records []attendance.Record, shiftCode string) MonthResponse {
	days := make([]DayDTO, len(records))
	for i, r := range records {
		days[i] = toDayDTO(r, shiftCode)
	}
	return MonthResponse{
		Year:       year,
		Month:      int(month),
		GridOffset: dateutil.GridOffset(year, month),
		Days:       days,
	}
}

func toStatsResponse(year int, month time.Month, s attendance.Stats) StatsResponse {
	f := func(d interface{ Float64() (float64, bool) }) float64 {
		v, _ := d.Float64()
		return v
	}
	return StatsResponse{
		Year:                year,
		Month:               int(month),
		TotalLeave:          f(s.TotalLeave),
		UsedLeave:           f(s.UsedLeave),
		RemainingLeave:      f(s.RemainingLeave),
		TotalCalculatedDays: f(s.TotalCalculatedDays),
		CompletedWorkDays:   f(s.CompletedWorkDays),
		TargetWorkingDays:   f(s.TargetWorkingDays),
		MissingDays:         f(s.MissingDays),
		ProgressPercent:     f(s.ProgressPercent),
	}
}
