package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/internal/worktrack"
	"go.uber.org/zap"
)

const maxImportBytes = 4 << 20

// Service is the state owner the handlers delegate to
type Service interface {
	Snapshot(ctx context.Context) (*attendance.Snapshot, error)
	Import(ctx context.Context, data []byte) (*attendance.Snapshot, error)
	Month(ctx context.Context, year int, month time.Month) ([]attendance.Record, error)
	Optimize(ctx context.Context, year int, month time.Month) ([]attendance.Record, error)
	Stats(ctx context.Context, year int, month time.Month) (attendance.Stats, error)
	SetDay(ctx context.Context, id string, dayType attendance.DayType, note string) (attendance.Record, error)
	ResetDay(ctx context.Context, id string) (attendance.Record, error)
	AutoClock(ctx context.Context) (attendance.Record, error)
	Settings(ctx context.Context) (attendance.Settings, error)
	UpdateSettings(ctx context.Context, s attendance.Settings) (attendance.Settings, error)
	Holidays(ctx context.Context, year int) (attendance.HolidayTable, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	svc    Service
	logger *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Export returns the whole snapshot
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.fail(w, "Failed to load data", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Import replaces the snapshot with the request body
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	snap, err := h.svc.Import(r.Context(), data)
	if err != nil {
		h.fail(w, "Failed to import data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"days": len(snap.Attendance)})
}

// GetMonth returns the calendar of a month
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	records, err := h.svc.Month(r.Context(), year, month)
	if err != nil {
		h.fail(w, "Failed to load month", err)
		return
	}
	h.writeMonth(w, r, year, month, records)
}

// OptimizeMonth runs the optimizer over a month
func (h *Handler) OptimizeMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	records, err := h.svc.Optimize(r.Context(), year, month)
	if err != nil {
		h.fail(w, "Failed to optimize month", err)
		return
	}
	h.writeMonth(w, r, year, month, records)
}

// GetStats returns the dashboard of a month
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(r.Context(), year, month)
	if err != nil {
		h.fail(w, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(year, month, stats))
}

// SetDay stores a manual day type
func (h *Handler) SetDay(w http.ResponseWriter, r *http.Request) {
	var req SetDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	dayType, err := attendance.ParseDayType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day type", err)
		return
	}

	rec, err := h.svc.SetDay(r.Context(), chi.URLParam(r, "id"), dayType, req.Note)
	if err != nil {
		h.fail(w, "Failed to set day", err)
		return
	}
	h.writeDay(w, r, rec)
}

// ResetDay clears the manual flag of a day
func (h *Handler) ResetDay(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.ResetDay(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to reset day", err)
		return
	}
	h.writeDay(w, r, rec)
}

// Clock applies the clock-in signal for today
func (h *Handler) Clock(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.AutoClock(r.Context())
	if err != nil {
		h.fail(w, "Failed to clock in", err)
		return
	}
	h.writeDay(w, r, rec)
}

// GetSettings returns the settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		h.fail(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings replaces the settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s attendance.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if s.TargetWorkingDays.IsNegative() || s.InitialAnnualLeave.IsNegative() || s.SeniorityDays.IsNegative() {
		writeError(w, http.StatusBadRequest, "Settings must not be negative", nil)
		return
	}

	updated, err := h.svc.UpdateSettings(r.Context(), s)
	if err != nil {
		h.fail(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GetHolidays lists the holidays of a year in date order
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	table, err := h.svc.Holidays(r.Context(), year)
	if err != nil {
		h.fail(w, "Failed to load holidays", err)
		return
	}

	list := make([]HolidayDTO, 0, len(table))
	for date, name := range table {
		list = append(list, HolidayDTO{Date: date, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeMonth(w http.ResponseWriter, r *http.Request, year int, month time.Month, records []attendance.Record) {
	writeJSON(w, http.StatusOK, toMonthResponse(year, month, records, h.shiftCode(r)))
}

func (h *Handler) writeDay(w http.ResponseWriter, r *http.Request, rec attendance.Record) {
	writeJSON(w, http.StatusOK, toDayDTO(rec, h.shiftCode(r)))
}

func (h *Handler) shiftCode(r *http.Request) string {
	s, err := h.svc.Settings(r.Context())
	if err != nil || s.ShiftCode == "" {
		return attendance.DefaultShiftCode
	}
	return s.ShiftCode
}

// fail maps validation errors to 400 and everything else to 500
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidDayID),
		errors.Is(err, attendance.ErrUnknownDayType),
		errors.Is(err, worktrack.ErrInvalidSnapshot):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
