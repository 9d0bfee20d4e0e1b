package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/internal/store"
	"github.com/username/worktrack/internal/worktrack"
	"go.uber.org/zap"
)

type fixedCalendar attendance.HolidayTable

func (c fixedCalendar) Holidays(context.Context, int) (attendance.HolidayTable, error) {
	return attendance.HolidayTable(c), nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	st := store.NewJSONFileStore(filepath.Join(t.TempDir(), "attendance.json"), logger)
	cal := fixedCalendar{"2025-09-02": "Quốc khánh", "2025-01-01": "Tết Dương lịch"}
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	mgr := worktrack.NewManager(st, cal, attendance.DefaultSettings(0), logger,
		worktrack.WithClock(func() time.Time { return now }),
		worktrack.WithLocation(time.UTC))

	server := httptest.NewServer(NewRouter(NewHandler(mgr, logger), []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodGet, server.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetMonth(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodGet, server.URL+"/api/months/2025/6", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	month := decode[MonthResponse](t, resp)
	assert.Equal(t, 6, month.GridOffset)
	require.Len(t, month.Days, 30)
	assert.Equal(t, "X1", month.Days[1].Type)
	assert.Equal(t, "DO", month.Days[6].Type)
	assert.Equal(t, 1.0, month.Days[1].Weight)
}

func TestGetMonth_BadPath(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/api/months/2025/13", "/api/months/2025/0", "/api/months/abc/6"} {
		resp := do(t, http.MethodGet, server.URL+path, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestOptimizeAndStats(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodPost, server.URL+"/api/months/2025/6/optimize", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	month := decode[MonthResponse](t, resp)
	assert.Equal(t, "AL", month.Days[6].Type)
	assert.Equal(t, "AL", month.Days[20].Type)
	assert.Equal(t, "DO", month.Days[27].Type)

	resp = do(t, http.MethodGet, server.URL+"/api/months/2025/6/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[StatsResponse](t, resp)
	assert.Equal(t, 24.0, stats.TotalCalculatedDays)
	assert.Equal(t, 3.0, stats.UsedLeave)
	assert.Equal(t, 9.0, stats.RemainingLeave)
	assert.Equal(t, 100.0, stats.ProgressPercent)
}

func TestSetAndResetDay(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodPut, server.URL+"/api/days/2025-06-07", `{"type":"1/2 AL","note":"dentist"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	day := decode[DayDTO](t, resp)
	assert.Equal(t, "1/2 AL", day.Type)
	assert.True(t, day.IsManual)
	assert.Equal(t, "dentist", day.Note)

	resp = do(t, http.MethodDelete, server.URL+"/api/days/2025-06-07/manual", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	day = decode[DayDTO](t, resp)
	assert.False(t, day.IsManual)
	assert.Equal(t, "AL", day.Type)
}

func TestSetDay_Validation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"unknown type", "/api/days/2025-06-07", `{"type":"VACATION"}`},
		{"bad id", "/api/days/2025-02-30", `{"type":"AL"}`},
		{"bad json", "/api/days/2025-06-07", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPut, server.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decode[ErrorResponse](t, resp)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestClock(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodPost, server.URL+"/api/clock", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	day := decode[DayDTO](t, resp)
	assert.Equal(t, "2025-06-10", day.Date)
	assert.True(t, day.IsAutoClocked)
}

func TestSettings(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodPut, server.URL+"/api/settings",
		`{"userName":"Lan","initialAnnualLeave":12,"seniorityDays":1,"targetWorkingDays":22,"shiftCode":"K2","autoSuggest":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, server.URL+"/api/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decode[attendance.Settings](t, resp)
	assert.Equal(t, "Lan", s.UserName)
	assert.Equal(t, "22", s.TargetWorkingDays.String())

	resp = do(t, http.MethodGet, server.URL+"/api/months/2025/6", "")
	month := decode[MonthResponse](t, resp)
	assert.Equal(t, "K2", month.Days[1].Label)

	resp = do(t, http.MethodPut, server.URL+"/api/settings", `{"targetWorkingDays":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportImport(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodPost, server.URL+"/api/data", `{"attendance":{"2025-06-02":{"date":"2025-06-02","type":"AL"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, server.URL+"/api/data", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[attendance.Snapshot](t, resp)
	assert.Equal(t, attendance.DayTypeAnnualLeave, snap.Attendance["2025-06-02"].Type)
	assert.Equal(t, "24", snap.Settings.TargetWorkingDays.String())

	resp = do(t, http.MethodPost, server.URL+"/api/data", `{"attendance":{"2025-06-02":{"type":"??"}}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetHolidays(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodGet, server.URL+"/api/holidays/2025", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := decode[[]HolidayDTO](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-01-01", list[0].Date)
	assert.Equal(t, "Quốc khánh", list[1].Name)
}
