package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// RemoteCalendar implements Source by fetching a JSON holiday list per year.
// The URL template must contain {year}. Expected response:
//
//	{"year": 2026, "holidays": [{"date": "2026-02-17", "name": "Mùng 1 Tết"}]}
type RemoteCalendar struct {
	urlTemplate string
	httpClient  *http.Client
	logger      *zap.Logger
	cache       map[int]*cachedYear
	cacheMu     sync.RWMutex
	cacheTTL    time.Duration
}

type cachedYear struct {
	table     attendance.HolidayTable
	fetchedAt time.Time
}

type remoteYear struct {
	Year     int `json:"year"`
	Holidays []struct {
		Date string `json:"date"`
		Name string `json:"name"`
	} `json:"holidays"`
}

// NewRemoteCalendar creates a new RemoteCalendar instance
func NewRemoteCalendar(urlTemplate string, cacheTTL time.Duration, logger *zap.Logger) *RemoteCalendar {
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &RemoteCalendar{
		urlTemplate: urlTemplate,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:   logger,
		cache:    make(map[int]*cachedYear),
		cacheTTL: cacheTTL,
	}
}

// Holidays returns the holidays of the year, served from cache while fresh
func (c *RemoteCalendar) Holidays(ctx context.Context, year int) (attendance.HolidayTable, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[year]; ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		c.cacheMu.RUnlock()
		c.logger.Debug("Using cached holidays", zap.Int("year", year))
		return cached.table, nil
	}
	c.cacheMu.RUnlock()

	table, err := c.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache[year] = &cachedYear{table: table, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	return table, nil
}

// ClearCache drops every cached year
func (c *RemoteCalendar) ClearCache() {
	c.cacheMu.Lock()
	c.cache = make(map[int]*cachedYear)
	c.cacheMu.Unlock()
}

func (c *RemoteCalendar) fetchYear(ctx context.Context, year int) (attendance.HolidayTable, error) {
	url := strings.ReplaceAll(c.urlTemplate, "{year}", strconv.Itoa(year))

	c.logger.Debug("Fetching holidays", zap.String("url", url), zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	table, err := parseRemoteYear(year, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holidays: %w", err)
	}

	c.logger.Info("Holidays fetched from API",
		zap.Int("year", year),
		zap.Int("count", len(table)))

	return table, nil
}

func parseRemoteYear(year int, body []byte) (attendance.HolidayTable, error) {
	var data remoteYear
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	if data.Year != 0 && data.Year != year {
		return nil, fmt.Errorf("response is for year %d, want %d", data.Year, year)
	}

	table := make(attendance.HolidayTable, len(data.Holidays))
	for _, h := range data.Holidays {
		d, err := dateutil.ParseDayID(h.Date)
		if err != nil {
			return nil, err
		}
		if d.Year() != year {
			continue
		}
		table[h.Date] = h.Name
	}
	return table, nil
}
