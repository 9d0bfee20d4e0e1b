package calendar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/username/worktrack/internal/attendance"
	"go.uber.org/zap"
)

// FileCalendar implements Source using a local text file.
//
// Format, one holiday per line, either a full date or a month-day repeated every year:
//
//	2026-02-17 Mùng 1 Tết
//	09-02 Quốc khánh
//
// The date and the name are separated by spaces or tabs. Blank lines and lines
// starting with # are ignored.
type FileCalendar struct {
	filePath string
	logger   *zap.Logger

	mu        sync.RWMutex
	loaded    bool
	dated     attendance.HolidayTable // key: YYYY-MM-DD
	recurring map[string]string       // key: MM-DD
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath:  filePath,
		logger:    logger,
		dated:     make(attendance.HolidayTable),
		recurring: make(map[string]string),
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	if err := fc.parse(file); err != nil {
		return err
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("dated", len(fc.dated)),
		zap.Int("recurring", len(fc.recurring)))

	return nil
}

func (fc *FileCalendar) parse(r io.Reader) error {
	dated := make(attendance.HolidayTable)
	recurring := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sep := strings.IndexAny(line, " \t")
		if sep < 0 || strings.TrimSpace(line[sep:]) == "" {
			fc.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}
		key, name := line[:sep], strings.TrimSpace(line[sep:])

		switch len(key) {
		case len("2006-01-02"):
			if _, err := time.Parse("2006-01-02", key); err != nil {
				fc.logger.Warn("Failed to parse date", zap.String("date", key), zap.Error(err))
				continue
			}
			dated[key] = name
		case len("01-02"):
			// 2000 is a leap year, so 02-29 is accepted.
			if _, err := time.Parse("2006-01-02", "2000-"+key); err != nil {
				fc.logger.Warn("Failed to parse date", zap.String("date", key), zap.Error(err))
				continue
			}
			recurring[key] = name
		default:
			fc.logger.Warn("Unknown date format", zap.String("date", key))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.mu.Lock()
	fc.dated = dated
	fc.recurring = recurring
	fc.loaded = true
	fc.mu.Unlock()

	return nil
}

// Holidays returns the holidays of the year; the file is loaded on first use
func (fc *FileCalendar) Holidays(_ context.Context, year int) (attendance.HolidayTable, error) {
	fc.mu.RLock()
	loaded := fc.loaded
	fc.mu.RUnlock()

	if !loaded {
		if err := fc.Load(); err != nil {
			return nil, err
		}
	}

	fc.mu.RLock()
	defer fc.mu.RUnlock()

	table := make(attendance.HolidayTable)
	for monthDay, name := range fc.recurring {
		id := fmt.Sprintf("%04d-%s", year, monthDay)
		// 02-29 only exists in leap years.
		if _, err := time.Parse("2006-01-02", id); err == nil {
			table[id] = name
		}
	}
	prefix := fmt.Sprintf("%04d-", year)
	for id, name := range fc.dated {
		if strings.HasPrefix(id, prefix) {
			table[id] = name
		}
	}
	return table, nil
}
