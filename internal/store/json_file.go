package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/username/worktrack/internal/attendance"
	"go.uber.org/zap"
)

// JSONFileStore keeps the snapshot in a single pretty-printed JSON file
type JSONFileStore struct {
	path   string
	logger *zap.Logger
}

// NewJSONFileStore creates a store backed by path; the directory is created on first save
func NewJSONFileStore(path string, logger *zap.Logger) *JSONFileStore {
	return &JSONFileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the snapshot from file
func (s *JSONFileStore) Load(_ context.Context) (*attendance.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	snap, err := attendance.DecodeSnapshot(data, time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	s.logger.Info("Attendance loaded",
		zap.String("file", s.path),
		zap.Int("days", len(snap.Attendance)))

	return snap, nil
}

// Save writes the snapshot to a temp file and renames it over the data file
func (s *JSONFileStore) Save(_ context.Context, snap *attendance.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	s.logger.Debug("Attendance saved",
		zap.String("file", s.path),
		zap.Int("days", len(snap.Attendance)))

	return nil
}

// Close is a no-op
func (s *JSONFileStore) Close() error {
	return nil
}
