// Package store persists the attendance snapshot.
package store

import (
	"context"
	"errors"

	"github.com/username/worktrack/internal/attendance"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("snapshot not found")

// Store loads and saves the whole attendance snapshot
type Store interface {
	Load(ctx context.Context) (*attendance.Snapshot, error)
	Save(ctx context.Context, snap *attendance.Snapshot) error
	Close() error
}
