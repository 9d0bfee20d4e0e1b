package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/username/worktrack/internal/attendance"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const settingsRowID = 1

type dayRow struct {
	Date          string `gorm:"primaryKey;size:10"`
	Type          string `gorm:"size:16;not null"`
	ActiveMinutes int
	IsAutoClocked bool
	IsManual      bool `gorm:"index"`
	Note          string
	UpdatedAt     time.Time
}

func (dayRow) TableName() string { return "attendance_days" }

type settingsRow struct {
	ID         uint   `gorm:"primaryKey"`
	Data       string `gorm:"type:text"`
	LastSynced string
	UpdatedAt  time.Time
}

func (settingsRow) TableName() string { return "user_settings" }

// SQLiteStore keeps one row per day plus a settings row
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteStore opens the database at dsn and migrates the schema
func NewSQLiteStore(dsn string, log *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&dayRow{}, &settingsRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("SQLite store opened", zap.String("dsn", dsn))

	return &SQLiteStore{db: db, logger: log}, nil
}

// Load reads every day and the settings row
func (s *SQLiteStore) Load(ctx context.Context) (*attendance.Snapshot, error) {
	db := s.db.WithContext(ctx)

	var settings settingsRow
	err := db.First(&settings, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var rows []dayRow
	if err := db.Order("date").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	snap := &attendance.Snapshot{
		Attendance: make(attendance.Map, len(rows)),
		LastSynced: settings.LastSynced,
	}
	if err := json.Unmarshal([]byte(settings.Data), &snap.Settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	for _, row := range rows {
		dayType, err := attendance.ParseDayType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", row.Date, err)
		}
		snap.Attendance[row.Date] = attendance.Record{
			Date:          row.Date,
			Type:          dayType,
			ActiveMinutes: row.ActiveMinutes,
			IsAutoClocked: row.IsAutoClocked,
			IsManual:      row.IsManual,
			Note:          row.Note,
		}
	}

	s.logger.Info("Attendance loaded", zap.Int("days", len(rows)))

	return snap, nil
}

// Save replaces the stored snapshot in one transaction
func (s *SQLiteStore) Save(ctx context.Context, snap *attendance.Snapshot) error {
	data, err := json.Marshal(snap.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	rows := make([]dayRow, 0, len(snap.Attendance))
	for id, r := range snap.Attendance {
		rows = append(rows, dayRow{
			Date:          id,
			Type:          r.Type.Code(),
			ActiveMinutes: r.ActiveMinutes,
			IsAutoClocked: r.IsAutoClocked,
			IsManual:      r.IsManual,
			Note:          r.Note,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&dayRow{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		return tx.Save(&settingsRow{ID: settingsRowID, Data: string(data), LastSynced: snap.LastSynced}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("Attendance saved", zap.Int("days", len(rows)))

	return nil
}

// Close closes the underlying connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
