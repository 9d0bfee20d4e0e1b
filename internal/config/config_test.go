package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")
	path := writeConfig(t, `
user:
  name: Lan
  seniority_days: 1.5
  target_working_days: 22
storage:
  driver: sqlite
  dsn: /tmp/worktrack.db
calendar:
  type: remote
  url: https://example.com/holidays/{year}.json
  cache_ttl: 1h
daemon:
  daily_time: "08:30"
  timezone: Asia/Ho_Chi_Minh
notify:
  telegram_token: ${TEST_BOT_TOKEN}
  telegram_chat_id: 42
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.User.Name != "Lan" || cfg.User.InitialAnnualLeave != 12 || cfg.User.TargetWorkingDays != 22 {
		t.Errorf("User = %+v", cfg.User)
	}
	if !cfg.User.AutoSuggest || cfg.User.ShiftCode != "X1" {
		t.Errorf("User defaults not applied: %+v", cfg.User)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "/tmp/worktrack.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Calendar.GetCacheTTL() != time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 1h", cfg.Calendar.GetCacheTTL())
	}
	if h, m := cfg.Daemon.GetDailyTime(); h != 8 || m != 30 {
		t.Errorf("GetDailyTime() = %d:%d, want 8:30", h, m)
	}
	if cfg.Daemon.GetLocation().String() != "Asia/Ho_Chi_Minh" {
		t.Errorf("GetLocation() = %v", cfg.Daemon.GetLocation())
	}
	if cfg.Notify.TelegramToken != "123:abc" {
		t.Errorf("TelegramToken = %q, want expanded env var", cfg.Notify.TelegramToken)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}

	s := cfg.User.Settings(2025)
	if s.SeniorityDays.String() != "1.5" || s.TotalLeave().String() != "13.5" || s.Year != 2025 {
		t.Errorf("Settings() = %+v", s)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WORKTRACK_STORAGE_DRIVER", "sqlite")
	path := writeConfig(t, "user:\n  name: Lan\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite from env", cfg.Storage.Driver)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown storage driver", "storage:\n  driver: mongo\n"},
		{"file calendar without file", "calendar:\n  type: file\n"},
		{"remote url without year", "calendar:\n  type: remote\n  url: https://example.com/holidays.json\n"},
		{"bad daily time", "daemon:\n  daily_time: \"25:00\"\n"},
		{"bad timezone", "daemon:\n  timezone: Mars/Olympus\n"},
		{"tiny interval", "daemon:\n  check_interval: 10s\n"},
		{"token without chat", "notify:\n  telegram_token: abc\n"},
		{"negative leave", "user:\n  initial_annual_leave: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file, got nil")
	}
}

func TestDaemonGetters(t *testing.T) {
	tests := []struct {
		name         string
		cfg          DaemonConfig
		wantHour     int
		wantMinute   int
		wantInterval time.Duration
	}{
		{"defaults", DaemonConfig{}, 9, 0, 0},
		{"daily time", DaemonConfig{DailyTime: "18:05"}, 18, 5, 0},
		{"invalid daily time", DaemonConfig{DailyTime: "noon"}, 9, 0, 0},
		{"interval", DaemonConfig{CheckInterval: "1h"}, 9, 0, time.Hour},
		{"invalid interval", DaemonConfig{CheckInterval: "hourly"}, 9, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := tt.cfg.GetDailyTime()
			if h != tt.wantHour || m != tt.wantMinute {
				t.Errorf("GetDailyTime() = %d:%d, want %d:%d", h, m, tt.wantHour, tt.wantMinute)
			}
			if got := tt.cfg.GetCheckInterval(); got != tt.wantInterval {
				t.Errorf("GetCheckInterval() = %v, want %v", got, tt.wantInterval)
			}
			if tt.cfg.GetLocation() != time.Local {
				t.Errorf("GetLocation() = %v, want Local", tt.cfg.GetLocation())
			}
		})
	}
}
