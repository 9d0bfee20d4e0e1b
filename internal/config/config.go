package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/username/worktrack/internal/attendance"
)

// Config represents application configuration
type Config struct {
	User     UserConfig     `mapstructure:"user"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Server   ServerConfig   `mapstructure:"server"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// UserConfig holds the settings of a fresh install
type UserConfig struct {
	Name               string  `mapstructure:"name"`
	InitialAnnualLeave float64 `mapstructure:"initial_annual_leave"`
	SeniorityDays      float64 `mapstructure:"seniority_days"`
	TargetWorkingDays  float64 `mapstructure:"target_working_days"`
	ShiftCode          string  `mapstructure:"shift_code"`
	AutoSuggest        bool    `mapstructure:"auto_suggest"`
}

// StorageConfig selects where the attendance snapshot lives
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "json" or "sqlite"
	Path   string `mapstructure:"path"`   // JSON file
	DSN    string `mapstructure:"dsn"`    // SQLite database
}

// CalendarConfig represents holiday calendar configuration
type CalendarConfig struct {
	Type     string `mapstructure:"type"` // "builtin", "file" or "remote"
	File     string `mapstructure:"file"`
	URL      string `mapstructure:"url"` // must contain {year}
	CacheTTL string `mapstructure:"cache_ttl"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	DailyTime     string `mapstructure:"daily_time"`     // HH:MM in Timezone
	Timezone      string `mapstructure:"timezone"`       // IANA name, empty for local
	CheckInterval string `mapstructure:"check_interval"` // when set, replaces DailyTime
	LogFile       string `mapstructure:"log_file"`
	LogLevel      string `mapstructure:"log_level"`
	SystemTray    bool   `mapstructure:"system_tray"` // Windows only
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NotifyConfig represents notification configuration
type NotifyConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user.initial_annual_leave", attendance.DefaultInitialAnnualLeave)
	v.SetDefault("user.target_working_days", attendance.DefaultTargetWorkingDays)
	v.SetDefault("user.shift_code", attendance.DefaultShiftCode)
	v.SetDefault("user.auto_suggest", true)
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.path", "worktrack.json")
	v.SetDefault("storage.dsn", "worktrack.db")
	v.SetDefault("calendar.type", "builtin")
	v.SetDefault("daemon.daily_time", "09:00")
	v.SetDefault("daemon.log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
}

// Load loads configuration from file. A .env file in the working directory is read
// first; without an explicit path a missing config file means defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.worktrack")
		v.AddConfigPath("/etc/worktrack")
	}

	v.SetEnvPrefix("WORKTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.User.InitialAnnualLeave < 0 || c.User.SeniorityDays < 0 {
		return fmt.Errorf("user leave days must not be negative")
	}
	if c.User.TargetWorkingDays < 0 || c.User.TargetWorkingDays > 31 {
		return fmt.Errorf("user.target_working_days must be between 0 and 31")
	}

	switch c.Storage.Driver {
	case "json":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for json driver")
		}
	case "sqlite":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be 'json' or 'sqlite', got '%s'", c.Storage.Driver)
	}

	switch c.Calendar.Type {
	case "builtin":
	case "file":
		if c.Calendar.File == "" {
			return fmt.Errorf("calendar.file is required for file type")
		}
	case "remote":
		if !strings.Contains(c.Calendar.URL, "{year}") {
			return fmt.Errorf("calendar.url must contain {year}")
		}
	default:
		return fmt.Errorf("calendar.type must be 'builtin', 'file' or 'remote', got '%s'", c.Calendar.Type)
	}

	if c.Daemon.DailyTime != "" {
		if _, _, err := parseClock(c.Daemon.DailyTime); err != nil {
			return fmt.Errorf("daemon.daily_time: %w", err)
		}
	}
	if c.Daemon.Timezone != "" {
		if _, err := time.LoadLocation(c.Daemon.Timezone); err != nil {
			return fmt.Errorf("daemon.timezone: %w", err)
		}
	}
	if c.Daemon.CheckInterval != "" {
		if d, err := time.ParseDuration(c.Daemon.CheckInterval); err != nil || d < time.Minute {
			return fmt.Errorf("daemon.check_interval must be a duration of at least 1m")
		}
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == 0 {
		return fmt.Errorf("notify.telegram_chat_id is required with a telegram token")
	}

	return nil
}

// Settings converts the user section to attendance settings for year
func (u UserConfig) Settings(year int) attendance.Settings {
	return attendance.Settings{
		UserName:           u.Name,
		InitialAnnualLeave: attendance.NewDays(u.InitialAnnualLeave),
		SeniorityDays:      attendance.NewDays(u.SeniorityDays),
		TargetWorkingDays:  attendance.NewDays(u.TargetWorkingDays),
		ShiftCode:          u.ShiftCode,
		AutoSuggest:        u.AutoSuggest,
		Year:               year,
	}
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetCheckInterval returns the interval of interval mode, 0 for daily mode
func (c *DaemonConfig) GetCheckInterval() time.Duration {
	if c.CheckInterval == "" {
		return 0
	}
	duration, err := time.ParseDuration(c.CheckInterval)
	if err != nil {
		return 0
	}
	return duration
}

// GetDailyTime returns the configured daily clock-in time.
// Returns hour and minute (0-23, 0-59). Default: 09:00
func (c *DaemonConfig) GetDailyTime() (hour, minute int) {
	h, m, err := parseClock(c.DailyTime)
	if err != nil {
		return 9, 0
	}
	return h, m
}

// GetLocation returns the daemon time zone, time.Local when unset or unknown
func (c *DaemonConfig) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Notify.TelegramToken = os.ExpandEnv(c.Notify.TelegramToken)
	c.Calendar.URL = os.ExpandEnv(c.Calendar.URL)
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
}

func parseClock(s string) (hour, minute int, err error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return h, m, nil
}
