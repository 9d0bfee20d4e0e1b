package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/worktrack/internal/calendar"
	"github.com/username/worktrack/internal/config"
	"github.com/username/worktrack/internal/notify"
	"github.com/username/worktrack/internal/store"
	"github.com/username/worktrack/internal/worktrack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "worktrack",
		Short:         "Monthly attendance tracker",
		Long:          "Track working days, annual leave and holidays; fill Saturdays to reach the monthly target",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger()
				}
			} else {
				initLogger()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: search ., $HOME/.worktrack, /etc/worktrack)")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(clockCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired components of one command run
type app struct {
	cfg     *config.Config
	store   store.Store
	manager *worktrack.Manager
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return initializeApp(cfg)
}

func initializeApp(cfg *config.Config) (*app, error) {
	var st store.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		logger.Info("Using SQLite storage", zap.String("dsn", cfg.Storage.DSN))
		sqliteStore, err := store.NewSQLiteStore(cfg.Storage.DSN, logger)
		if err != nil {
			return nil, err
		}
		st = sqliteStore
	default:
		logger.Info("Using JSON file storage", zap.String("path", cfg.Storage.Path))
		st = store.NewJSONFileStore(cfg.Storage.Path, logger)
	}

	cal, err := initializeCalendar(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	manager := worktrack.NewManager(st, cal, cfg.User.Settings(0), logger,
		worktrack.WithLocation(cfg.Daemon.GetLocation()))

	return &app{cfg: cfg, store: st, manager: manager}, nil
}

func initializeCalendar(cfg *config.Config) (calendar.Source, error) {
	builtin := calendar.NewBuiltinCalendar()

	switch cfg.Calendar.Type {
	case "builtin":
		logger.Info("Using builtin holiday calendar")
		return builtin, nil

	case "file":
		logger.Info("Using holiday file", zap.String("file", cfg.Calendar.File))
		fileCal := calendar.NewFileCalendar(cfg.Calendar.File, logger)
		return calendar.NewCompositeCalendar(fileCal, builtin, logger), nil

	case "remote":
		logger.Info("Using remote holiday calendar", zap.String("url", cfg.Calendar.URL))
		remote := calendar.NewRemoteCalendar(cfg.Calendar.URL, cfg.Calendar.GetCacheTTL(), logger)
		return calendar.NewCompositeCalendar(remote, builtin, logger), nil

	default:
		return nil, fmt.Errorf("unknown calendar type: %s", cfg.Calendar.Type)
	}
}

func initializeNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Notify.TelegramToken == "" {
		return notify.NewLogNotifier(logger)
	}

	tg, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, logger)
	if err != nil {
		logger.Warn("Failed to initialize telegram, summaries go to the log", zap.Error(err))
		return notify.NewLogNotifier(logger)
	}
	return tg
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    20, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
