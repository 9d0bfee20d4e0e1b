package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/worktrack/internal/api"
	"github.com/username/worktrack/internal/daemon"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			handler := api.NewHandler(a.manager, logger)
			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(handler, a.cfg.Server.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening", zap.String("addr", addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
				logger.Info("Shutting down HTTP server")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config server.addr)")
	return cmd
}

func daemonCmd() *cobra.Command {
	var noTray bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Clock in automatically every day and send the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			hour, minute := a.cfg.Daemon.GetDailyTime()
			schedule := daemon.Schedule{
				Hour:     hour,
				Minute:   minute,
				Interval: a.cfg.Daemon.GetCheckInterval(),
				Location: a.cfg.Daemon.GetLocation(),
			}

			d := daemon.NewDaemon(a.manager, initializeNotifier(a.cfg), schedule,
				a.cfg.Daemon.SystemTray && !noTray, logger)
			return d.Start()
		},
	}

	cmd.Flags().BoolVar(&noTray, "no-tray", false, "Run in the console even when system_tray is enabled")
	return cmd
}
