//go:build !windows
// +build !windows

package daemon

import (
	"errors"

	"go.uber.org/zap"
)

// ErrTrayUnsupported is returned by NewTrayApp outside Windows
var ErrTrayUnsupported = errors.New("system tray is only supported on Windows")

// TrayApp is a placeholder; Start falls back to the console loop
type TrayApp struct {
	logger *zap.Logger
}

// NewTrayApp always fails on this platform
func NewTrayApp(_ *Daemon, _ *zap.Logger) (*TrayApp, error) {
	return nil, ErrTrayUnsupported
}

func (t *TrayApp) Run() {}

func (t *TrayApp) Stop() {}

// ShowNotification logs the message
func (t *TrayApp) ShowNotification(title, message string) {
	if t != nil && t.logger != nil {
		t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
	}
}
