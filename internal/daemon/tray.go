//go:build windows
// +build windows

package daemon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(calendarIcon())
	systray.SetTitle("WT")
	systray.SetTooltip("Worktrack attendance")

	mClock := systray.AddMenuItem("Clock in now", "Record today's attendance immediately")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show today's attendance")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	go t.daemon.run()

	go func() {
		for {
			select {
			case <-mClock.ClickedCh:
				t.logger.Info("Clock in clicked from tray")
				go t.daemon.SyncNow()
			case <-mStatus.ClickedCh:
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// ShowNotification updates the tooltip and logs; fyne.io/systray has no balloon support
func (t *TrayApp) ShowNotification(title, message string) {
	systray.SetTooltip(title)
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
}

func (t *TrayApp) showStatus() {
	status := t.daemon.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	message := fmt.Sprintf("Not clocked in yet\nNext run: %v", status["next_run"])
	if today, ok := status["today"].(map[string]interface{}); ok {
		message = fmt.Sprintf("Date: %v\nType: %v\nAuto-clocked: %v\nManual: %v\nNext run: %v",
			today["date"], today["type"], today["auto_clocked"], today["manual"], status["next_run"])
	}

	showMessageBox("Worktrack Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}

// calendarIcon builds a 16x16 32-bit ICO: a blue square with a red header bar
func calendarIcon() []byte {
	const size = 16
	var buf bytes.Buffer
	le := binary.LittleEndian

	pixels := size * size * 4
	mask := size * 4 // 1bpp rows padded to 32 bits
	imageSize := 40 + pixels + mask

	// ICONDIR + ICONDIRENTRY
	binary.Write(&buf, le, []uint16{0, 1, 1})
	buf.Write([]byte{size, size, 0, 0})
	binary.Write(&buf, le, []uint16{1, 32})
	binary.Write(&buf, le, []uint32{uint32(imageSize), 6 + 16})

	// BITMAPINFOHEADER, height doubled for the AND mask
	binary.Write(&buf, le, []uint32{40, size, size * 2})
	binary.Write(&buf, le, []uint16{1, 32})
	binary.Write(&buf, le, []uint32{0, uint32(pixels), 0, 0, 0, 0})

	// BGRA rows, bottom-up
	for y := size - 1; y >= 0; y-- {
		for x := 0; x < size; x++ {
			switch {
			case x == 0 || x == size-1 || y == size-1:
				buf.Write([]byte{0x40, 0x40, 0x40, 0xff})
			case y < 4:
				buf.Write([]byte{0x30, 0x30, 0xd0, 0xff})
			default:
				buf.Write([]byte{0xf0, 0xc0, 0x60, 0xff})
			}
		}
	}
	buf.Write(make([]byte, mask))

	return buf.Bytes()
}
