// Package tray puts clipfmt in the system tray: the app name, a pause
// toggle and an exit entry.
package tray

import (
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"go.klb.dev/clipfmt/internal/lifecycle"
)

// Controller is the part of lifecycle.Controller the tray drives.
type Controller interface {
	State() lifecycle.State
	Toggle() lifecycle.State
	Stop()
}

// Manager owns the tray icon.
type Manager struct {
	appName  string
	iconData []byte
	ctl      Controller

	mu     sync.Mutex
	pause  *systray.MenuItem
	ready  bool
	quitCh chan struct{}
	once   sync.Once
}

// New returns a tray manager for ctl. iconData may be empty.
func New(appName string, iconData []byte, ctl Controller) *Manager {
	return &Manager{
		appName:  appName,
		iconData: iconData,
		ctl:      ctl,
		quitCh:   make(chan struct{}),
	}
}

// Run shows the tray icon and blocks until Quit or the Exit entry. It must
// be called from the main goroutine.
func (m *Manager) Run() {
	if m.quitting() {
		return
	}
	systray.Run(m.onReady, m.onExit)
}

// Quit removes the tray icon and makes Run return. Safe to call repeatedly
// and before Run has finished starting.
func (m *Manager) Quit() {
	m.once.Do(func() { close(m.quitCh) })
	m.mu.Lock()
	ready := m.ready
	m.mu.Unlock()
	if ready {
		systray.Quit()
	}
}

func (m *Manager) quitting() bool {
	select {
	case <-m.quitCh:
		return true
	default:
		return false
	}
}

// OnState keeps the pause entry in sync with the controller; pass it to
// lifecycle.Controller.Subscribe.
func (m *Manager) OnState(s lifecycle.State) {
	m.mu.Lock()
	item := m.pause
	m.mu.Unlock()
	switch s {
	case lifecycle.Stopped:
		m.Quit()
	default:
		if item != nil {
			item.SetTitle(pauseLabel(s))
		}
	}
}

func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}
	systray.SetTitle(m.appName)
	systray.SetTooltip(m.appName)

	title := systray.AddMenuItem(m.appName, m.appName)
	title.Disable()
	systray.AddSeparator()
	pause := systray.AddMenuItem(pauseLabel(m.ctl.State()), "Stop or restart watching the clipboard")
	exit := systray.AddMenuItem("Exit", "Quit "+m.appName)

	m.mu.Lock()
	m.pause = pause
	m.ready = true
	m.mu.Unlock()

	// Quit may have run while the tray was starting.
	if m.quitting() {
		systray.Quit()
		return
	}

	go func() {
		for {
			select {
			case <-pause.ClickedCh:
				s := m.ctl.Toggle()
				pause.SetTitle(pauseLabel(s))
			case <-exit.ClickedCh:
				slog.Info("exit requested from system tray")
				m.ctl.Stop()
				m.Quit()
				return
			case <-m.quitCh:
				return
			}
		}
	}()
}

func (m *Manager) onExit() {
	slog.Debug("system tray exited")
}

func pauseLabel(s lifecycle.State) string {
	if s == lifecycle.Paused {
		return "Resume"
	}
	return "Pause"
}
