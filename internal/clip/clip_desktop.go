//go:build darwin || windows

package clip

import (
	"context"
	"log/slog"
	"runtime"

	"golang.design/x/clipboard"
)

type desktopBackend struct {
	watchCh chan struct{}
	cancel  context.CancelFunc
}

// New returns the macOS / Windows clipboard backend. Change detection uses
// the library's native watch (NSPasteboard change count on macOS, clipboard
// sequence number on Windows).
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, using in-memory clipboard", "err", err)
		return NewMemory()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &desktopBackend{
		watchCh: make(chan struct{}, 1),
		cancel:  cancel,
	}
	go b.forward(clipboard.Watch(ctx, clipboard.FmtText))
	return b
}

func (b *desktopBackend) Name() string {
	if runtime.GOOS == "darwin" {
		return "macOS NSPasteboard"
	}
	return "Windows Clipboard"
}

func (b *desktopBackend) forward(changes <-chan []byte) {
	for range changes {
		signal(b.watchCh)
	}
}

func (b *desktopBackend) Read() (string, error)   { return readText() }
func (b *desktopBackend) Write(text string) error { return writeText(text) }
func (b *desktopBackend) Watch() <-chan struct{}  { return b.watchCh }
func (b *desktopBackend) Close()                  { b.cancel() }
