//go:build linux

package clip

import (
	"log/slog"
	"time"

	"golang.design/x/clipboard"
)

const linuxPollInterval = 250 * time.Millisecond

type linuxBackend struct {
	watchCh  chan struct{}
	done     chan struct{}
	lastText string
}

// New returns the Linux clipboard backend, or an in-memory clipboard if the
// display environment is unavailable (e.g. a headless host without X11).
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never construct a Backend don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, using in-memory clipboard", "err", err)
		return NewMemory()
	}
	b := &linuxBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	b.lastText, _ = readText()
	go b.poll()
	return b
}

func (b *linuxBackend) Name() string { return "Linux clipboard (poll)" }

// poll turns X11 selection changes into watch signals. Failed reads are
// skipped so a locked clipboard does not look like a change.
func (b *linuxBackend) poll() {
	t := time.NewTicker(linuxPollInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			text, err := readText()
			if err != nil || text == b.lastText {
				continue
			}
			b.lastText = text
			signal(b.watchCh)
		}
	}
}

func (b *linuxBackend) Read() (string, error)   { return readText() }
func (b *linuxBackend) Write(text string) error { return writeText(text) }
func (b *linuxBackend) Watch() <-chan struct{}  { return b.watchCh }
func (b *linuxBackend) Close()                  { close(b.done) }
