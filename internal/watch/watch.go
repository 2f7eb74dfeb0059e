// Package watch runs the clipboard loop: it waits for clipboard changes,
// dispatches marked text to the rule table and writes the result back.
//
// A single goroutine owns every clipboard access and the baseline (the last
// value seen or written). After a successful write-back the baseline is the
// written text, so reading our own output back is not a change.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.klb.dev/clipfmt/internal/clip"
	"go.klb.dev/clipfmt/internal/logging"
	"go.klb.dev/clipfmt/internal/notify"
	"go.klb.dev/clipfmt/internal/rules"
)

const (
	DefaultInterval    = 50 * time.Millisecond
	DefaultWaitTimeout = time.Second
)

// Messages sent to the notification sink.
const (
	msgDone   = "done!"
	msgOops   = "oops\n"
	msgNoCopy = "could not update the clipboard\n"
)

// Config tunes loop pacing.
type Config struct {
	// Interval is slept after every iteration.
	Interval time.Duration
	// WaitTimeout bounds a single WaitForChange call.
	WaitTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	return c
}

// Watcher is the clipboard loop. Create with New, run with Run.
type Watcher struct {
	cfg    Config
	port   clip.Backend
	waiter clip.Waiter
	rules  rules.Set
	sink   notify.Sink

	// last is owned by the Run goroutine.
	last string

	stopping atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	paused   atomic.Bool

	stats counters
}

// New returns a Watcher. waiter decides how changes are detected on port.
func New(cfg Config, port clip.Backend, waiter clip.Waiter, rs rules.Set, sink notify.Sink) *Watcher {
	if sink == nil {
		sink = notify.Discard
	}
	return &Watcher{
		cfg:    cfg.withDefaults(),
		port:   port,
		waiter: waiter,
		rules:  rs,
		sink:   sink,
		stopCh: make(chan struct{}),
	}
}

// Run loops until Stop is called or ctx is done. It never returns an error
// from the clipboard or a transform; those end the current cycle only.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watching clipboard",
		"backend", w.port.Name(),
		"interval", w.cfg.Interval,
		"markers", w.rules.Markers(),
	)
	defer slog.Info("clipboard watcher stopped")

	// Stop cancels ctx as well, so a blocked wait or a running transform
	// ends with it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if w.stopping.Load() || ctx.Err() != nil {
			return nil
		}
		if !w.paused.Load() {
			w.step(ctx)
		}
		w.sleep(ctx)
	}
}

// step performs one observation and, on a genuine change, one dispatch.
func (w *Watcher) step(ctx context.Context) {
	text, err := w.waiter.WaitForChange(ctx, w.cfg.WaitTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.stats.readErrors.Add(1)
		if !errors.Is(err, clip.ErrUnavailable) {
			slog.Warn("clipboard read failed", "err", err)
			return
		}
		slog.Debug("clipboard read skipped", "err", err)
		return
	}
	if text == w.last || w.paused.Load() {
		return
	}
	w.stats.changes.Add(1)
	w.last = w.dispatch(ctx, text)
}

// dispatch runs the rule table on text and returns the new baseline.
func (w *Watcher) dispatch(ctx context.Context, text string) string {
	if logging.DebugEnabled() {
		slog.Debug("clipboard changed", "preview", logging.Preview(text))
	}

	out := w.rules.Dispatch(ctx, text)
	if !out.Matched {
		w.stats.unmatched.Add(1)
		return text
	}
	if out.Err != nil {
		if ctx.Err() != nil {
			slog.Debug("transform interrupted by shutdown", "rule", out.Rule, "err", out.Err)
			return text
		}
		w.stats.fail(out.Rule, out.Err)
		slog.Warn("transform failed", "rule", out.Rule, "marker", out.Marker.Prefix, "err", out.Err)
		w.sink.Notify(msgOops + out.Err.Error())
		return text
	}
	if err := w.port.Write(out.Output); err != nil {
		w.stats.fail(out.Rule, err)
		slog.Warn("clipboard write failed", "rule", out.Rule, "err", err)
		w.sink.Notify(msgNoCopy + err.Error())
		return text
	}

	w.stats.ok(out.Rule)
	slog.Info("clipboard transformed", "rule", out.Rule, "marker", out.Marker.Prefix, "bytes", len(out.Output))
	w.sink.Notify(msgDone)
	return out.Output
}

// sleep paces the loop; Stop and ctx cut it short.
func (w *Watcher) sleep(ctx context.Context) {
	t := time.NewTimer(w.cfg.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-w.stopCh:
	case <-t.C:
	}
}

// Stop makes Run return within one tick, interrupting a pending wait or a
// running transform. Safe to call repeatedly and from any goroutine.
func (w *Watcher) Stop() {
	w.stopping.Store(true)
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Pause suspends clipboard access until Resume. The baseline is kept.
func (w *Watcher) Pause() {
	if !w.paused.Swap(true) {
		slog.Info("clipboard watcher paused")
	}
}

// Resume undoes Pause.
func (w *Watcher) Resume() {
	if w.paused.Swap(false) {
		slog.Info("clipboard watcher resumed")
	}
}

// Paused reports whether the watcher is paused.
func (w *Watcher) Paused() bool { return w.paused.Load() }

// Stats returns a snapshot of the loop counters.
func (w *Watcher) Stats() Stats {
	s := w.stats.snapshot()
	s.Paused = w.paused.Load()
	s.Backend = w.port.Name()
	return s
}
