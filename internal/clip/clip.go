// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_linux.go    — Linux via golang.design/x/clipboard, polling for changes
//	clip_desktop.go  — macOS / Windows via golang.design/x/clipboard native watch
//	clip_other.go    — everything else, in-memory clipboard
//
// Any platform falls back to the in-memory clipboard (see Memory) when the
// display server is unavailable.
package clip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable reports that the clipboard could not be accessed right now,
// typically because another process holds it or it holds no text. Callers
// treat it as "no observation" and try again on the next tick.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard text. It returns an error wrapping
	// ErrUnavailable when the clipboard cannot be read this instant.
	Read() (string, error)

	// Write replaces the clipboard text.
	Write(text string) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes. The channel is never closed. Signals are coalesced: a slow
	// reader sees at most one pending signal.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}

// Waiter hides how changes are detected. WaitForChange returns the clipboard
// text once a change may have happened or timeout elapsed, whichever is
// first. The returned text is not guaranteed to differ from the last call.
type Waiter interface {
	WaitForChange(ctx context.Context, timeout time.Duration) (string, error)
}

// Strategy selects a Waiter implementation.
type Strategy string

const (
	// StrategyPoll reads on every call; the caller paces the loop.
	StrategyPoll Strategy = "poll"
	// StrategyNotify blocks on the backend change signal.
	StrategyNotify Strategy = "notify"
)

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyPoll:
		return StrategyPoll, nil
	case StrategyNotify, "":
		return StrategyNotify, nil
	default:
		return "", fmt.Errorf("unknown change strategy %q (want poll or notify)", s)
	}
}

// NewWaiter returns the Waiter for strategy s on backend b.
func NewWaiter(s Strategy, b Backend) Waiter {
	if s == StrategyPoll {
		return Poll(b)
	}
	return Notify(b)
}

// Poll returns a Waiter that reads the clipboard immediately.
func Poll(b Backend) Waiter { return pollWaiter{b: b} }

// Notify returns a Waiter that blocks on b.Watch() for at most the timeout
// before reading.
func Notify(b Backend) Waiter { return notifyWaiter{b: b} }

type pollWaiter struct{ b Backend }

func (p pollWaiter) WaitForChange(ctx context.Context, _ time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.b.Read()
}

type notifyWaiter struct{ b Backend }

func (n notifyWaiter) WaitForChange(ctx context.Context, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-n.b.Watch():
	case <-t.C:
	}
	return n.b.Read()
}

// signal performs a non-blocking send on a coalescing watch channel.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
