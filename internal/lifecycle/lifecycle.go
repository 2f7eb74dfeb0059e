// Package lifecycle starts and stops the clipboard watcher on behalf of the
// foreground (tray, signal handler, control socket). The only things that
// cross from the foreground into the worker are the stop and pause signals.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"go.klb.dev/clipfmt/internal/watch"
)

// Worker is the background task under control; *watch.Watcher implements it.
type Worker interface {
	Run(ctx context.Context) error
	Stop()
	Pause()
	Resume()
	Paused() bool
	Stats() watch.Stats
}

// State is the controller's externally visible state.
type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Listener is told about every state change. It must not block.
type Listener func(State)

// Controller owns one Worker run.
type Controller struct {
	w    Worker
	done chan struct{}

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	err       error
	listeners []Listener
}

// New wraps w. Nothing runs until Start.
func New(w Worker) *Controller {
	return &Controller{w: w, done: make(chan struct{})}
}

// Subscribe registers l for state changes.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Start launches the worker in its own goroutine. Calls after the first, or
// after Stop, do nothing.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.state = Running
	c.mu.Unlock()
	c.notify(Running)

	go func() {
		err := c.w.Run(ctx)
		c.mu.Lock()
		c.err = err
		c.state = Stopped
		c.mu.Unlock()
		c.notify(Stopped)
		close(c.done)
	}()
}

// Stop signals the worker and waits for it to return. Safe to call any
// number of times, before or after Start.
func (c *Controller) Stop() {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.state = Stopped
		c.mu.Unlock()
		close(c.done)
		c.notify(Stopped)
		return
	case Stopped:
		c.mu.Unlock()
		<-c.done
		return
	}
	cancel := c.cancel
	c.mu.Unlock()

	slog.Debug("stopping clipboard watcher")
	c.w.Stop()
	cancel()
	<-c.done
}

// Pause suspends the worker while it is running.
func (c *Controller) Pause() {
	if c.State() != Running {
		return
	}
	c.w.Pause()
	c.setState(Paused)
}

// Resume continues a paused worker.
func (c *Controller) Resume() {
	if c.State() != Paused {
		return
	}
	c.w.Resume()
	c.setState(Running)
}

// Toggle flips between Running and Paused and returns the new state.
func (c *Controller) Toggle() State {
	switch c.State() {
	case Running:
		c.Pause()
	case Paused:
		c.Resume()
	}
	return c.State()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats forwards the worker's counters.
func (c *Controller) Stats() watch.Stats { return c.w.Stats() }

// Done is closed once the worker has returned (or Stop ran before Start).
func (c *Controller) Done() <-chan struct{} { return c.done }

// Err is the worker's return value; valid after Done is closed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state == s || c.state == Stopped {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	c.notify(s)
}

func (c *Controller) notify(s State) {
	c.mu.Lock()
	ls := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range ls {
		l(s)
	}
}
