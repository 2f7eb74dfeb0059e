// Package notify delivers short user-facing messages. Delivery is
// fire-and-forget: sinks never report failure to the caller.
package notify

import "log/slog"

// Sink receives notifications.
type Sink interface {
	Notify(message string)
}

// Func adapts a function to Sink.
type Func func(message string)

func (f Func) Notify(message string) { f(message) }

// Discard drops every message.
var Discard Sink = Func(func(string) {})

// Log writes notifications to the default slog logger.
type Log struct{}

func (Log) Notify(message string) {
	slog.Info("notification", "message", message)
}

// Multi fans a message out to several sinks in order.
type Multi []Sink

func (m Multi) Notify(message string) {
	for _, s := range m {
		s.Notify(message)
	}
}
