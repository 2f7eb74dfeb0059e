package watch

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time view of watcher activity.
type Stats struct {
	Backend     string
	Paused      bool
	Changes     int64
	Transformed int64
	Failed      int64
	Unmatched   int64
	ReadErrors  int64
	LastRule    string
	LastError   string
	LastAt      time.Time
}

type counters struct {
	changes     atomic.Int64
	transformed atomic.Int64
	failed      atomic.Int64
	unmatched   atomic.Int64
	readErrors  atomic.Int64

	mu       sync.Mutex
	lastRule string
	lastErr  string
	lastAt   time.Time
}

func (c *counters) ok(rule string) {
	c.transformed.Add(1)
	c.mu.Lock()
	c.lastRule, c.lastErr, c.lastAt = rule, "", time.Now()
	c.mu.Unlock()
}

func (c *counters) fail(rule string, err error) {
	c.failed.Add(1)
	c.mu.Lock()
	c.lastRule, c.lastErr, c.lastAt = rule, err.Error(), time.Now()
	c.mu.Unlock()
}

func (c *counters) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Changes:     c.changes.Load(),
		Transformed: c.transformed.Load(),
		Failed:      c.failed.Load(),
		Unmatched:   c.unmatched.Load(),
		ReadErrors:  c.readErrors.Load(),
		LastRule:    c.lastRule,
		LastError:   c.lastErr,
		LastAt:      c.lastAt,
	}
}
