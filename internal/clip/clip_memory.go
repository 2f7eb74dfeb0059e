package clip

import (
	"fmt"
	"sync"
)

// Memory is an in-process clipboard. It backs headless runs and tests.
// Writes made through Write and user copies made through Set both raise a
// change signal, mirroring how a desktop clipboard reports every change.
type Memory struct {
	mu         sync.Mutex
	text       string
	writes     []string
	failReads  int
	failWrites int
	watchCh    chan struct{}
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 1)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads > 0 {
		m.failReads--
		return "", fmt.Errorf("memory read: %w", ErrUnavailable)
	}
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	if m.failWrites > 0 {
		m.failWrites--
		m.mu.Unlock()
		return fmt.Errorf("memory write: %w", ErrUnavailable)
	}
	m.text = text
	m.writes = append(m.writes, text)
	m.mu.Unlock()
	signal(m.watchCh)
	return nil
}

// Set replaces the clipboard text as if a user had copied it. It is not
// recorded in Writes.
func (m *Memory) Set(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	signal(m.watchCh)
}

// Text returns the current content without consuming injected failures.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns every value stored through Write, oldest first.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// FailReads makes the next n reads return ErrUnavailable.
func (m *Memory) FailReads(n int) {
	m.mu.Lock()
	m.failReads = n
	m.mu.Unlock()
}

// FailWrites makes the next n writes return ErrUnavailable.
func (m *Memory) FailWrites(n int) {
	m.mu.Lock()
	m.failWrites = n
	m.mu.Unlock()
}

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }
func (m *Memory) Close()                 {}
