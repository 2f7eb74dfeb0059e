package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.klb.dev/clipfmt/internal/lifecycle"
)

func TestPauseLabel(t *testing.T) {
	assert.Equal(t, "Pause", pauseLabel(lifecycle.Running))
	assert.Equal(t, "Resume", pauseLabel(lifecycle.Paused))
	assert.Equal(t, "Pause", pauseLabel(lifecycle.Idle))
}

type stubController struct{ stopped bool }

func (s *stubController) State() lifecycle.State  { return lifecycle.Running }
func (s *stubController) Toggle() lifecycle.State { return lifecycle.Paused }
func (s *stubController) Stop()                   { s.stopped = true }

func TestQuitBeforeRun(t *testing.T) {
	m := New("clipfmt", nil, &stubController{})
	m.OnState(lifecycle.Stopped)
	m.Quit()
	assert.True(t, m.quitting())

	// Run must not start the tray once Quit has been called.
	m.Run()
}

func TestOnStateWithoutMenu(t *testing.T) {
	m := New("clipfmt", nil, &stubController{})
	m.OnState(lifecycle.Paused)
	m.OnState(lifecycle.Running)
	assert.False(t, m.quitting())
}
