//go:build !windows

package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPathOverride(t *testing.T) {
	t.Setenv("CLIPFMT_SOCKET", "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())
}

func TestSocketPathXDG(t *testing.T) {
	t.Setenv("CLIPFMT_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/clipfmt.sock", SocketPath())
}

func TestListenSingleInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.sock")
	t.Setenv("CLIPFMT_SOCKET", path)

	assert.False(t, IsRunning())
	ln, err := Listen()
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	assert.True(t, IsRunning())
	_, err = Listen()
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	c, err := Dial(context.Background())
	require.NoError(t, err)
	_ = c.Close()
}

func TestListenRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.sock")
	t.Setenv("CLIPFMT_SOCKET", path)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := Listen()
	require.NoError(t, err)
	_ = ln.Close()
}
