// Package ipc locates and opens the local control socket a running clipfmt
// watcher listens on. CLI sub-commands (status, pause, resume, stop, health)
// dial it; only one watcher per user session may own it.
package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"time"
)

// ErrAlreadyRunning is returned by Listen when another watcher answers on
// the socket.
var ErrAlreadyRunning = errors.New("another clipfmt watcher is already running")

const probeTimeout = 500 * time.Millisecond

// SocketPath returns the platform-appropriate path for the control socket.
//
//   - $CLIPFMT_SOCKET when set
//   - Linux:   $XDG_RUNTIME_DIR/clipfmt.sock, else $TMPDIR/clipfmt.sock
//   - macOS:   $TMPDIR/clipfmt.sock
//   - Windows: \\.\pipe\clipfmt (named pipe)
func SocketPath() string {
	if s := os.Getenv("CLIPFMT_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// Dial connects to the control socket.
func Dial(ctx context.Context) (net.Conn, error) {
	return dialIPC(ctx, SocketPath())
}

// IsRunning reports whether a watcher appears to be listening on the
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	c, err := Dial(ctx)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates the control socket. A stale socket left by a crashed run
// is removed; a live one yields ErrAlreadyRunning.
func Listen() (net.Listener, error) {
	if IsRunning() {
		return nil, ErrAlreadyRunning
	}
	path := SocketPath()
	removeStale(path)
	return listenIPC(path)
}
