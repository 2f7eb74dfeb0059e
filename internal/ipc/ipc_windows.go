//go:build windows

package ipc

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

const pipeName = `\\.\pipe\clipfmt`

func socketPath() string { return pipeName }

// Named pipes vanish with their server; nothing can be stale.
func removeStale(string) {}

func listenIPC(path string) (net.Listener, error) {
	// Default security descriptor grants access to the creating user only.
	return winio.ListenPipe(path, nil)
}

func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}
