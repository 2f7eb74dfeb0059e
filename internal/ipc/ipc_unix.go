//go:build !windows

package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

func socketPath() string {
	// Linux: prefer XDG_RUNTIME_DIR
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipfmt.sock")
	}
	// macOS / fallback
	return filepath.Join(os.TempDir(), "clipfmt.sock")
}

func removeStale(path string) { _ = os.Remove(path) }

func listenIPC(path string) (net.Listener, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	// Owner only: the socket can pause and stop the watcher.
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, err
	}
	return ln, nil
}

func dialIPC(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
