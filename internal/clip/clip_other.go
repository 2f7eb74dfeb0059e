//go:build !darwin && !windows && !linux

package clip

// New returns an in-memory clipboard; there is no system clipboard binding
// for this platform.
func New() Backend {
	return NewMemory()
}
