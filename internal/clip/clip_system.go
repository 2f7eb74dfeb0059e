//go:build linux || darwin || windows

package clip

import (
	"fmt"

	"golang.design/x/clipboard"
)

// readText reads the text format. The library returns nil both for an empty
// clipboard and for a failed access and may panic when the platform call
// fails mid-way, so both are reported as ErrUnavailable.
func readText() (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnavailable, r)
		}
	}()
	b := clipboard.Read(clipboard.FmtText)
	if b == nil {
		return "", fmt.Errorf("%w: no text", ErrUnavailable)
	}
	return string(b), nil
}

func writeText(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnavailable, r)
		}
	}()
	if clipboard.Write(clipboard.FmtText, []byte(text)) == nil {
		return fmt.Errorf("%w: write rejected", ErrUnavailable)
	}
	return nil
}
