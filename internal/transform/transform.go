// Package transform holds the text processors clipfmt applies to marked
// clipboard payloads.
package transform

import (
	"context"
	"log/slog"
	"strings"
)

// Func transforms text. A non-nil error means the input was rejected and no
// replacement must be written.
type Func func(ctx context.Context, text string) (string, error)

// Chain runs fns in sequence, feeding each the previous output, and stops at
// the first error.
func Chain(fns ...Func) Func {
	return func(ctx context.Context, text string) (string, error) {
		result := text
		var err error
		for i, fn := range fns {
			result, err = fn(ctx, result)
			if err != nil {
				slog.Debug("transform step failed", "step", i, "err", err)
				return "", err
			}
		}
		return result, nil
	}
}

// NormalizeNewlines rewrites CRLF line endings, as produced by the Windows
// clipboard, to LF.
func NormalizeNewlines(_ context.Context, text string) (string, error) {
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
