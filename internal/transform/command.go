package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// maxDiagnosticLines bounds the stderr excerpt kept in an Error.
const maxDiagnosticLines = 6

// Error reports a rejected payload: the command ran and exited non-zero.
type Error struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// Command runs an external program with the payload on stdin and returns its
// stdout.
type Command struct {
	Name string
	Args []string
	// Env is appended to the process environment.
	Env []string
	// Timeout bounds one run. Zero means no limit.
	Timeout time.Duration
}

// NewCommand builds a Command from an argv slice such as the one stored in
// the config file.
func NewCommand(argv []string) (Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return Command{}, errors.New("empty command")
	}
	return Command{Name: argv[0], Args: argv[1:]}, nil
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Run executes the command on text.
func (c Command) Run(ctx context.Context, text string) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s timed out after %s", c.Name, c.Timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &Error{
			Command:  c.Name,
			ExitCode: exitErr.ExitCode(),
			Stderr:   diagnostic(stderr.String()),
		}
	}
	return "", fmt.Errorf("run %s: %w", c.Name, err)
}

// Func adapts the command to the Func signature.
func (c Command) Func() Func { return c.Run }

// diagnostic keeps the first few non-empty lines of a tool's stderr.
func diagnostic(s string) string {
	var keep []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		keep = append(keep, line)
		if len(keep) == maxDiagnosticLines {
			break
		}
	}
	return strings.Join(keep, "\n")
}
