package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go.klb.dev/clipfmt/internal/control"
	"go.klb.dev/clipfmt/internal/ipc"
	"go.klb.dev/clipfmt/internal/message"
)

const requestTimeout = 5 * time.Second

func newStatusCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the running watcher",
		Long: `Asks the running watcher (over its local control socket) for its state,
backend, markers and counters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, jsonOut) },
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOut bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	st, err := newClient().Status(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc, _ := json.MarshalIndent(st, "", "  ")
		fmt.Fprintln(out, string(enc))
		return nil
	}
	printStatus(out, st, ipc.SocketPath())
	return nil
}

func printStatus(out io.Writer, st *message.Status, socket string) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "State:\t%s\n", st.State)
	fmt.Fprintf(w, "Version:\t%s\n", st.Version)
	fmt.Fprintf(w, "PID:\t%d\n", st.PID)
	fmt.Fprintf(w, "Socket:\t%s\n", socket)
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", st.StartedAt.UTC().Format(time.RFC3339), fmtAge(st.StartedAt))
	}
	fmt.Fprintf(w, "Backend:\t%s\n", st.Backend)
	fmt.Fprintf(w, "Strategy:\t%s\n", st.Strategy)
	fmt.Fprintf(w, "Markers:\t%s\n", strings.Join(st.Markers, " "))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Changes:\t%d\n", st.Changes)
	fmt.Fprintf(w, "Transformed:\t%d\n", st.Transformed)
	fmt.Fprintf(w, "Failed:\t%d\n", st.Failed)
	fmt.Fprintf(w, "Unmatched:\t%d\n", st.Unmatched)
	fmt.Fprintf(w, "Read errors:\t%d\n", st.ReadErrors)
	if st.LastRule != "" {
		last := st.LastRule
		if !st.LastAt.IsZero() {
			last += " (" + fmtAge(st.LastAt) + ")"
		}
		fmt.Fprintf(w, "Last rule:\t%s\n", last)
	}
	if st.LastError != "" {
		fmt.Fprintf(w, "Last error:\t%s\n", firstLine(st.LastError))
	}
	_ = w.Flush()
}

func newPauseCmd() *cobra.Command {
	return newSignalCmd("pause", "Stop formatting until resumed", message.TypePause)
}

func newResumeCmd() *cobra.Command {
	return newSignalCmd("resume", "Resume formatting after pause", message.TypeResume)
}

func newStopCmd() *cobra.Command {
	return newSignalCmd("stop", "Stop the running watcher", message.TypeStop)
}

// newSignalCmd builds a command that sends one request without payload and
// prints the resulting state.
func newSignalCmd(use, short string, t message.Type) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			resp, err := newClient().Do(ctx, t)
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			if resp.Status != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "clipfmt is %s\n", resp.Status.State)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			return nil
		},
	}
}

func newClient() *control.Client {
	return control.NewClient(defaultSource())
}

// defaultSource names this CLI invocation in the watcher's logs.
func defaultSource() string {
	if h, err := os.Hostname(); err == nil {
		return fmt.Sprintf("cli@%s:%d", h, os.Getpid())
	}
	return fmt.Sprintf("cli:%d", os.Getpid())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
