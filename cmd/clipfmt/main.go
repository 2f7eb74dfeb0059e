// clipfmt: formats Python snippets on the clipboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipfmt",
		Short: "Format marked Python snippets on the clipboard",
		Long: `clipfmt watches the clipboard for text that starts with a marker and
replaces it with the formatted code:

  %pyspark-format / #%format   run the formatter (black)
  %pyspark-isort  / #%isort    sort imports (isort)

The %pyspark- markers put a "%pyspark" line back on top of the result so the
paragraph can be pasted straight into a notebook.

Run "clipfmt run" to start the watcher (with a tray icon where available).
Use "clipfmt status/pause/resume/stop" to drive a running watcher.

Config file search order (first found wins):
  /etc/clipfmt/clipfmt.toml
  $HOME/.config/clipfmt/clipfmt.toml
  path supplied via --config

All flags can be set via CLIPFMT_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newPauseCmd(),
		newResumeCmd(),
		newStopCmd(),
		newHealthCmd(),
		newFormatCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipfmt %s\n", Version)
		},
	}
}
