package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipfmt/internal/config"
	"go.klb.dev/clipfmt/internal/logging"
)

func newFormatCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Apply the rule table once to stdin",
		Long: `Reads text from stdin and runs it through the same rules the watcher
uses, printing the result. Input without a known marker is printed unchanged.
Exits non-zero when the matching transform fails.

  echo -e '#%isort\nimport sys\nimport os' | clipfmt format`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFormat(cmd.Context(), v, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	addRuleFlags(cmd)
	addConfigFlag(cmd)
	cmd.Flags().String("log-level", "warn", "log level: debug|info|warn|error")

	return cmd
}

func runFormat(ctx context.Context, v *viper.Viper, in io.Reader, out io.Writer) error {
	logging.Setup(logging.FormatText, logging.ParseLevel(v.GetString("log-level")))
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	set, err := cfg.RuleSet()
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	res := set.Dispatch(ctx, string(b))
	switch {
	case !res.Matched:
		_, err = io.WriteString(out, string(b))
		return err
	case res.Err != nil:
		return fmt.Errorf("%s: %w", res.Rule, res.Err)
	}
	_, err = io.WriteString(out, res.Output)
	return err
}
