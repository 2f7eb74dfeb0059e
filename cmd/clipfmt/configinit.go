package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.klb.dev/clipfmt/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the clipfmt config file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the built-in defaults",
		Long: `Writes the default settings as TOML. format-cmd and isort-cmd pick the
commands for the built-in rules. The file ends with the rule table as a
commented [[rules]] example; uncommented, it replaces the built-in table and
format-cmd/isort-cmd no longer apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.Write(path, config.DefaultFile(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "destination (default $HOME/.config/clipfmt/clipfmt.toml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
