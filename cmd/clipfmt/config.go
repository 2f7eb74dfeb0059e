package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipfmt/internal/config"
	"go.klb.dev/clipfmt/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPFMT_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPFMT_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)

	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipfmt")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipfmt/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipfmt", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPFMT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addRuleFlags adds the flags that shape the rule table.
func addRuleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice(config.KeyFormatCmd, config.DefaultFormatCmd, "formatter command line (payload on stdin)")
	f.StringSlice(config.KeyIsortCmd, config.DefaultIsortCmd, "import sorter command line (payload on stdin)")
	f.Duration(config.KeyTransformTimeout, 0, "kill a transform after this long (0 = no limit)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	logging.Setup(logging.ParseFormat(v.GetString("log-format")), logging.Resolve(interactive, v.GetString("log-level")))
}
