package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"go.klb.dev/clipfmt/internal/rules"
)

// File is the on-disk shape written by `clipfmt config init`. Durations are
// strings so the file stays readable ("50ms").
type File struct {
	AppName          string       `toml:"app-name"`
	Strategy         string       `toml:"strategy"`
	Interval         string       `toml:"interval"`
	WaitTimeout      string       `toml:"wait-timeout"`
	TransformTimeout string       `toml:"transform-timeout,omitempty"`
	NoTray           bool         `toml:"no-tray"`
	NoNotify         bool         `toml:"no-notify"`
	Icon             string       `toml:"icon,omitempty"`
	LogFormat        string       `toml:"log-format"`
	LogLevel         string       `toml:"log-level,omitempty"`
	FormatCmd        []string     `toml:"format-cmd"`
	IsortCmd         []string     `toml:"isort-cmd"`
	Rules            []RuleConfig `toml:"rules,omitempty"`
}

// rulesExample is appended to written files. A [[rules]] section replaces
// the built-in table, format-cmd and isort-cmd included, so it stays
// commented out until the user opts in.
var rulesExample = `
# A [[rules]] section replaces the built-in format/isort table; format-cmd
# and isort-cmd are then ignored. Rules are tried in order, first match wins.
#
# [[rules]]
# name = "` + rules.FormatRule + `"
# command = ["black", "--quiet", "--line-length", "80", "-"]
#   [[rules.markers]]
#   prefix = "%pyspark-format"
#   tag = "%pyspark\n"
#   [[rules.markers]]
#   prefix = "#%format"
#
# [[rules]]
# name = "` + rules.IsortRule + `"
# command = ["isort", "--quiet", "-"]
#   [[rules.markers]]
#   prefix = "%pyspark-isort"
#   tag = "%pyspark\n"
#   [[rules.markers]]
#   prefix = "#%isort"
`

// DefaultFile spells out the built-in settings so they can be edited in
// place. The rule table itself is only shown as a commented example.
func DefaultFile() File {
	return File{
		AppName:     DefaultAppName,
		Strategy:    "notify",
		Interval:    "50ms",
		WaitTimeout: "1s",
		LogFormat:   "auto",
		FormatCmd:   DefaultFormatCmd,
		IsortCmd:    DefaultIsortCmd,
	}
}

// DefaultPath is the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".config", "clipfmt", "clipfmt.toml"), nil
}

// Write encodes f as TOML at path. An existing file is only replaced when
// force is set.
func Write(path string, f File, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		if _, err := io.WriteString(out, rulesExample); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return out.Close()
}
