// Package config turns viper settings (defaults → config file → CLIPFMT_*
// env vars → flags) into the typed configuration of a clipfmt run.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"go.klb.dev/clipfmt/internal/clip"
	"go.klb.dev/clipfmt/internal/rules"
	"go.klb.dev/clipfmt/internal/transform"
	"go.klb.dev/clipfmt/internal/watch"
)

// Keys shared by flags, env vars and the config file.
const (
	KeyAppName          = "app-name"
	KeyStrategy         = "strategy"
	KeyInterval         = "interval"
	KeyWaitTimeout      = "wait-timeout"
	KeyNoTray           = "no-tray"
	KeyNoNotify         = "no-notify"
	KeyIcon             = "icon"
	KeyFormatCmd        = "format-cmd"
	KeyIsortCmd         = "isort-cmd"
	KeyTransformTimeout = "transform-timeout"
	KeyRules            = "rules"
)

// Built-in defaults.
var (
	DefaultAppName   = "clipfmt"
	DefaultFormatCmd = []string{"black", "--quiet", "--line-length", "80", "-"}
	DefaultIsortCmd  = []string{"isort", "--quiet", "-"}
)

// MarkerConfig is one [[rules.markers]] entry.
type MarkerConfig struct {
	Prefix string `mapstructure:"prefix" toml:"prefix"`
	Tag    string `mapstructure:"tag" toml:"tag,omitempty"`
}

// RuleConfig is one [[rules]] entry of the config file.
type RuleConfig struct {
	Name    string         `mapstructure:"name" toml:"name"`
	Command []string       `mapstructure:"command" toml:"command"`
	Markers []MarkerConfig `mapstructure:"markers" toml:"markers"`
}

// Config is the resolved configuration of `clipfmt run`.
type Config struct {
	AppName          string
	Strategy         clip.Strategy
	Watch            watch.Config
	Tray             bool
	Notify           bool
	Icon             string
	FormatCmd        []string
	IsortCmd         []string
	TransformTimeout time.Duration
	Rules            []RuleConfig
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAppName, DefaultAppName)
	v.SetDefault(KeyStrategy, string(clip.StrategyNotify))
	v.SetDefault(KeyInterval, watch.DefaultInterval)
	v.SetDefault(KeyWaitTimeout, watch.DefaultWaitTimeout)
	v.SetDefault(KeyFormatCmd, DefaultFormatCmd)
	v.SetDefault(KeyIsortCmd, DefaultIsortCmd)
}

// FromViper reads and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	strategy, err := clip.ParseStrategy(v.GetString(KeyStrategy))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		AppName:  v.GetString(KeyAppName),
		Strategy: strategy,
		Watch: watch.Config{
			Interval:    v.GetDuration(KeyInterval),
			WaitTimeout: v.GetDuration(KeyWaitTimeout),
		},
		Tray:             !v.GetBool(KeyNoTray),
		Notify:           !v.GetBool(KeyNoNotify),
		Icon:             v.GetString(KeyIcon),
		FormatCmd:        v.GetStringSlice(KeyFormatCmd),
		IsortCmd:         v.GetStringSlice(KeyIsortCmd),
		TransformTimeout: v.GetDuration(KeyTransformTimeout),
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if cfg.Watch.Interval < 0 || cfg.Watch.WaitTimeout < 0 || cfg.TransformTimeout < 0 {
		return Config{}, errors.New("durations must not be negative")
	}
	if err := v.UnmarshalKey(KeyRules, &cfg.Rules); err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyRules, err)
	}
	return cfg, nil
}

// RuleSet builds the dispatch table: the [[rules]] section when present,
// the built-in format/isort table otherwise.
func (c Config) RuleSet() (rules.Set, error) {
	if len(c.Rules) == 0 {
		format, err := c.command(c.FormatCmd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyFormatCmd, err)
		}
		isort, err := c.command(c.IsortCmd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyIsortCmd, err)
		}
		return rules.Defaults(format, isort), nil
	}

	set := make(rules.Set, 0, len(c.Rules))
	for _, rc := range c.Rules {
		fn, err := c.command(rc.Command)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		r := rules.Rule{Name: rc.Name, Transform: fn}
		for _, m := range rc.Markers {
			r.Markers = append(r.Markers, rules.Marker{Prefix: m.Prefix, Tag: m.Tag})
		}
		set = append(set, r)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (c Config) command(argv []string) (transform.Func, error) {
	cmd, err := transform.NewCommand(argv)
	if err != nil {
		return nil, err
	}
	cmd.Timeout = c.TransformTimeout
	return transform.Chain(transform.NormalizeNewlines, cmd.Run), nil
}
