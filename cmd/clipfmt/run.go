package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.klb.dev/clipfmt/internal/clip"
	"go.klb.dev/clipfmt/internal/config"
	"go.klb.dev/clipfmt/internal/control"
	"go.klb.dev/clipfmt/internal/ipc"
	"go.klb.dev/clipfmt/internal/lifecycle"
	"go.klb.dev/clipfmt/internal/notify"
	"go.klb.dev/clipfmt/internal/tray"
	"go.klb.dev/clipfmt/internal/watch"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the clipboard and format marked snippets",
		Long: `Starts the clipboard watcher. Text copied with a known marker on its
first line is piped through the matching command and the result is written
back to the clipboard. A desktop notification reports "done!" or the error.

The watcher shows a tray icon with Pause/Resume and Exit entries unless
--no-tray is given, and answers "clipfmt status/pause/resume/stop" on a local
control socket.

Config file search order:
  /etc/clipfmt/clipfmt.toml
  $HOME/.config/clipfmt/clipfmt.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPFMT_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String(config.KeyAppName, config.DefaultAppName, "name shown in notifications and the tray")
	f.String(config.KeyStrategy, string(clip.StrategyNotify), "change detection: notify|poll")
	f.Duration(config.KeyInterval, watch.DefaultInterval, "pause between clipboard checks")
	f.Duration(config.KeyWaitTimeout, watch.DefaultWaitTimeout, "longest wait for a change notification (notify strategy)")
	f.Bool(config.KeyNoTray, false, "run without a tray icon")
	f.Bool(config.KeyNoNotify, false, "log results instead of showing desktop notifications")
	f.String(config.KeyIcon, "", "icon file for the tray and notifications")
	addRuleFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runWatch(ctx context.Context, v *viper.Viper) error {
	setupLogging(v)

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	set, err := cfg.RuleSet()
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	var icon []byte
	if cfg.Icon != "" {
		if icon, err = os.ReadFile(cfg.Icon); err != nil {
			return fmt.Errorf("icon: %w", err)
		}
	}

	ln, err := ipc.Listen()
	if errors.Is(err, ipc.ErrAlreadyRunning) {
		return err
	}
	if err != nil {
		slog.Warn("control socket unavailable", "err", err)
	} else {
		slog.Info("control socket listening", "path", ipc.SocketPath())
	}

	backend := clip.New()
	defer backend.Close()

	sink := notify.Multi{notify.Log{}}
	if cfg.Notify {
		sink = append(sink, notify.NewDesktop(cfg.AppName, cfg.Icon))
	}

	slog.Info("clipfmt starting",
		"version", Version,
		"backend", backend.Name(),
		"strategy", cfg.Strategy,
		"rules", len(set),
		"tray", cfg.Tray,
	)

	w := watch.New(cfg.Watch, backend, clip.NewWaiter(cfg.Strategy, backend), set, sink)
	ctl := lifecycle.New(w)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group
	if ln != nil {
		srv := control.NewServer(ln, ctl, control.Info{
			Version:   Version,
			Strategy:  string(cfg.Strategy),
			Markers:   set.Markers(),
			StartedAt: time.Now(),
		})
		ctl.Subscribe(srv.SetState)
		g.Go(srv.Serve)
		g.Go(func() error {
			<-ctl.Done()
			srv.Close()
			return nil
		})
	}

	var tm *tray.Manager
	if cfg.Tray {
		tm = tray.New(cfg.AppName, icon, ctl)
		ctl.Subscribe(tm.OnState)
	}

	ctl.Start(ctx)

	if tm != nil {
		tm.Run()
		ctl.Stop()
	} else {
		<-ctl.Done()
	}

	if err := g.Wait(); err != nil {
		slog.Warn("control socket", "err", err)
	}
	return ctl.Err()
}
