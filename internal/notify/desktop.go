package notify

import (
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// windowsBalloon shows a tray balloon; title and message arrive through the
// environment so no quoting is involved.
const windowsBalloon = `Add-Type -AssemblyName System.Windows.Forms;` +
	`$n = New-Object System.Windows.Forms.NotifyIcon;` +
	`$n.Icon = [System.Drawing.SystemIcons]::Information;` +
	`$n.Visible = $true;` +
	`$n.ShowBalloonTip(5000, $env:CLIPFMT_TITLE, $env:CLIPFMT_MESSAGE, 'None');` +
	`Start-Sleep -Seconds 6;` +
	`$n.Dispose()`

// Desktop shows notifications through the platform's notification helper:
// notify-send on Linux, osascript on macOS and PowerShell on Windows.
type Desktop struct {
	AppName string
	// Icon is an optional image path (Linux only).
	Icon string

	warnOnce sync.Once
}

// NewDesktop returns a desktop sink titled appName.
func NewDesktop(appName, icon string) *Desktop {
	return &Desktop{AppName: appName, Icon: icon}
}

func (d *Desktop) Notify(message string) {
	cmd := d.command(runtime.GOOS, message)
	if cmd == nil {
		return
	}
	if err := cmd.Start(); err != nil {
		d.warnOnce.Do(func() {
			slog.Warn("desktop notifications unavailable", "cmd", cmd.Path, "err", err)
		})
		return
	}
	go func() { _ = cmd.Wait() }()
}

func (d *Desktop) command(goos, message string) *exec.Cmd {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		args := []string{"--app-name=" + d.AppName}
		if d.Icon != "" {
			args = append(args, "--icon="+d.Icon)
		}
		args = append(args, d.AppName, message)
		return exec.Command("notify-send", args...)
	case "darwin":
		return exec.Command("osascript",
			"-e", "on run argv",
			"-e", "display notification (item 1 of argv) with title (item 2 of argv)",
			"-e", "end run",
			message, d.AppName,
		)
	case "windows":
		cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", windowsBalloon)
		cmd.Env = append(os.Environ(), "CLIPFMT_TITLE="+d.AppName, "CLIPFMT_MESSAGE="+message)
		return cmd
	default:
		slog.Debug("no desktop notifier for platform", "platform", goos)
		return nil
	}
}
