package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipfmt/internal/control"
	"go.klb.dev/clipfmt/internal/ipc"
	"go.klb.dev/clipfmt/internal/lifecycle"
	"go.klb.dev/clipfmt/internal/message"
	"go.klb.dev/clipfmt/internal/watch"
)

// execute runs the root command with args and stdin, isolated from any
// config file on the host.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeIn(t, t.TempDir(), stdin, args...)
}

func executeIn(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func requireCat(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs cat")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clipfmt dev\n", out)
}

func TestFormatMatched(t *testing.T) {
	requireCat(t)
	out, err := execute(t, "%pyspark-isort\r\nimport os\r\n",
		"format", "--isort-cmd", "cat")
	require.NoError(t, err)
	assert.Equal(t, "%pyspark\nimport os\n", out)
}

func TestFormatUnmatchedPassesThrough(t *testing.T) {
	out, err := execute(t, "just text\n", "format", "--format-cmd", "does-not-exist-clipfmt")
	require.NoError(t, err)
	assert.Equal(t, "just text\n", out)
}

func TestFormatFailure(t *testing.T) {
	_, err := execute(t, "#%format\nx=1\n", "format", "--format-cmd", "does-not-exist-clipfmt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestFormatRulesFromConfigFile(t *testing.T) {
	requireCat(t)
	path := filepath.Join(t.TempDir(), "clipfmt.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[rules]]
name = "echo"
command = ["cat"]
  [[rules.markers]]
  prefix = "--%echo"
  tag = "-- echoed\n"
`), 0o644))

	out, err := execute(t, "--%echo\nselect 1\n", "format", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "-- echoed\nselect 1\n", out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipfmt.toml")
	out, err := execute(t, "", "config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "format-cmd = [")
	assert.Contains(t, string(b), "# [[rules]]")
	assert.NotContains(t, string(b), "\n[[rules]]")
	assert.Contains(t, string(b), `"%pyspark-format"`)

	_, err = execute(t, "", "config", "init", "--path", path)
	assert.Error(t, err)
	_, err = execute(t, "", "config", "init", "--path", path, "--force")
	assert.NoError(t, err)
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &message.Status{
		State:       "paused",
		Version:     "1.2.3",
		PID:         42,
		StartedAt:   time.Now().Add(-90 * time.Second),
		Backend:     "memory",
		Strategy:    "poll",
		Markers:     []string{"#%format", "#%isort"},
		Changes:     3,
		Transformed: 2,
		Failed:      1,
		LastRule:    "isort",
		LastError:   "exit status 1\ntraceback",
	}, "/tmp/clipfmt.sock")

	out := buf.String()
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "#%format #%isort")
	assert.Contains(t, out, "/tmp/clipfmt.sock")
	assert.Contains(t, out, "exit status 1 …")
	assert.NotContains(t, out, "traceback")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "boom", firstLine("boom"))
	assert.Equal(t, "boom …", firstLine("boom\nmore"))
	assert.Equal(t, "boom", firstLine("boom\n"))
}

type idleTarget struct{}

func (idleTarget) State() lifecycle.State { return lifecycle.Running }
func (idleTarget) Stats() watch.Stats     { return watch.Stats{Backend: "memory", Changes: 7} }
func (idleTarget) Pause()                 {}
func (idleTarget) Resume()                {}
func (idleTarget) Stop()                  {}

func TestStatusDoesNotReadConfigFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix socket")
	}
	dir, err := os.MkdirTemp("", "clipfmt")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv("CLIPFMT_SOCKET", filepath.Join(dir, "s"))

	ln, err := ipc.Listen()
	require.NoError(t, err)
	srv := control.NewServer(ln, idleTarget{}, control.Info{Version: "test"})
	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Close)

	home := t.TempDir()
	cfgDir := filepath.Join(home, ".config", "clipfmt")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "clipfmt.toml"), []byte("not = [valid"), 0o644))

	out, err := executeIn(t, home, "", "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "running"`)
	assert.Contains(t, out, `"changes": 7`)

	assert.Nil(t, newStatusCmd().Flags().Lookup("config"))
}
