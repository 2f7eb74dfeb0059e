package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiFansOutInOrder(t *testing.T) {
	var got []string
	a := Func(func(m string) { got = append(got, "a:"+m) })
	b := Func(func(m string) { got = append(got, "b:"+m) })

	Multi{a, Discard, b}.Notify("done!")
	assert.Equal(t, []string{"a:done!", "b:done!"}, got)
}

func TestDesktopCommandLinux(t *testing.T) {
	d := NewDesktop("clipfmt", "/tmp/icon.png")
	cmd := d.command("linux", "oops\nbad input")
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"notify-send", "--app-name=clipfmt", "--icon=/tmp/icon.png", "clipfmt", "oops\nbad input"}, cmd.Args)
}

func TestDesktopCommandDarwinPassesTextAsArguments(t *testing.T) {
	cmd := NewDesktop("clipfmt", "").command("darwin", `say "hi"`)
	require.NotNil(t, cmd)
	n := len(cmd.Args)
	assert.Equal(t, `say "hi"`, cmd.Args[n-2])
	assert.Equal(t, "clipfmt", cmd.Args[n-1])
}

func TestDesktopCommandWindowsUsesEnvironment(t *testing.T) {
	cmd := NewDesktop("clipfmt", "").command("windows", "done!")
	require.NotNil(t, cmd)
	assert.Contains(t, cmd.Env, "CLIPFMT_MESSAGE=done!")
	assert.Contains(t, cmd.Env, "CLIPFMT_TITLE=clipfmt")
}

func TestDesktopCommandUnknownPlatform(t *testing.T) {
	assert.Nil(t, NewDesktop("clipfmt", "").command("plan9", "x"))
}
