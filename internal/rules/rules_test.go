package rules

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipfmt/internal/transform"
)

// fakeFormat mimics black closely enough for dispatch tests.
func fakeFormat(_ context.Context, text string) (string, error) {
	if strings.Contains(text, "= =") {
		return "", errors.New("cannot parse")
	}
	return strings.ReplaceAll(strings.TrimSpace(text), "=", " = ") + "\n", nil
}

// fakeIsort sorts lines.
func fakeIsort(_ context.Context, text string) (string, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n", nil
}

func TestDispatchMarkerStripping(t *testing.T) {
	s := Defaults(fakeFormat, fakeIsort)
	ctx := context.Background()

	out := s.Dispatch(ctx, "%pyspark-format\nx=1")
	require.True(t, out.Matched)
	require.NoError(t, out.Err)
	assert.Equal(t, FormatRule, out.Rule)
	assert.Equal(t, "%pyspark\nx = 1\n", out.Output)

	out = s.Dispatch(ctx, "#%format\nx=1")
	require.True(t, out.Matched)
	assert.Equal(t, "x = 1\n", out.Output)
}

func TestDispatchIsort(t *testing.T) {
	out := Defaults(fakeFormat, fakeIsort).Dispatch(context.Background(), "%pyspark-isort\nimport b\nimport a")
	require.NoError(t, out.Err)
	assert.Equal(t, IsortRule, out.Rule)
	assert.Equal(t, "%pyspark\nimport a\nimport b\n", out.Output)
}

func TestDispatchOutputDoesNotRematch(t *testing.T) {
	s := Defaults(fakeFormat, fakeIsort)
	for _, in := range []string{"%pyspark-format\nx=1", "#%format\nx=1", "%pyspark-isort\nimport b", "#%isort\nimport b"} {
		out := s.Dispatch(context.Background(), in)
		require.NoError(t, out.Err, in)
		again := s.Dispatch(context.Background(), out.Output)
		assert.False(t, again.Matched, "output of %q matched again", in)
	}
}

func TestDispatchOrderPrecedence(t *testing.T) {
	var called []string
	record := func(name string) transform.Func {
		return func(_ context.Context, text string) (string, error) {
			called = append(called, name)
			return name, nil
		}
	}
	s := Set{
		{Name: "long", Markers: []Marker{{Prefix: "#%fmt-long"}}, Transform: record("long")},
		{Name: "short", Markers: []Marker{{Prefix: "#%fmt"}}, Transform: record("short")},
	}

	out := s.Dispatch(context.Background(), "#%fmt-long\nx")
	assert.Equal(t, "long", out.Rule)
	assert.Equal(t, []string{"long"}, called)

	// Reversed order: the shorter, earlier marker claims the same input.
	called = nil
	out = Set{s[1], s[0]}.Dispatch(context.Background(), "#%fmt-long\nx")
	assert.Equal(t, "short", out.Rule)
	assert.Equal(t, []string{"short"}, called)
}

func TestDispatchFailureStopsIteration(t *testing.T) {
	laterCalled := false
	s := Set{
		{Name: "bad", Markers: []Marker{{Prefix: "#%x"}}, Transform: func(context.Context, string) (string, error) {
			return "", errors.New("nope")
		}},
		{Name: "good", Markers: []Marker{{Prefix: "#%x"}}, Transform: func(context.Context, string) (string, error) {
			laterCalled = true
			return "ok", nil
		}},
	}
	out := s.Dispatch(context.Background(), "#%x\n1")
	assert.True(t, out.Matched)
	assert.EqualError(t, out.Err, "nope")
	assert.Empty(t, out.Output)
	assert.False(t, laterCalled)
}

func TestDispatchRecoversPanics(t *testing.T) {
	s := Set{{Name: "boom", Markers: []Marker{{Prefix: "!"}}, Transform: func(context.Context, string) (string, error) {
		panic("kaboom")
	}}}
	out := s.Dispatch(context.Background(), "!x")
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "kaboom")
}

func TestDispatchNoMatch(t *testing.T) {
	out := Defaults(fakeFormat, fakeIsort).Dispatch(context.Background(), "just some text %pyspark-format")
	assert.False(t, out.Matched)
	assert.Empty(t, out.Rule)
}

func TestPayload(t *testing.T) {
	m := Marker{Prefix: "#%format"}
	assert.Equal(t, "x=1", Payload("#%format\nx=1", m))
	assert.Equal(t, "x=1", Payload("#%format\r\nx=1", m))
	assert.Equal(t, "\nx=1", Payload("#%format\n\nx=1", m))
	assert.Equal(t, " x=1", Payload("#%format x=1", m))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Defaults(fakeFormat, fakeIsort).Validate())
	assert.Error(t, Set{}.Validate())

	err := Set{
		{Name: "a", Markers: []Marker{{Prefix: ""}}, Transform: fakeFormat},
		{Name: "a", Markers: []Marker{{Prefix: "x"}}},
	}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty marker prefix")
	assert.Contains(t, err.Error(), "duplicate name")
	assert.Contains(t, err.Error(), "no transform")
}

func TestMarkers(t *testing.T) {
	assert.Equal(t,
		[]string{"%pyspark-format", "#%format", "%pyspark-isort", "#%isort"},
		Defaults(fakeFormat, fakeIsort).Markers(),
	)
}
