// Package rules implements ordered marker dispatch: clipboard text is
// matched against a table of rules, and the first rule whose marker prefixes
// the text transforms the payload behind it.
package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.klb.dev/clipfmt/internal/transform"
)

// Marker is a prefix recognized at the start of clipboard text. Tag is put in
// front of a successful transform's output so downstream consumers can tell
// processed content apart; it may be empty.
type Marker struct {
	Prefix string
	Tag    string
}

// Rule maps one or more markers to a transform. Markers are tried in order.
type Rule struct {
	Name      string
	Markers   []Marker
	Transform transform.Func
}

// Match returns the first marker of r that prefixes text.
func (r Rule) Match(text string) (Marker, bool) {
	for _, m := range r.Markers {
		if m.Prefix != "" && strings.HasPrefix(text, m.Prefix) {
			return m, true
		}
	}
	return Marker{}, false
}

// Set is an ordered rule table. Earlier rules take precedence.
type Set []Rule

// Outcome describes a single dispatch.
type Outcome struct {
	Matched bool
	Rule    string
	Marker  Marker
	// Output is the replacement text, tag included. Only set when Err is nil.
	Output string
	Err    error
}

// Dispatch runs the first matching rule on text. Exactly one transform runs
// when a rule matches, whether or not it succeeds.
func (s Set) Dispatch(ctx context.Context, text string) Outcome {
	for _, r := range s {
		m, ok := r.Match(text)
		if !ok {
			continue
		}
		out := Outcome{Matched: true, Rule: r.Name, Marker: m}
		res, err := run(ctx, r.Transform, Payload(text, m))
		if err != nil {
			out.Err = err
			return out
		}
		out.Output = m.Tag + res
		return out
	}
	return Outcome{}
}

// run shields the caller from a panicking transform.
func run(ctx context.Context, fn transform.Func, payload string) (res string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return fn(ctx, payload)
}

// Payload strips marker m and one line break directly after it from text.
func Payload(text string, m Marker) string {
	p := strings.TrimPrefix(text, m.Prefix)
	switch {
	case strings.HasPrefix(p, "\r\n"):
		return p[2:]
	case strings.HasPrefix(p, "\n"):
		return p[1:]
	}
	return p
}

// Markers lists every prefix in dispatch order.
func (s Set) Markers() []string {
	var out []string
	for _, r := range s {
		for _, m := range r.Markers {
			out = append(out, m.Prefix)
		}
	}
	return out
}

// Validate reports configuration mistakes that would make dispatch
// ambiguous or impossible.
func (s Set) Validate() error {
	if len(s) == 0 {
		return errors.New("no rules configured")
	}
	seen := make(map[string]struct{}, len(s))
	var errs []error
	for i, r := range s {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("rule %d: missing name", i))
		} else if _, dup := seen[r.Name]; dup {
			errs = append(errs, fmt.Errorf("rule %q: duplicate name", r.Name))
		}
		seen[r.Name] = struct{}{}
		if r.Transform == nil {
			errs = append(errs, fmt.Errorf("rule %q: no transform", r.Name))
		}
		if len(r.Markers) == 0 {
			errs = append(errs, fmt.Errorf("rule %q: no markers", r.Name))
		}
		for _, m := range r.Markers {
			if m.Prefix == "" {
				errs = append(errs, fmt.Errorf("rule %q: empty marker prefix", r.Name))
			}
		}
	}
	return errors.Join(errs...)
}
