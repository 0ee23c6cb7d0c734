// Package outfmt renders command results as text tables, JSON, JSON lines or
// CSV, with optional jq filtering of structured output.
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode is an output format.
type Mode int

const (
	// Text is human-readable tables and messages.
	Text Mode = iota
	JSON
	// JSONL writes one JSON document per list item.
	JSONL
	// CSV writes list results as comma-separated rows.
	CSV
)

type (
	modeKey    struct{}
	compactKey struct{}
	queryKey   struct{}
)

// Parse parses an output mode name.
func Parse(s string) (Mode, error) {
	switch s {
	case "text", "":
		return Text, nil
	case "json":
		return JSON, nil
	case "jsonl", "ndjson":
		return JSONL, nil
	case "csv":
		return CSV, nil
	default:
		return Text, fmt.Errorf("invalid output format: %q (use 'text', 'json', 'jsonl', or 'csv')", s)
	}
}

func (m Mode) String() string {
	switch m {
	case JSON:
		return "json"
	case JSONL:
		return "jsonl"
	case CSV:
		return "csv"
	default:
		return "text"
	}
}

// WithMode stores the output mode in ctx.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, modeKey{}, mode)
}

// ModeFromContext returns the output mode, Text by default.
func ModeFromContext(ctx context.Context) Mode {
	if mode, ok := ctx.Value(modeKey{}).(Mode); ok {
		return mode
	}
	return Text
}

// IsJSON reports whether the mode is JSON or JSONL.
func IsJSON(ctx context.Context) bool {
	mode := ModeFromContext(ctx)
	return mode == JSON || mode == JSONL
}

// IsStructured reports whether the mode is anything but Text.
func IsStructured(ctx context.Context) bool {
	return ModeFromContext(ctx) != Text
}

// WithCompact stores the compact JSON flag in ctx.
func WithCompact(ctx context.Context, compact bool) context.Context {
	return context.WithValue(ctx, compactKey{}, compact)
}

// IsCompact reports whether single-line JSON was requested.
func IsCompact(ctx context.Context) bool {
	c, _ := ctx.Value(compactKey{}).(bool)
	return c
}

// WithQuery stores a jq expression in ctx.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery returns the jq expression, if any.
func GetQuery(ctx context.Context) string {
	q, _ := ctx.Value(queryKey{}).(string)
	return q
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	return WriteJSONMaybeCompact(w, v, false)
}

// WriteJSONMaybeCompact writes v as JSON, on one line when compact is set.
func WriteJSONMaybeCompact(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
