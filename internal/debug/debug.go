// Package debug carries the --debug flag through a context and configures slog.
package debug

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

type contextKey struct{}

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// SetupLogger installs a text slog handler on stderr, at debug level when
// enabled and warn level otherwise.
func SetupLogger(enabled bool) {
	SetupLoggerTo(os.Stderr, enabled)
}

// SetupLoggerTo is SetupLogger with an explicit destination.
func SetupLoggerTo(w io.Writer, enabled bool) {
	level := slog.LevelWarn
	if enabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// RedactHeaders returns a copy of h safe to log: credentials are masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		value := strings.Join(values, ", ")
		switch strings.ToLower(name) {
		case "authorization", "on-behalf-of", "cookie":
			value = redact(value)
		}
		out[name] = value
	}
	return out
}

func redact(value string) string {
	scheme, _, found := strings.Cut(value, " ")
	if found {
		return scheme + " [redacted]"
	}
	return "[redacted]"
}
