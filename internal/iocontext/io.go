// Package iocontext carries the command I/O streams in a context so tests
// can capture output.
package iocontext

import (
	"context"
	"io"
	"os"
)

// IO holds the streams a command reads and writes.
type IO struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
}

// DefaultIO returns the process streams.
func DefaultIO() *IO {
	return &IO{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin}
}

type ioKey struct{}

// WithIO stores streams in ctx.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO returns the streams in ctx, or the process streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}

// ReadInput reads a request body argument: "-" reads In, "@path" reads a
// file and anything else is returned as is.
func (s *IO) ReadInput(arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(s.In)
	case len(arg) > 1 && arg[0] == '@':
		return os.ReadFile(arg[1:])
	default:
		return []byte(arg), nil
	}
}
