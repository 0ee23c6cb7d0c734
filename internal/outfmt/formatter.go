package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formatter writes command results in the mode carried by its context.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	errOut    io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter returns a Formatter writing to out, with notices on errOut.
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		errOut:    errOut,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data in a structured mode. It writes nothing in Text mode;
// callers render tables themselves.
func (f *Formatter) Output(data any) error {
	switch ModeFromContext(f.ctx) {
	case JSON:
		return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), IsCompact(f.ctx))
	case JSONL:
		return WriteJSONLines(f.out, data, GetQuery(f.ctx))
	case CSV:
		return WriteCSV(f.out, data)
	}
	return nil
}

// StartTable writes the header row and reports whether the mode is Text.
func (f *Formatter) StartTable(headers []string) bool {
	if IsStructured(f.ctx) {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes one table row.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}

// Empty writes a no-results notice to stderr.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
