// Package dryrun previews write requests, such as application submissions
// and Harvest mutations, without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type contextKey struct{}

// WithDryRun stores the dry-run flag in ctx.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether dry-run mode is on.
func IsEnabled(ctx context.Context) bool {
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}

// Detail is one labelled line of a preview.
type Detail struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Preview describes a request that would have been sent.
type Preview struct {
	Method   string   `json:"method"`
	URL      string   `json:"url"`
	Summary  string   `json:"summary,omitempty"`
	Headers  []Detail `json:"headers,omitempty"`
	Parts    []Detail `json:"parts,omitempty"`
	Body     string   `json:"body,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	DryRun   bool     `json:"dry_run"`
}

// NewPreview starts a preview of method against url.
func NewPreview(method, url string) *Preview {
	return &Preview{Method: strings.ToUpper(method), URL: url, DryRun: true}
}

// AddHeader records a request header.
func (p *Preview) AddHeader(name, value string) *Preview {
	p.Headers = append(p.Headers, Detail{Name: name, Value: value})
	return p
}

// AddPart records one multipart form part.
func (p *Preview) AddPart(name, value string) *Preview {
	p.Parts = append(p.Parts, Detail{Name: name, Value: value})
	return p
}

// Warn adds a warning line.
func (p *Preview) Warn(format string, args ...any) *Preview {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
	return p
}

// Write renders the preview for a terminal.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	if p.Summary != "" {
		_, _ = fmt.Fprintf(w, "%s\n", p.Summary)
	}
	writeDetails(w, "Headers", p.Headers)
	writeDetails(w, "Form parts", p.Parts)
	if p.Body != "" {
		_, _ = fmt.Fprintf(w, "Body:\n  %s\n", p.Body)
	}
	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}
	_, _ = fmt.Fprintln(w, "No request sent (dry-run mode)")
}

func writeDetails(w io.Writer, title string, details []Detail) {
	if len(details) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s:\n", title)
	for _, d := range details {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", d.Name, d.Value)
	}
}
