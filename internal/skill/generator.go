// Package skill renders a board-specific skill file for coding agents: the
// board's departments, offices and open jobs plus ready-to-run commands.
package skill

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/greenhouse/greenhouse-cli/internal/jobboard"
)

const skillTemplate = `---
name: greenhouse-{{.Token}}
description: Job board context for {{.Name}} on Greenhouse
---

# {{.Name}} Job Board

Auto-generated skill with board-specific context.

## Departments

| ID | Name | Open jobs |
|----|------|-----------|
{{- range .Departments}}
| {{.ID}} | {{.Name}} | {{len .Jobs}} |
{{- end}}

## Offices

| ID | Name | Location |
|----|------|----------|
{{- range .Offices}}
| {{.ID}} | {{.Name}} | {{.Location}} |
{{- end}}

## Jobs

| ID | Title | Location |
|----|-------|----------|
{{- range .Jobs}}
| {{.ID}} | {{.Title}} | {{.Location.Name}} |
{{- end}}

## Quick Commands

` + "```" + `bash
# List open jobs
greenhouse board jobs --board {{.Token}}

# Show the required questions of a job
greenhouse requirements {{if .FirstJobID}}{{.FirstJobID}}{{else}}<job-id>{{end}} --board {{.Token}}

# Preview an application without sending it
greenhouse apply {{if .FirstJobID}}{{.FirstJobID}}{{else}}<job-id>{{end}} --board {{.Token}} -f first_name=Ada -f last_name=Lovelace -f email=ada@example.com --dry-run
` + "```" + `
`

// Board is the subset of the Job Board service the generator reads.
type Board interface {
	Token() string
	FetchBoard(ctx context.Context) (*jobboard.Board, error)
	ListJobs(ctx context.Context, content bool) ([]jobboard.Job, error)
	ListDepartments(ctx context.Context) ([]jobboard.Department, error)
	ListOffices(ctx context.Context) ([]jobboard.Office, error)
}

var _ Board = (*jobboard.Service)(nil)

// BoardData holds the values rendered into the skill file.
type BoardData struct {
	Token       string
	Name        string
	Jobs        []jobboard.Job
	Departments []jobboard.Department
	Offices     []jobboard.Office
	FirstJobID  int64
}

// Collect fetches the board summary and its listings. Only the board summary
// is required; missing listings render as empty tables.
func Collect(ctx context.Context, board Board) (*BoardData, error) {
	summary, err := board.FetchBoard(ctx)
	if err != nil {
		return nil, err
	}
	data := &BoardData{Token: board.Token(), Name: strings.TrimSpace(summary.Name)}
	if data.Name == "" {
		data.Name = data.Token
	}
	if jobs, err := board.ListJobs(ctx, false); err == nil {
		data.Jobs = jobs
		if len(jobs) > 0 {
			data.FirstJobID = jobs[0].ID
		}
	}
	if departments, err := board.ListDepartments(ctx); err == nil {
		data.Departments = departments
	}
	if offices, err := board.ListOffices(ctx); err == nil {
		data.Offices = offices
	}
	return data, nil
}

// Render writes the skill file for data to w.
func Render(w io.Writer, data *BoardData) error {
	tmpl, err := template.New("skill").Parse(skillTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to write skill: %w", err)
	}
	return nil
}

// GenerateBoardSkill collects board data and writes it to SkillPath(token).
// It returns the path written.
func GenerateBoardSkill(ctx context.Context, board Board) (string, error) {
	data, err := Collect(ctx, board)
	if err != nil {
		return "", err
	}
	path, err := SkillPath(data.Token)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create skill directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create skill file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := Render(f, data); err != nil {
		return "", err
	}
	return path, nil
}

// SkillPath returns where the skill for token is stored.
func SkillPath(token string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".claude", "skills", "greenhouse-"+token, "SKILL.md"), nil
}
