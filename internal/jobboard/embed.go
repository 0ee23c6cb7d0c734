package jobboard

import (
	"fmt"
	"html"
)

const (
	embedScriptURL = "https://app.greenhouse.io/embed/job_board/js?for="
	hostedBoardURL = "http://boards.greenhouse.io/"

	DefaultBoardLinkText = "Open Positions"
	DefaultApplyLinkText = "Apply to this job"
)

// Embed renders the HTML snippets that place a hosted job board on a page.
type Embed struct {
	token string
}

// NewEmbed returns snippets for boardToken.
func NewEmbed(boardToken string) *Embed {
	return &Embed{token: boardToken}
}

// JobBoardTag is the container the embed script renders into.
func (e *Embed) JobBoardTag() string {
	return `<div id="grnhse_app"></div>`
}

// ScriptTag loads the embed script for the board.
func (e *Embed) ScriptTag() string {
	return "<script src='" + embedScriptURL + e.attr() + "'></script>"
}

// EmbedJobBoard is the container followed by the script, newline separated.
func (e *Embed) EmbedJobBoard() string {
	return e.JobBoardTag() + "\n" + e.ScriptTag()
}

// LinkToJobBoard links to the hosted board. An empty text uses DefaultBoardLinkText.
func (e *Embed) LinkToJobBoard(text string) string {
	if text == "" {
		text = DefaultBoardLinkText
	}
	return fmt.Sprintf("<a href='%s%s'>%s</a>", hostedBoardURL, e.attr(), text)
}

// LinkToJobApplication links to a job's hosted application form. An empty
// text uses DefaultApplyLinkText.
func (e *Embed) LinkToJobApplication(jobID, text string) string {
	if text == "" {
		text = DefaultApplyLinkText
	}
	return fmt.Sprintf("<a href='%s%s/jobs/%s'>%s</a>", hostedBoardURL, e.attr(), html.EscapeString(jobID), text)
}

func (e *Embed) attr() string {
	return html.EscapeString(e.token)
}
