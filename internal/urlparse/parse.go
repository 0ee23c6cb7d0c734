// Package urlparse extracts board tokens and job IDs from Greenhouse job URLs.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// JobRef identifies a job post. BoardToken is empty when the URL does not
// name a board, as with company career pages carrying gh_jid.
type JobRef struct {
	BoardToken string
	JobID      string
}

var (
	// boards.greenhouse.io/{token}/jobs/{id} and job-boards.greenhouse.io/{token}/jobs/{id}
	hostedPattern = regexp.MustCompile(`^/([A-Za-z0-9_-]+)/jobs/(\d+)/?$`)
	// boards-api.greenhouse.io/v1/boards/{token}/jobs/{id}
	apiPattern = regexp.MustCompile(`^/v1/boards/([A-Za-z0-9_-]+)/jobs/(\d+)/?$`)
	idPattern  = regexp.MustCompile(`^\d+$`)
)

// ParseJob accepts a bare job ID or a job URL and returns its reference.
func ParseJob(raw string) (*JobRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("job reference cannot be empty")
	}
	if idPattern.MatchString(raw) {
		return &JobRef{JobID: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid job URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid job reference %q: expected a job ID or an http(s) URL", raw)
	}

	if m := apiPattern.FindStringSubmatch(u.Path); m != nil {
		return &JobRef{BoardToken: m[1], JobID: m[2]}, nil
	}
	if m := hostedPattern.FindStringSubmatch(u.Path); m != nil {
		return &JobRef{BoardToken: m[1], JobID: m[2]}, nil
	}
	if id := u.Query().Get("gh_jid"); idPattern.MatchString(id) {
		return &JobRef{BoardToken: u.Query().Get("for"), JobID: id}, nil
	}
	return nil, fmt.Errorf("no Greenhouse job found in %q", raw)
}
