// Package jobboard reads a company's public Job Board API and renders the
// embed snippets for its hosted board.
package jobboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/resolve"
)

// DefaultBaseURL is the Job Board API root; the board token and "/embed/" follow it.
const DefaultBaseURL = "https://boards-api.greenhouse.io/v1/boards/"

// BoardURL returns the embed API root for token under base.
func BoardURL(base, token string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(token) + "/embed/"
}

// JobOptions selects the optional sections of a single job.
type JobOptions struct {
	Questions       bool
	PayTransparency bool
}

// Service reads one job board.
type Service struct {
	token  string
	client api.Requester
}

type options struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	requester api.Requester
}

// Option configures NewService.
type Option func(*options)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(base string) Option {
	return func(o *options) { o.baseURL = base }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithRequester replaces the HTTP transport.
func WithRequester(r api.Requester) Option {
	return func(o *options) { o.requester = r }
}

// NewService returns a Service for boardToken. Job Board reads need no API key.
func NewService(boardToken string, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	client := o.requester
	if client == nil {
		c := api.New(BoardURL(o.baseURL, boardToken), "")
		if o.timeout > 0 {
			c.HTTP.Timeout = o.timeout
		}
		c.UserAgent = o.userAgent
		client = c
	}
	return &Service{token: boardToken, client: client}
}

// Token returns the board token.
func (s *Service) Token() string { return s.token }

func (s *Service) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.client.Send(ctx, "GET", path, api.SendOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetBoard returns the raw board JSON.
func (s *Service) GetBoard(ctx context.Context) ([]byte, error) {
	return s.get(ctx, "board")
}

// GetOffices returns the raw offices JSON.
func (s *Service) GetOffices(ctx context.Context) ([]byte, error) {
	return s.get(ctx, "offices")
}

// GetOffice returns the raw JSON of one office.
func (s *Service) GetOffice(ctx context.Context, id string) ([]byte, error) {
	return s.get(ctx, "office?id="+url.QueryEscape(id))
}

// GetDepartments returns the raw departments JSON.
func (s *Service) GetDepartments(ctx context.Context) ([]byte, error) {
	return s.get(ctx, "departments")
}

// GetDepartment returns the raw JSON of one department.
func (s *Service) GetDepartment(ctx context.Context, id string) ([]byte, error) {
	return s.get(ctx, "department?id="+url.QueryEscape(id))
}

// GetJobs returns the raw jobs JSON; content includes each job's description.
func (s *Service) GetJobs(ctx context.Context, content bool) ([]byte, error) {
	return s.get(ctx, JobsPath(content))
}

// GetJob returns the raw JSON of one job.
func (s *Service) GetJob(ctx context.Context, id string, opts JobOptions) ([]byte, error) {
	return s.get(ctx, JobPath(id, opts))
}

// JobsPath is the relative path of the jobs listing.
func JobsPath(content bool) string {
	if content {
		return "jobs?content=true"
	}
	return "jobs"
}

// JobPath is the relative path of a single job.
func JobPath(id string, opts JobOptions) string {
	path := "job?id=" + url.QueryEscape(id)
	if opts.Questions {
		path += "&questions=true"
	}
	if opts.PayTransparency {
		path += "&pay_transparency=true"
	}
	return path
}

// FetchBoard decodes the board summary.
func (s *Service) FetchBoard(ctx context.Context) (*Board, error) {
	var board Board
	if err := s.decode(ctx, "board", &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// ListJobs decodes the jobs listing.
func (s *Service) ListJobs(ctx context.Context, content bool) ([]Job, error) {
	var resp jobsResponse
	if err := s.decode(ctx, JobsPath(content), &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// FetchJob decodes one job.
func (s *Service) FetchJob(ctx context.Context, id string, opts JobOptions) (*Job, error) {
	var job Job
	if err := s.decode(ctx, JobPath(id, opts), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListDepartments decodes the departments listing.
func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	var resp departmentsResponse
	if err := s.decode(ctx, "departments", &resp); err != nil {
		return nil, err
	}
	return resp.Departments, nil
}

// ListOffices decodes the offices listing.
func (s *Service) ListOffices(ctx context.Context) ([]Office, error) {
	var resp officesResponse
	if err := s.decode(ctx, "offices", &resp); err != nil {
		return nil, err
	}
	return resp.Offices, nil
}

// FindJob returns the open job whose title best matches query.
func (s *Service) FindJob(ctx context.Context, query string) (*Job, error) {
	jobs, err := s.ListJobs(ctx, false)
	if err != nil {
		return nil, err
	}
	named := make([]resolve.Named, len(jobs))
	for i, j := range jobs {
		named[i] = resolve.Named{ID: j.ID, Name: j.Title}
	}
	match, err := resolve.Best(query, named)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == match.ID {
			return &jobs[i], nil
		}
	}
	return nil, &resolve.NoMatchError{Query: query}
}

// SearchJobs returns up to limit ranked job title matches.
func (s *Service) SearchJobs(ctx context.Context, query string, limit int) ([]resolve.Match, error) {
	jobs, err := s.ListJobs(ctx, false)
	if err != nil {
		return nil, err
	}
	named := make([]resolve.Named, len(jobs))
	for i, j := range jobs {
		named[i] = resolve.Named{ID: j.ID, Name: j.Title}
	}
	return resolve.All(query, named, limit), nil
}

func (s *Service) decode(ctx context.Context, path string, v any) error {
	data, err := s.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
