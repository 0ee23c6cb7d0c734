// Package application submits candidate applications to the Greenhouse
// Application API after checking them against the job's required questions.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/cache"
	"github.com/greenhouse/greenhouse-cli/internal/debug"
	"github.com/greenhouse/greenhouse-cli/internal/jobboard"
)

// DefaultBaseURL is the Application API endpoint. Submissions post to it directly.
const DefaultBaseURL = "https://api.greenhouse.io/v1/applications/"

// ErrMissingJobID is returned when a submission has no "id" field.
var ErrMissingJobID = errors.New(`submission has no job "id" field`)

// JobLookup fetches raw Job Board job JSON. *jobboard.Service implements it.
type JobLookup interface {
	GetJob(ctx context.Context, id string, opts jobboard.JobOptions) ([]byte, error)
}

var _ JobLookup = (*jobboard.Service)(nil)

// Service validates and posts applications.
type Service struct {
	apiKey         string
	jobs           JobLookup
	client         api.Requester
	cache          cache.Cache
	skipValidation bool
}

type options struct {
	baseURL        string
	timeout        time.Duration
	userAgent      string
	requester      api.Requester
	cache          cache.Cache
	skipValidation bool
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

// WithCache stores derived required-field schemas in c.
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// SkipValidation posts without checking required questions first.
func SkipValidation() Option {
	return func(o *options) { o.skipValidation = true }
}

// NewService returns a Service that authenticates with apiKey and reads
// question schemas through jobs.
func NewService(apiKey string, jobs JobLookup, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	client := o.requester
	if client == nil {
		base := o.baseURL
		if base == "" {
			base = DefaultBaseURL
		}
		// The key travels as an explicit header on submissions only.
		c := api.New(base, "")
		if o.timeout > 0 {
			c.HTTP.Timeout = o.timeout
		}
		c.UserAgent = o.userAgent
		client = c
	}
	return &Service{
		apiKey:         apiKey,
		jobs:           jobs,
		client:         client,
		cache:          o.cache,
		skipValidation: o.skipValidation,
	}
}

// RequiredFields returns the required-question schema of jobID.
func (s *Service) RequiredFields(ctx context.Context, jobID string) (RequiredFields, error) {
	key := "required-fields-" + jobID
	if s.cache != nil {
		var cached RequiredFields
		if s.cache.Get(ctx, key, &cached) {
			if debug.IsEnabled(ctx) {
				slog.Debug("required fields cache hit", "job_id", jobID)
			}
			return cached, nil
		}
	}
	if s.jobs == nil {
		return nil, errors.New("no job lookup configured")
	}

	data, err := s.jobs.GetJob(ctx, jobID, jobboard.JobOptions{Questions: true})
	if err != nil {
		return nil, fmt.Errorf("fetch job %s questions: %w", jobID, err)
	}
	required, err := RequiredFieldsFromJob(data)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, key, required); err != nil {
			slog.Warn("failed to cache required fields", "job_id", jobID, "error", err)
		}
	}
	return required, nil
}

// Validate checks fields against the schema of the job named by its "id" field.
func (s *Service) Validate(ctx context.Context, fields api.Fields) error {
	jobID, err := JobID(fields)
	if err != nil {
		return err
	}
	required, err := s.RequiredFields(ctx, jobID)
	if err != nil {
		return err
	}
	return ValidateRequiredFields(fields, required)
}

// Prepare validates fields, unless validation is skipped, and encodes them
// into multipart parts.
func (s *Service) Prepare(ctx context.Context, fields api.Fields) ([]api.PostParam, error) {
	if !s.skipValidation {
		if err := s.Validate(ctx, fields); err != nil {
			return nil, err
		}
	}
	return api.EncodePostParams(fields)
}

// Submit validates, encodes and posts an application.
func (s *Service) Submit(ctx context.Context, fields api.Fields) (*api.Response, error) {
	auth, err := api.BasicAuth(s.apiKey)
	if err != nil {
		return nil, err
	}
	params, err := s.Prepare(ctx, fields)
	if err != nil {
		return nil, err
	}
	return s.client.PostMultipart(ctx, "", params, map[string]string{"Authorization": auth})
}

// JobID returns the "id" field of a submission as a string.
func JobID(fields api.Fields) (string, error) {
	value, ok := fields.Get("id")
	if !ok || value == nil {
		return "", ErrMissingJobID
	}
	id := fmt.Sprint(value)
	if id == "" {
		return "", ErrMissingJobID
	}
	return id, nil
}
