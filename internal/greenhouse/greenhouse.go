// Package greenhouse builds the Job Board, Application and Harvest services
// from one set of credentials.
package greenhouse

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/greenhouse/greenhouse-cli/internal/application"
	"github.com/greenhouse/greenhouse-cli/internal/cache"
	"github.com/greenhouse/greenhouse-cli/internal/harvest"
	"github.com/greenhouse/greenhouse-cli/internal/jobboard"
)

var (
	ErrMissingBoardToken    = errors.New("job board token is required")
	ErrMissingHarvestAPIKey = errors.New("harvest API key is required")
)

// URLs overrides the API roots; empty fields keep the defaults.
type URLs struct {
	JobBoard    string `json:"job_board,omitempty"`
	Application string `json:"application,omitempty"`
	Harvest     string `json:"harvest,omitempty"`
}

// Options holds credentials and transport settings shared by every service.
type Options struct {
	BoardToken        string
	ApplicationAPIKey string
	HarvestAPIKey     string
	HarvestVersion    string
	OnBehalfOf        string
	URLs              URLs
	Timeout           time.Duration
	UserAgent         string
	// Cache holds required-field schemas between application submissions.
	Cache cache.Cache
	// OpenCache builds the cache the first time Applications needs one. It
	// is ignored when Cache is set.
	OpenCache func() cache.Cache
}

// Client hands out services configured from Options.
type Client struct {
	opts Options

	cacheOnce sync.Once
	opened    cache.Cache
}

// New returns a Client. No credentials are checked until a service is requested.
func New(opts Options) *Client {
	return &Client{opts: opts}
}

// Options returns the options the client was built with.
func (c *Client) Options() Options {
	return c.opts
}

// JobBoard returns the public Job Board service for the configured board.
func (c *Client) JobBoard() (*jobboard.Service, error) {
	if c.opts.BoardToken == "" {
		return nil, ErrMissingBoardToken
	}
	return jobboard.NewService(c.opts.BoardToken,
		jobboard.WithBaseURL(c.opts.URLs.JobBoard),
		jobboard.WithTimeout(c.opts.Timeout),
		jobboard.WithUserAgent(c.opts.UserAgent),
	), nil
}

// Applications returns the Application service. Required questions are
// looked up on the configured job board. The API key is checked on submit.
func (c *Client) Applications(opts ...application.Option) (*application.Service, error) {
	board, err := c.JobBoard()
	if err != nil {
		return nil, err
	}
	base := []application.Option{
		application.WithBaseURL(c.opts.URLs.Application),
		application.WithTimeout(c.opts.Timeout),
		application.WithUserAgent(c.opts.UserAgent),
	}
	if cc := c.cache(); cc != nil {
		base = append(base, application.WithCache(cc))
	}
	return application.NewService(c.opts.ApplicationAPIKey, board, append(base, opts...)...), nil
}

func (c *Client) cache() cache.Cache {
	if c.opts.Cache != nil {
		return c.opts.Cache
	}
	c.cacheOnce.Do(func() {
		if c.opts.OpenCache != nil {
			c.opened = c.opts.OpenCache()
		}
	})
	return c.opened
}

// Close releases a cache opened through OpenCache. A Cache passed in
// Options belongs to the caller and is left open.
func (c *Client) Close() error {
	if closer, ok := c.opened.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Harvest returns a Harvest service for version, or the configured version
// when version is empty.
func (c *Client) Harvest(version string) (*harvest.Service, error) {
	if c.opts.HarvestAPIKey == "" {
		return nil, ErrMissingHarvestAPIKey
	}
	if version == "" {
		version = c.opts.HarvestVersion
	}
	return harvest.NewService(harvest.Config{
		APIKey:     c.opts.HarvestAPIKey,
		Version:    version,
		BaseURL:    c.opts.URLs.Harvest,
		OnBehalfOf: c.opts.OnBehalfOf,
		Timeout:    c.opts.Timeout,
		UserAgent:  c.opts.UserAgent,
	}), nil
}

// Embed returns the HTML snippet renderer for the configured board.
func (c *Client) Embed() (*jobboard.Embed, error) {
	if c.opts.BoardToken == "" {
		return nil, ErrMissingBoardToken
	}
	return jobboard.NewEmbed(c.opts.BoardToken), nil
}
