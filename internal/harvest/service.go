package harvest

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/greenhouse/greenhouse-cli/internal/api"
)

const (
	DefaultBaseURL = "https://harvest.greenhouse.io/"
	DefaultVersion = "v1"
)

// Config configures a Harvest Service.
type Config struct {
	APIKey string
	// Version is the API version path segment; defaults to DefaultVersion.
	Version string
	// BaseURL overrides DefaultBaseURL. The version is appended to it.
	BaseURL string
	// OnBehalfOf is sent as the On-Behalf-Of header on writes unless the
	// caller supplies one.
	OnBehalfOf string
	Timeout    time.Duration
	UserAgent  string
	Routes     Routes
}

// Service resolves Harvest operations and sends them.
type Service struct {
	client     api.Requester
	resolver   *Resolver
	onBehalfOf string

	mu   sync.Mutex
	last *Request
}

// NewService builds a Service backed by an api.Client.
func NewService(cfg Config) *Service {
	client := api.New(BaseURL(cfg.BaseURL, cfg.Version), cfg.APIKey)
	if cfg.Timeout > 0 {
		client.HTTP.Timeout = cfg.Timeout
	}
	client.UserAgent = cfg.UserAgent
	return NewServiceWithRequester(client, cfg)
}

// NewServiceWithRequester builds a Service on an existing transport.
func NewServiceWithRequester(client api.Requester, cfg Config) *Service {
	routes := cfg.Routes
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Service{
		client:     client,
		resolver:   NewResolver(routes),
		onBehalfOf: cfg.OnBehalfOf,
	}
}

// BaseURL returns the versioned Harvest root, e.g. "https://harvest.greenhouse.io/v1/".
func BaseURL(base, version string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	if version == "" {
		version = DefaultVersion
	}
	return strings.TrimRight(base, "/") + "/" + strings.Trim(version, "/") + "/"
}

// Resolver returns the route table used by the service.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Resolve builds the request for operation without sending it.
func (s *Service) Resolve(operation string, params Params) (*Request, error) {
	req, err := s.resolver.Resolve(operation, params)
	if err != nil {
		return nil, err
	}
	if s.onBehalfOf != "" && req.Method != "get" && !hasHeader(req.Headers, "On-Behalf-Of") {
		req.Headers["On-Behalf-Of"] = s.onBehalfOf
	}
	return req, nil
}

// Call resolves operation and sends it.
func (s *Service) Call(ctx context.Context, operation string, params Params) (*api.Response, error) {
	req, err := s.Resolve(operation, params)
	if err != nil {
		return nil, err
	}
	return s.Do(ctx, req)
}

// Do sends an already resolved request.
func (s *Service) Do(ctx context.Context, req *Request) (*api.Response, error) {
	s.mu.Lock()
	s.last = req
	s.mu.Unlock()

	opts := api.SendOptions{Headers: req.Headers}
	if req.Body != "" {
		opts.Body = []byte(req.Body)
		opts.ContentType = "application/json"
	}
	return s.client.Send(ctx, req.HTTPMethod(), req.URL(), opts)
}

// Follow fetches an absolute pagination URL, such as NextLink.
func (s *Service) Follow(ctx context.Context, link string) (*api.Response, error) {
	return s.client.Send(ctx, http.MethodGet, link, api.SendOptions{})
}

// LastRequest returns the most recently sent request, or nil.
func (s *Service) LastRequest() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// NextLink returns the "next" pagination URL of the last response.
func (s *Service) NextLink() string { return s.client.LastLinks().Next }

// PrevLink returns the "prev" pagination URL of the last response.
func (s *Service) PrevLink() string { return s.client.LastLinks().Prev }

// LastLink returns the "last" pagination URL of the last response.
func (s *Service) LastLink() string { return s.client.LastLinks().Last }

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
