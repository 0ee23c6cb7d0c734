// Package api is the HTTP transport shared by the Greenhouse Job Board,
// Application and Harvest services.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/greenhouse/greenhouse-cli/internal/debug"
)

const DefaultTimeout = 30 * time.Second

// Client sends requests relative to BaseURL. When APIKey is set every request
// carries a basic Authorization header.
type Client struct {
	BaseURL   string
	APIKey    string
	HTTP      *http.Client
	UserAgent string

	mu            sync.Mutex
	lastLinks     Links
	lastRateLimit *RateLimitInfo
}

// New creates a client for baseURL. apiKey may be empty for public endpoints.
func New(baseURL, apiKey string) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}
}

// SendOptions carries the optional parts of a request.
type SendOptions struct {
	Headers     map[string]string
	Body        []byte
	ContentType string
}

// Response is a successful (2xx) HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Links      Links
	RateLimit  *RateLimitInfo
}

// Header returns the first value of the named response header.
func (r *Response) Header(name string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

// URL joins path onto BaseURL. Absolute URLs, such as pagination links, are
// returned unchanged and an empty path yields BaseURL itself.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return path
	}
	if path == "" {
		return c.BaseURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Send performs a request and returns the response, or a *ResponseError for
// any non-2xx status. Requests are never retried.
func (c *Client) Send(ctx context.Context, method, path string, opts SendOptions) (*Response, error) {
	url := c.URL(path)
	var bodyReader io.Reader
	if len(opts.Body) > 0 {
		bodyReader = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	for name, value := range opts.Headers {
		req.Header.Set(name, value)
	}
	if c.APIKey != "" {
		auth, err := BasicAuth(c.APIKey)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", auth)
	}

	if debug.IsEnabled(ctx) {
		slog.Debug("sending request", "method", req.Method, "url", url, "headers", debug.RedactHeaders(req.Header))
	}
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", req.Method, "url", url, "error", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", req.Method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	}

	links := LinksFromHeader(resp.Header)
	rateLimit := parseRateLimitInfo(resp.Header, time.Now())
	c.mu.Lock()
	c.lastLinks = links
	c.lastRateLimit = rateLimit
	c.mu.Unlock()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Message:    summarizeErrorBody(string(respBody)),
			RequestID:  requestIDFromHeader(resp.Header),
			Method:     req.Method,
			URL:        url,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		Links:      links,
		RateLimit:  rateLimit,
	}, nil
}

// Get performs a GET request and returns the raw body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.Send(ctx, http.MethodGet, path, SendOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetJSON performs a GET request and decodes the JSON body into result.
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	resp, err := c.Send(ctx, http.MethodGet, path, SendOptions{})
	if err != nil {
		return err
	}
	return resp.Decode(result)
}

// PostMultipart posts params as a multipart/form-data body in their given order.
func (c *Client) PostMultipart(ctx context.Context, path string, params []PostParam, headers map[string]string) (*Response, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range params {
		if !p.IsFile() {
			if err := writer.WriteField(p.Name, p.Contents); err != nil {
				return nil, fmt.Errorf("failed to write field %s: %w", p.Name, err)
			}
			continue
		}
		part, err := writer.CreateFormFile(p.Name, p.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", p.Filename, err)
		}
		if _, err := io.Copy(part, p.File); err != nil {
			return nil, fmt.Errorf("failed to write file content %s: %w", p.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return c.Send(ctx, http.MethodPost, path, SendOptions{
		Headers:     headers,
		Body:        body.Bytes(),
		ContentType: writer.FormDataContentType(),
	})
}

// LastLinks returns the pagination links of the most recent response.
func (c *Client) LastLinks() Links {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLinks
}
