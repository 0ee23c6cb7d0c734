package api

import "context"

// Requester is the transport surface the Greenhouse services depend on.
// *Client implements it; tests may substitute their own.
type Requester interface {
	// Send performs method against path, relative to the requester's base URL.
	Send(ctx context.Context, method, path string, opts SendOptions) (*Response, error)

	// PostMultipart posts params as multipart/form-data in their given order.
	PostMultipart(ctx context.Context, path string, params []PostParam, headers map[string]string) (*Response, error)

	// LastLinks returns the pagination links of the most recent response.
	LastLinks() Links
}

var _ Requester = (*Client)(nil)
