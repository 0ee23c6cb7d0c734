// Package harvest maps Harvest operation names such as "getScorecardsForApplication"
// onto HTTP requests against the Greenhouse Harvest API.
//
// An operation is a lower-case verb (get, post, patch, put, delete) followed by up to
// three camel-case words joined by "For". Words become plural, snake_case path
// segments: "getScorecardsForApplication" with id 12345 resolves to
// "applications/12345/scorecards". Endpoints that do not follow the pattern are
// listed in DefaultRoutes.
package harvest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	operationPattern = regexp.MustCompile(`(?i)^(get|post|patch|put|delete)(\w+)$`)
	camelLowerUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	camelUpperWord   = regexp.MustCompile(`([^_])([A-Z][a-z])`)
)

// Request describes one Harvest HTTP call. Headers never include Authorization;
// the transport injects it at send time.
type Request struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   Params            `json:"-"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// URL returns the path with the query string appended.
func (r *Request) URL() string {
	return r.Path + QueryString(r.Query)
}

// HTTPMethod returns the upper-case HTTP method.
func (r *Request) HTTPMethod() string {
	return strings.ToUpper(r.Method)
}

// MarshalJSON renders the descriptor with its full URL, for dry runs and
// "harvest resolve" output.
func (r *Request) MarshalJSON() ([]byte, error) {
	type descriptor struct {
		Method  string            `json:"method"`
		URL     string            `json:"url"`
		Headers map[string]string `json:"headers"`
		Body    string            `json:"body"`
	}
	return json.Marshal(descriptor{
		Method:  r.Method,
		URL:     r.URL(),
		Headers: r.Headers,
		Body:    r.Body,
	})
}

// Resolver turns operation names into requests. The zero value has no named
// routes; use NewResolver or the package-level Resolve.
type Resolver struct {
	mu     sync.RWMutex
	routes Routes
}

// NewResolver returns a Resolver seeded with routes. The table is copied.
func NewResolver(routes Routes) *Resolver {
	r := &Resolver{routes: make(Routes, len(routes))}
	for op, route := range routes {
		r.routes[op] = route
	}
	return r
}

var defaultResolver = NewResolver(DefaultRoutes())

// Resolve maps operation and params using DefaultRoutes.
func Resolve(operation string, params Params) (*Request, error) {
	return defaultResolver.Resolve(operation, params)
}

// Register adds or replaces the route for operation.
func (r *Resolver) Register(operation string, route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.routes == nil {
		r.routes = Routes{}
	}
	r.routes[operation] = route
}

// Route returns the named route for operation, if one is registered.
func (r *Resolver) Route(operation string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[operation]
	return route, ok
}

// Operations lists the operations with named routes, sorted.
func (r *Resolver) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make([]string, 0, len(r.routes))
	for op := range r.routes {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Resolve maps operation and params onto a Request.
func (r *Resolver) Resolve(operation string, params Params) (*Request, error) {
	m := operationPattern.FindStringSubmatch(operation)
	if m == nil {
		return nil, invalid(operation, "expected get, post, patch, put or delete followed by a resource name")
	}
	method := strings.ToLower(m[1])
	remainder := m[2]

	headers, err := headerValue(operation, params)
	if err != nil {
		return nil, err
	}
	body, err := bodyValue(operation, params)
	if err != nil {
		return nil, err
	}

	id, hasID := idValue(params, KeyID)
	secondID, hasSecondID := idValue(params, KeySecondID)

	var path string
	if route, ok := r.Route(method + remainder); ok {
		if !hasID && route.needsID() {
			return nil, invalid(operation, "must include an id parameter")
		}
		path = route.expand(id, hasID)
	} else {
		path, err = derivePath(operation, remainder, id, hasID)
		if err != nil {
			return nil, err
		}
		if hasID && hasSecondID {
			path += "/" + secondID
		}
	}

	return &Request{
		Method:  method,
		Path:    path,
		Query:   params.Without(KeyID, KeySecondID, KeyHeaders, KeyBody),
		Headers: headers,
		Body:    body,
	}, nil
}

func derivePath(operation, remainder, id string, hasID bool) (string, error) {
	segments := splitObjects(remainder)
	for _, seg := range segments {
		if seg == "" {
			return "", invalid(operation, "empty resource name")
		}
	}

	switch len(segments) {
	case 1:
		path := resourceName(segments[0])
		if hasID {
			path += "/" + id
		}
		return path, nil
	case 2:
		if !hasID {
			return "", invalid(operation, "must include an id parameter")
		}
		return resourceName(segments[1]) + "/" + id + "/" + resourceName(segments[0]), nil
	case 3:
		if !hasID {
			return "", invalid(operation, "must include an id parameter")
		}
		return resourceName(segments[2]) + "/" + id + "/" + resourceName(segments[0]) + "/" + resourceName(segments[1]), nil
	default:
		return "", invalid(operation, "too many \"For\" clauses")
	}
}

// splitObjects splits on "For" where it starts a new camel-case word, so
// "PermissionForJobForUser" yields three words but "Forms" stays whole. A
// leading, trailing or doubled "For" leaves an empty word.
func splitObjects(s string) []string {
	var parts []string
	start := 0
	for i := 0; i+3 <= len(s); i++ {
		if s[i:i+3] != "For" {
			continue
		}
		if i+3 < len(s) {
			if next := s[i+3]; next < 'A' || next > 'Z' {
				continue
			}
		}
		parts = append(parts, s[start:i])
		start = i + 3
		i += 2
	}
	return append(parts, s[start:])
}

// resourceName converts a camel-case word to its plural snake_case path segment.
func resourceName(word string) string {
	snake := camelLowerUpper.ReplaceAllString(word, "${1}_${2}")
	snake = strings.ToLower(camelUpperWord.ReplaceAllString(snake, "${1}_${2}"))
	if strings.HasSuffix(snake, "s") {
		return snake
	}
	return snake + "s"
}

func headerValue(operation string, params Params) (map[string]string, error) {
	headers := map[string]string{}
	v, ok := params.Get(KeyHeaders)
	if !ok || v == nil {
		return headers, nil
	}
	switch h := v.(type) {
	case map[string]string:
		for k, val := range h {
			headers[k] = val
		}
	case http.Header:
		for k, vals := range h {
			headers[k] = strings.Join(vals, ", ")
		}
	case map[string]any:
		for k, val := range h {
			headers[k] = formatValue(val)
		}
	default:
		return nil, invalid(operation, "headers must be a map, got %T", v)
	}
	return headers, nil
}

func bodyValue(operation string, params Params) (string, error) {
	v, ok := params.Get(KeyBody)
	if !ok || v == nil {
		return "", nil
	}
	switch b := v.(type) {
	case string:
		return b, nil
	case []byte:
		return string(b), nil
	case json.RawMessage:
		return string(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return "", fmt.Errorf("harvest: encode body for %s: %w", operation, err)
		}
		return string(data), nil
	}
}
