package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ResponseError is returned for any non-2xx response. Body keeps the raw
// response; Message is a short summary extracted from it.
type ResponseError struct {
	StatusCode int
	Body       string
	Message    string
	RequestID  string
	Method     string
	URL        string
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
}

// IsResponseError reports whether err wraps a *ResponseError.
func IsResponseError(err error) bool {
	var e *ResponseError
	return errors.As(err, &e)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *ResponseError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsUnsupportedValue reports whether err wraps an *UnsupportedValueError.
func IsUnsupportedValue(err error) bool {
	var e *UnsupportedValueError
	return errors.As(err, &e)
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}

// summarizeErrorBody pulls a readable message out of a Greenhouse error
// payload. Both {"message": ..., "errors": [{"field", "message"}]} and
// {"errors": {"field": ["msg"]}} shapes occur.
func summarizeErrorBody(body string) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Errors  any    `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &errResp); err != nil {
		trimmed := strings.TrimSpace(body)
		if len(trimmed) > 200 {
			trimmed = trimmed[:200] + "..."
		}
		return trimmed
	}

	result := errResp.Message
	if result == "" {
		result = errResp.Error
	}
	if details := formatErrorDetails(errResp.Errors); details != "" {
		if result != "" {
			return result + "\n" + details
		}
		return details
	}
	return result
}

func formatErrorDetails(v any) string {
	var lines []string
	switch errs := v.(type) {
	case []any:
		for _, item := range errs {
			switch e := item.(type) {
			case string:
				lines = append(lines, "  "+e)
			case map[string]any:
				msg, _ := e["message"].(string)
				field, _ := e["field"].(string)
				if field != "" {
					lines = append(lines, fmt.Sprintf("  %s: %s", field, msg))
				} else if msg != "" {
					lines = append(lines, "  "+msg)
				}
			}
		}
	case map[string]any:
		for field, value := range errs {
			switch msg := value.(type) {
			case string:
				lines = append(lines, fmt.Sprintf("  %s: %s", field, msg))
			case []any:
				for _, m := range msg {
					if s, ok := m.(string); ok {
						lines = append(lines, fmt.Sprintf("  %s: %s", field, s))
					}
				}
			}
		}
		sort.Strings(lines)
	}
	return strings.Join(lines, "\n")
}
