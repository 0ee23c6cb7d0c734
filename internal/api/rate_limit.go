package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitInfo holds the Harvest rate limit headers of the last response.
type RateLimitInfo struct {
	Limit      *int
	Remaining  *int
	RetryAfter *time.Duration
}

// Meta returns a JSON-ready map for CLI output metadata.
func (r *RateLimitInfo) Meta() map[string]any {
	if r == nil {
		return nil
	}
	meta := map[string]any{}
	if r.Limit != nil {
		meta["limit"] = *r.Limit
	}
	if r.Remaining != nil {
		meta["remaining"] = *r.Remaining
	}
	if r.RetryAfter != nil {
		meta["retry_after_seconds"] = int(r.RetryAfter.Seconds())
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// LastRateLimit returns a copy of the most recent rate limit info seen by the client.
func (c *Client) LastRateLimit() *RateLimitInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRateLimit == nil {
		return nil
	}
	info := *c.lastRateLimit
	if info.Limit != nil {
		v := *info.Limit
		info.Limit = &v
	}
	if info.Remaining != nil {
		v := *info.Remaining
		info.Remaining = &v
	}
	if info.RetryAfter != nil {
		d := *info.RetryAfter
		info.RetryAfter = &d
	}
	return &info
}

func parseRateLimitInfo(h http.Header, now time.Time) *RateLimitInfo {
	if h == nil {
		return nil
	}
	limitVal := firstHeader(h, "X-RateLimit-Limit", "RateLimit-Limit")
	remainingVal := firstHeader(h, "X-RateLimit-Remaining", "RateLimit-Remaining")
	retryVal := firstHeader(h, "Retry-After")
	if limitVal == "" && remainingVal == "" && retryVal == "" {
		return nil
	}

	info := &RateLimitInfo{}
	if v, err := strconv.Atoi(limitVal); err == nil {
		info.Limit = &v
	}
	if v, err := strconv.Atoi(remainingVal); err == nil {
		info.Remaining = &v
	}
	if d, ok := parseRetryAfter(retryVal, now); ok {
		info.RetryAfter = &d
	}
	if info.Limit == nil && info.Remaining == nil && info.RetryAfter == nil {
		return nil
	}
	return info
}

func firstHeader(h http.Header, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(h.Get(key)); value != "" {
			return value
		}
	}
	return ""
}

// parseRetryAfter accepts either delay seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
