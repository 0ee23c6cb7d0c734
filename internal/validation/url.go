// Package validation checks user-supplied API URLs and submission values
// before any request is made.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateAPIURL checks a base URL override. It must be http(s) with a host
// and no embedded credentials. Plain http is accepted only for loopback hosts,
// and cloud metadata addresses are always rejected.
func ValidateAPIURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if u.User != nil {
		return fmt.Errorf("URL must not contain credentials; use 'greenhouse auth login' instead")
	}
	if isCloudMetadata(host) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if u.Scheme == "http" && !isLoopback(host) {
		return fmt.Errorf("plain http is only allowed for localhost, use https for %s", host)
	}
	return nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isCloudMetadata(host string) bool {
	switch strings.ToLower(host) {
	case "169.254.169.254", "fd00:ec2::254", "metadata.google.internal", "metadata":
		return true
	}
	return false
}
