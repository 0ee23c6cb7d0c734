package api

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMissingAPIKey is returned when an authenticated call is made without a key.
var ErrMissingAPIKey = errors.New("API key is required")

// BasicAuth returns the Authorization header value Greenhouse expects: the key
// as the basic-auth user name with an empty password. A trailing ":" already
// present on the key is not doubled.
func BasicAuth(apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	user := strings.TrimRight(apiKey, ":")
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":")), nil
}
