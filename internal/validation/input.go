package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// MaxBodySize caps request bodies read from files or stdin.
const MaxBodySize = 1 << 20

// ValidateEmailFormat checks an email address. Empty is allowed.
func ValidateEmailFormat(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// ValidateBodySize rejects bodies larger than MaxBodySize.
func ValidateBodySize(body []byte) error {
	if len(body) > MaxBodySize {
		return fmt.Errorf("request body exceeds maximum size of %d bytes (got %d)", MaxBodySize, len(body))
	}
	return nil
}

// ParseID parses a positive Greenhouse ID. A leading "#" is ignored.
func ParseID(s, fieldName string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a number", fieldName, s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", fieldName)
	}
	return id, nil
}
