package harvest

import (
	"errors"
	"fmt"
)

// InvalidOperationError reports an operation name or parameter set that cannot
// be mapped onto a Harvest endpoint.
type InvalidOperationError struct {
	Operation string
	Reason    string
}

func (e *InvalidOperationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid harvest operation %q", e.Operation)
	}
	return fmt.Sprintf("invalid harvest operation %q: %s", e.Operation, e.Reason)
}

// IsInvalidOperation reports whether err is an *InvalidOperationError.
func IsInvalidOperation(err error) bool {
	var e *InvalidOperationError
	return errors.As(err, &e)
}

func invalid(op, format string, args ...any) error {
	return &InvalidOperationError{Operation: op, Reason: fmt.Sprintf(format, args...)}
}
