package mission

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mission id does not exist.
var ErrNotFound = errors.New("mission not found")

// ErrFeatureDisabled is returned when an operation is blocked by configuration.
var ErrFeatureDisabled = errors.New("missions feature is disabled")

// ValidationError is a rejected input with the offending field path.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid mission: " + e.Reason
	}
	return fmt.Sprintf("invalid mission: %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
