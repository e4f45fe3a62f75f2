// Package intake validates testimonial submissions before anything is stored.
package intake

import (
	"errors"
	"strings"
)

// ValidationError is a client error: the submission can be fixed and resent.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
