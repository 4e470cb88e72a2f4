package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced by the core. The HTTP layer maps these onto status
// codes; nothing here is fatal at the process level.
var (
	// ErrNotFound - the target does not exist or is invisible under the
	// current soft-delete visibility rules.
	ErrNotFound = errors.New("not found")

	// ErrConflict - a uniqueness violation, e.g. a duplicate active username.
	ErrConflict = errors.New("already exists")

	// ErrAuth is the single uniform authentication failure. The message is
	// deliberately identical whether the token was missing, malformed,
	// expired, or referenced an unknown subject - no failure-mode leakage.
	ErrAuth = errors.New("could not validate credentials")

	// ErrPermission - authenticated but insufficient privilege.
	ErrPermission = errors.New("not enough permissions")
)

// ValidationError reports malformed input (length or blankness violations).
// Always recoverable by the caller correcting input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
