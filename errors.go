package warden

import (
	"errors"
	"fmt"
)

// ErrForbidden is the sentinel matched by every denial returned from
// Authorize.
var ErrForbidden = errors.New("warden: forbidden")

// ForbiddenError is the redacted denial returned by Authorize. Its
// message never distinguishes a missing rule, a false predicate, and
// an internal rule failure; callers that need that detail must use an
// evaluation hook.
type ForbiddenError struct {
	// Object and Field identify the denied resolution. The caller
	// supplied both, so exposing them leaks nothing.
	Object string
	Field  string

	// Reference is an opaque ID correlating this error with the
	// EvalInfo handed to the evaluation hook.
	Reference string
}

// Error returns the error string.
func (e *ForbiddenError) Error() string {
	return "warden: forbidden"
}

// Is reports whether the target error matches ForbiddenError.
// This allows errors.Is(err, ErrForbidden) to return true.
func (e *ForbiddenError) Is(err error) bool {
	return err == ErrForbidden
}

// IsForbidden returns true if the error is a ForbiddenError.
func IsForbidden(err error) bool {
	if err == nil {
		return false
	}
	var e *ForbiddenError
	return errors.As(err, &e) || errors.Is(err, ErrForbidden)
}

// EvaluationError wraps a rule that returned an unexpected error or
// panicked. It is only ever handed to the evaluation hook; Authorize
// never returns it, per the fail-closed contract.
type EvaluationError struct {
	Object string // Type owning the field
	Field  string // Field being resolved
	Err    error  // Underlying rule failure
}

// Error returns the error string.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("warden: rule evaluation failed for %s.%s: %v", e.Object, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// IsEvaluationError returns true if the error is an EvaluationError.
func IsEvaluationError(err error) bool {
	if err == nil {
		return false
	}
	var e *EvaluationError
	return errors.As(err, &e)
}
