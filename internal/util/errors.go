package util

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized    = errors.New("missing or invalid token")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("resource not found")
	ErrEmailRegistered = errors.New("email already registered")
	ErrInvalidPeriod   = errors.New("unknown learning period")
	ErrTaskNotFound    = errors.New("task not found")

	// ErrPlanIncomplete marks a plan that came out of scheduling with at
	// least one activity whose duration could not be resolved. The plan is
	// still returned to the caller, flagged incomplete.
	ErrPlanIncomplete = errors.New("plan contains unresolved activities")
)

// UpstreamError wraps a failed call to the search index, the model service
// or another external collaborator. It is always logged at the call site and
// rendered as a 500 to the client.
type UpstreamError struct {
	Service string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(service, op string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Op: op, Err: err}
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
