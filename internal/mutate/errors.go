package mutate

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrBoardCodeNotFound  = errors.New("board code not found")
)

// NotFoundError is returned by callers that need to report a missing target.
// Planners themselves treat missing targets as a no-op.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError rejects bad input before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type ConflictError struct {
	Field string
	Value string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s already taken: %s", e.Field, e.Value)
}

type ForbiddenError struct {
	ActorID string
	Action  string
}

func (e ForbiddenError) Error() string {
	// Keep this generic; CLI/TUI can wrap with more specific phrasing.
	return "forbidden: " + e.Action
}
