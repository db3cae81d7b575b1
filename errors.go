package ticketchat

import (
	"context"
	"errors"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, message or tool argument failed validation.
	ErrValidation = errors.New("validation error")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrRegistryUnavailable indicates the tool registry could not be reached
	// or the session to it was lost. It aborts the turn.
	ErrRegistryUnavailable = errors.New("tool registry unavailable")

	// ErrModelUnavailable indicates the completion backend failed. It aborts
	// the turn.
	ErrModelUnavailable = errors.New("model unavailable")
)

// Fixed user-visible statements for infrastructure faults.
const (
	StatementRegistryUnavailable = "The ticket service is unavailable right now. Please try again later."
	StatementModelUnavailable    = "The assistant is unavailable right now. Please try again later."
	StatementCanceled            = "The request was canceled."
	StatementUnexpected          = "Something went wrong while handling the request."
)

// Statement maps a fatal turn error to a short fixed statement suitable for
// showing to the user. Details stay in the logs.
func Statement(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRegistryUnavailable):
		return StatementRegistryUnavailable
	case errors.Is(err, ErrModelUnavailable):
		return StatementModelUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatementCanceled
	default:
		return StatementUnexpected
	}
}
