package model

import "errors"

var (
	// ErrNotFound is returned when a card, listing or order does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIllegalDeletion is returned when a card's listing has left draft.
	ErrIllegalDeletion = errors.New("cannot delete card with active or completed listing")

	// ErrIllegalTransition is returned for a status change the lifecycle
	// does not allow without force.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
