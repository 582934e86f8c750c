package dispatch

import "errors"

var (
	// ErrNotFound is returned when the assignment id is unknown or already
	// evicted.
	ErrNotFound = errors.New("dispatch: assignment not found")

	// ErrNotYourOffer is returned when a candidate responds to an offer that
	// is not currently theirs, typically because the dispatch advanced past
	// them. Expected under normal operation, not a failure.
	ErrNotYourOffer = errors.New("dispatch: not the offered candidate")

	// ErrAlreadyClaimed is returned when the assignment reached a terminal
	// state before the call, e.g. the losing side of a concurrent accept.
	ErrAlreadyClaimed = errors.New("dispatch: assignment already resolved")
)
