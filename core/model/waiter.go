package model

import "github.com/brewline/maitre/core/geo"

// Waiter is a read-only snapshot of a staff member eligible to receive
// dispatch offers. ActiveAssignments is maintained by the external entity
// store, updated from the "assigned" events this core publishes.
type Waiter struct {
	ID        string
	Position  geo.Point
	Available bool
	// ActiveAssignments is the number of tasks the waiter currently holds.
	// Used as a tie-break when two candidates are equally close.
	ActiveAssignments int
}
