package dispatch

import (
	"time"

	"github.com/brewline/maitre/core/model"
)

// State is the lifecycle state of an assignment.
type State int

const (
	// StateOffered means exactly one candidate currently holds the offer.
	StateOffered State = iota
	// StateAccepted is terminal: a candidate claimed the task.
	StateAccepted
	// StateExhausted is terminal: every candidate passed or timed out.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateOffered:
		return "offered"
	case StateAccepted:
		return "accepted"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state can never change again.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateExhausted
}

// AssignmentRecord is the only mutable entity in the dispatch core. All
// mutations go through Store.Update, which provides the atomic
// check-and-set the race-safety contract relies on.
//
// Invariants: State == StateOffered implies Cursor < len(Queue) and exactly
// one armed deadline; once terminal, the record never changes again; Cursor
// only increases.
type AssignmentRecord struct {
	ID   string
	Task model.Task
	// Queue is the ordered, deduplicated candidate list, fixed at dispatch
	// start.
	Queue  []string
	Cursor int
	State  State
	// OfferedTo is the candidate currently holding the offer.
	OfferedTo string
	OfferedAt time.Time
	StartedAt time.Time
	// ResolvedAt is set when the record reaches a terminal state; eviction
	// happens a retention window later.
	ResolvedAt time.Time

	// offerSeq increments on every offer. Deadline timers capture the
	// sequence they were armed for, so a late fire against a newer offer is
	// a no-op.
	offerSeq int
	timer    *time.Timer
}

// snapshot returns a copy safe to hand out. The timer handle stays private
// to the store.
func (r *AssignmentRecord) snapshot() AssignmentRecord {
	cp := *r
	cp.Queue = append([]string(nil), r.Queue...)
	cp.timer = nil
	return cp
}

// cancelTimer stops the armed deadline, if any. Stopping an already fired
// timer is harmless: the fire path re-checks state and sequence.
func (r *AssignmentRecord) cancelTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
