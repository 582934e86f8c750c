package events

import (
	"time"

	"github.com/brewline/maitre/core/model"
)

// OfferMade is published when a task is offered to a candidate.
type OfferMade struct {
	AssignmentID string
	CandidateID  string
	Task         model.Task
	// Position in the candidate queue, starting at 0.
	QueueIndex int
	Deadline   time.Time
}

// AssignmentAccepted is published when a candidate claims the task.
type AssignmentAccepted struct {
	AssignmentID string
	CandidateID  string
	Task         model.Task
	// WaitedFor is the time between dispatch start and acceptance.
	WaitedFor time.Duration
}

// OfferTimedOut is published when a candidate let the offer deadline expire.
// The dispatch then advances to the next candidate, if any.
type OfferTimedOut struct {
	AssignmentID string
	CandidateID  string
	Task         model.Task
}

// OfferPassed is published when a candidate explicitly declined the offer.
type OfferPassed struct {
	AssignmentID string
	CandidateID  string
	Task         model.Task
}

// CandidateSkipped is published when the next candidate in the queue is no
// longer available at offer time and is stepped over without an offer.
type CandidateSkipped struct {
	AssignmentID string
	CandidateID  string
	Task         model.Task
}

// AssignmentExhausted is published when no candidate accepted the task. The
// consumer is expected to escalate, e.g. alert a supervisor.
type AssignmentExhausted struct {
	AssignmentID string
	Task         model.Task
}
