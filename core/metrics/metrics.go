package metrics

import (
	"time"

	"github.com/brewline/maitre/core/model"
)

// DispatchEvent represents one step of an assignment's lifecycle to be
// recorded for observability.
type DispatchEvent struct {
	AssignmentID string
	CandidateID  string
	TaskKind     model.TaskKind
	// Outcome is one of "offered", "accepted", "passed", "timed_out",
	// "skipped" or "exhausted".
	Outcome    string
	QueueIndex int
	Time       time.Time
}

// Sink records dispatch lifecycle events for observability purposes.
type Sink interface {
	RecordDispatchEvent(ev DispatchEvent) error
}

// MatchEvent captures the outcome of one table-resolution query.
type MatchEvent struct {
	Decision       string
	Confidence     string
	Candidates     int
	DistanceMeters float64
	Time           time.Time
}

// MatchRecorder is implemented by sinks able to record match outcomes.
type MatchRecorder interface {
	RecordMatchOutcome(ev MatchEvent) error
}

// AcceptanceLatency represents the time from dispatch start to acceptance.
type AcceptanceLatency struct {
	AssignmentID string
	CandidateID  string
	TaskKind     model.TaskKind
	Latency      time.Duration
}

// LatencyRecorder is implemented by sinks able to record acceptance latency.
type LatencyRecorder interface {
	RecordAcceptanceLatency(lat AcceptanceLatency) error
}

// NopSink implements Sink and the optional recorders with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatchEvent(DispatchEvent) error         { return nil }
func (NopSink) RecordMatchOutcome(MatchEvent) error             { return nil }
func (NopSink) RecordAcceptanceLatency(AcceptanceLatency) error { return nil }
