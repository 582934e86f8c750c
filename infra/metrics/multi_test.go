package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	coremetrics "github.com/brewline/maitre/core/metrics"
	"github.com/brewline/maitre/core/model"
)

type recordSink struct {
	events    int
	matches   int
	latencies int
	fail      bool
}

func (r *recordSink) RecordDispatchEvent(coremetrics.DispatchEvent) error {
	if r.fail {
		return errors.New("record failed")
	}
	r.events++
	return nil
}

func (r *recordSink) RecordMatchOutcome(coremetrics.MatchEvent) error {
	r.matches++
	return nil
}

func (r *recordSink) RecordAcceptanceLatency(coremetrics.AcceptanceLatency) error {
	r.latencies++
	return nil
}

// eventOnlySink implements only the base Sink interface.
type eventOnlySink struct{ events int }

func (e *eventOnlySink) RecordDispatchEvent(coremetrics.DispatchEvent) error {
	e.events++
	return nil
}

func TestMultiSink_ForwardsToAll(t *testing.T) {
	a := &recordSink{}
	b := &recordSink{}
	multi := NewMultiSink(a, b)

	ev := coremetrics.DispatchEvent{
		AssignmentID: "asg-1",
		CandidateID:  "w1",
		TaskKind:     model.TaskNewOrder,
		Outcome:      "offered",
		Time:         time.Now(),
	}
	assert.NoError(t, multi.RecordDispatchEvent(ev))
	assert.Equal(t, 1, a.events)
	assert.Equal(t, 1, b.events)

	assert.NoError(t, multi.RecordMatchOutcome(coremetrics.MatchEvent{Decision: "matched"}))
	assert.Equal(t, 1, a.matches)
	assert.Equal(t, 1, b.matches)

	assert.NoError(t, multi.RecordAcceptanceLatency(coremetrics.AcceptanceLatency{
		AssignmentID: "asg-1",
		CandidateID:  "w1",
		Latency:      time.Second,
	}))
	assert.Equal(t, 1, a.latencies)
	assert.Equal(t, 1, b.latencies)
}

func TestMultiSink_SkipsNonRecorders(t *testing.T) {
	base := &eventOnlySink{}
	full := &recordSink{}
	multi := NewMultiSink(base, full)

	assert.NoError(t, multi.RecordMatchOutcome(coremetrics.MatchEvent{Decision: "ambiguous"}))
	assert.NoError(t, multi.RecordAcceptanceLatency(coremetrics.AcceptanceLatency{}))
	assert.Equal(t, 0, base.events)
	assert.Equal(t, 1, full.matches)
	assert.Equal(t, 1, full.latencies)
}

func TestMultiSink_PropagatesError(t *testing.T) {
	failing := &recordSink{fail: true}
	ok := &recordSink{}
	multi := NewMultiSink(failing, ok)

	err := multi.RecordDispatchEvent(coremetrics.DispatchEvent{Outcome: "offered"})
	assert.Error(t, err)
	assert.Equal(t, 0, ok.events)
}
