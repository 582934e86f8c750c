package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/brewline/maitre/core/metrics"
	"github.com/brewline/maitre/core/model"
)

func TestPromSink_RecordDispatchEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	ev := coremetrics.DispatchEvent{
		AssignmentID: "asg-1",
		CandidateID:  "w1",
		TaskKind:     model.TaskNewOrder,
		Outcome:      "accepted",
		Time:         time.Now(),
	}
	if err := sink.RecordDispatchEvent(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordAcceptanceLatency(coremetrics.AcceptanceLatency{
		AssignmentID: "asg-1",
		CandidateID:  "w1",
		TaskKind:     model.TaskNewOrder,
		Latency:      150 * time.Millisecond,
	}); err != nil {
		t.Fatalf("latency error: %v", err)
	}

	expected := `
# HELP assignment_events_total Total number of assignment lifecycle events
# TYPE assignment_events_total counter
assignment_events_total{candidate_id="w1",outcome="accepted",task_kind="new_order"} 1
`
	if err := testutil.CollectAndCompare(sink.events, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency not recorded")
	}
}

func TestPromSink_RecordMatchOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)
	if err := sink.RecordMatchOutcome(coremetrics.MatchEvent{
		Decision:   "ambiguous",
		Confidence: "",
		Candidates: 2,
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if c := testutil.CollectAndCount(sink.matches); c == 0 {
		t.Errorf("match outcome not recorded")
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
