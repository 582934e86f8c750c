package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brewline/maitre/core/events"
	"github.com/brewline/maitre/core/logger"
	"github.com/brewline/maitre/core/metrics"
	"github.com/brewline/maitre/core/model"
)

// AvailabilityChecker reports whether a candidate can still receive offers.
// It is consulted before every offer, not only at queue build time, so a
// waiter who went off shift after being queued is skipped instead of letting
// the offer rot until the deadline. A nil checker treats everyone as
// available.
type AvailabilityChecker func(candidateID string) bool

// errStaleTimer marks a deadline fire that lost the race against an accept,
// pass or earlier expiry. Harmless by construction.
var errStaleTimer = errors.New("dispatch: stale deadline timer")

// Orchestrator owns the store of in-flight assignments and drives the
// cascading offer protocol: one candidate at a time, a fixed deadline per
// offer, advance on pass or timeout, stop on acceptance or exhaustion.
//
// Accept, Pass and the deadline path mutate records through Store.Update
// only; events and metrics are emitted after the critical section and never
// roll a transition back.
type Orchestrator struct {
	store        Store
	sink         events.Sink
	metrics      metrics.Sink
	log          logger.Logger
	deadline     time.Duration
	availability AvailabilityChecker
}

// NewOrchestrator creates an Orchestrator. offerDeadline is how long each
// candidate has to respond; if zero, a default of ten seconds is used. A nil
// sink or metrics sink is replaced with a no-op implementation.
func NewOrchestrator(store Store, sink events.Sink, msink metrics.Sink, log logger.Logger, avail AvailabilityChecker, offerDeadline time.Duration) (*Orchestrator, error) {
	if store == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewOrchestrator")
	}
	if offerDeadline <= 0 {
		offerDeadline = 10 * time.Second
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	if msink == nil {
		msink = metrics.NopSink{}
	}
	return &Orchestrator{
		store:        store,
		sink:         sink,
		metrics:      msink,
		log:          log,
		deadline:     offerDeadline,
		availability: avail,
	}, nil
}

// Deadline returns the per-offer response deadline.
func (o *Orchestrator) Deadline() time.Duration { return o.deadline }

// Assignment returns a snapshot of the record, if present.
func (o *Orchestrator) Assignment(id string) (AssignmentRecord, bool) {
	return o.store.Get(id)
}

// StartDispatch creates an assignment for the task and offers it to the
// first available candidate in the queue. The queue is fixed at this point
// and never re-ranked. An empty queue resolves to Exhausted immediately.
func (o *Orchestrator) StartDispatch(task model.Task, queue []string) (string, error) {
	if task.ID == "" {
		return "", fmt.Errorf("dispatch: task id must not be empty")
	}
	id := "asg-" + uuid.NewString()
	rec := &AssignmentRecord{
		ID:        id,
		Task:      task,
		Queue:     dedupe(queue),
		StartedAt: time.Now(),
	}
	if err := o.store.Create(rec); err != nil {
		return "", err
	}

	var evts []events.Event
	err := o.store.Update(id, func(r *AssignmentRecord) error {
		evts = o.advanceLocked(r, time.Now())
		return nil
	})
	if err != nil {
		return "", err
	}
	o.log.Infof("dispatch %s started for task %s with %d candidates", id, task.ID, len(rec.Queue))
	o.emit(evts)
	return id, nil
}

// Accept atomically claims the assignment for the candidate. Exactly one
// caller observes success under concurrent calls; the others receive
// ErrAlreadyClaimed or ErrNotYourOffer.
func (o *Orchestrator) Accept(assignmentID, candidateID string) error {
	if candidateID == "" {
		return ErrNotYourOffer
	}
	var evts []events.Event
	err := o.store.Update(assignmentID, func(r *AssignmentRecord) error {
		if r.State.Terminal() {
			return ErrAlreadyClaimed
		}
		if r.OfferedTo != candidateID {
			return ErrNotYourOffer
		}
		now := time.Now()
		r.cancelTimer()
		r.State = StateAccepted
		r.ResolvedAt = now
		evts = append(evts, events.AssignmentAccepted{
			AssignmentID: r.ID,
			CandidateID:  candidateID,
			Task:         r.Task,
			WaitedFor:    now.Sub(r.StartedAt),
		})
		return nil
	})
	if err != nil {
		return err
	}
	pendingAssignments.Dec()
	o.emit(evts)
	return nil
}

// Pass declines the current offer and advances the queue. Fails with
// ErrNotYourOffer if the caller does not hold the offer.
func (o *Orchestrator) Pass(assignmentID, candidateID string) error {
	if candidateID == "" {
		return ErrNotYourOffer
	}
	var evts []events.Event
	err := o.store.Update(assignmentID, func(r *AssignmentRecord) error {
		if r.State.Terminal() {
			return ErrAlreadyClaimed
		}
		if r.OfferedTo != candidateID {
			return ErrNotYourOffer
		}
		r.cancelTimer()
		evts = append(evts, events.OfferPassed{AssignmentID: r.ID, CandidateID: candidateID, Task: r.Task})
		r.Cursor++
		evts = append(evts, o.advanceLocked(r, time.Now())...)
		return nil
	})
	if err != nil {
		return err
	}
	o.emit(evts)
	return nil
}

// expire handles a deadline fire for the offer identified by seq. A fire
// that lost the race against accept/pass, or a duplicate fire, is a no-op.
func (o *Orchestrator) expire(assignmentID string, seq int) {
	var evts []events.Event
	err := o.store.Update(assignmentID, func(r *AssignmentRecord) error {
		if r.State != StateOffered || r.offerSeq != seq {
			return errStaleTimer
		}
		r.timer = nil
		evts = append(evts, events.OfferTimedOut{AssignmentID: r.ID, CandidateID: r.OfferedTo, Task: r.Task})
		r.Cursor++
		evts = append(evts, o.advanceLocked(r, time.Now())...)
		return nil
	})
	if err != nil {
		// Lost races and evicted records are expected here.
		if !errors.Is(err, errStaleTimer) && !errors.Is(err, ErrNotFound) {
			o.log.Errorf("expire %s: %v", assignmentID, err)
		}
		return
	}
	o.emit(evts)
}

// advanceLocked offers the task to the next available candidate at or after
// the cursor, or exhausts the record. Runs inside a Store.Update callback.
// Returned events are published by the caller outside the critical section.
func (o *Orchestrator) advanceLocked(r *AssignmentRecord, now time.Time) []events.Event {
	var evts []events.Event
	for r.Cursor < len(r.Queue) {
		cand := r.Queue[r.Cursor]
		if o.availability != nil && !o.availability(cand) {
			evts = append(evts, events.CandidateSkipped{AssignmentID: r.ID, CandidateID: cand, Task: r.Task})
			r.Cursor++
			continue
		}
		r.OfferedTo = cand
		r.OfferedAt = now
		r.offerSeq++
		seq := r.offerSeq
		id := r.ID
		r.timer = time.AfterFunc(o.deadline, func() { o.expire(id, seq) })
		evts = append(evts, events.OfferMade{
			AssignmentID: r.ID,
			CandidateID:  cand,
			Task:         r.Task,
			QueueIndex:   r.Cursor,
			Deadline:     now.Add(o.deadline),
		})
		if seq == 1 {
			pendingAssignments.Inc()
		}
		return evts
	}
	r.State = StateExhausted
	r.OfferedTo = ""
	r.ResolvedAt = now
	if r.offerSeq > 0 {
		pendingAssignments.Dec()
	}
	evts = append(evts, events.AssignmentExhausted{AssignmentID: r.ID, Task: r.Task})
	return evts
}

// Close cancels every armed deadline so no timer goroutine outlives the
// orchestrator. Records are left in the store.
func (o *Orchestrator) Close() error {
	for _, rec := range o.store.List() {
		if rec.State != StateOffered {
			continue
		}
		_ = o.store.Update(rec.ID, func(r *AssignmentRecord) error {
			r.cancelTimer()
			return nil
		})
	}
	return nil
}

// emit publishes events to the sink and records metrics. Called outside the
// store critical section; failures are logged and dropped.
func (o *Orchestrator) emit(evts []events.Event) {
	for _, e := range evts {
		o.sink.Publish(e)
		o.record(e)
	}
}

func (o *Orchestrator) record(e events.Event) {
	ev := metrics.DispatchEvent{Time: time.Now()}
	switch t := e.(type) {
	case events.OfferMade:
		ev.AssignmentID, ev.CandidateID, ev.TaskKind, ev.Outcome, ev.QueueIndex = t.AssignmentID, t.CandidateID, t.Task.Kind, "offered", t.QueueIndex
		offersTotal.WithLabelValues(t.Task.Kind.String()).Inc()
	case events.AssignmentAccepted:
		ev.AssignmentID, ev.CandidateID, ev.TaskKind, ev.Outcome = t.AssignmentID, t.CandidateID, t.Task.Kind, "accepted"
		acceptedTotal.WithLabelValues(t.Task.Kind.String()).Inc()
		acceptanceLatency.WithLabelValues(t.Task.Kind.String()).Observe(t.WaitedFor.Seconds())
		if lr, ok := o.metrics.(metrics.LatencyRecorder); ok {
			if err := lr.RecordAcceptanceLatency(metrics.AcceptanceLatency{
				AssignmentID: t.AssignmentID,
				CandidateID:  t.CandidateID,
				TaskKind:     t.Task.Kind,
				Latency:      t.WaitedFor,
			}); err != nil {
				o.log.Errorf("latency metrics error: %v", err)
			}
		}
	case events.OfferPassed:
		ev.AssignmentID, ev.CandidateID, ev.TaskKind, ev.Outcome = t.AssignmentID, t.CandidateID, t.Task.Kind, "passed"
		passesTotal.WithLabelValues(t.Task.Kind.String()).Inc()
	case events.OfferTimedOut:
		ev.AssignmentID, ev.CandidateID, ev.TaskKind, ev.Outcome = t.AssignmentID, t.CandidateID, t.Task.Kind, "timed_out"
		timeoutsTotal.WithLabelValues(t.Task.Kind.String()).Inc()
	case events.CandidateSkipped:
		ev.AssignmentID, ev.CandidateID, ev.TaskKind, ev.Outcome = t.AssignmentID, t.CandidateID, t.Task.Kind, "skipped"
		skippedTotal.WithLabelValues(t.Task.Kind.String()).Inc()
	case events.AssignmentExhausted:
		ev.AssignmentID, ev.TaskKind, ev.Outcome = t.AssignmentID, t.Task.Kind, "exhausted"
		exhaustedTotal.WithLabelValues(t.Task.Kind.String()).Inc()
	default:
		return
	}
	if err := o.metrics.RecordDispatchEvent(ev); err != nil {
		o.log.Errorf("metrics error: %v", err)
	}
}

// dedupe drops repeated candidate ids, keeping first occurrence order.
func dedupe(queue []string) []string {
	seen := make(map[string]struct{}, len(queue))
	out := make([]string, 0, len(queue))
	for _, id := range queue {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
