package events

import "github.com/brewline/maitre/internal/eventbus"

// Event is one of the dispatch lifecycle event types in this package.
type Event any

// Sink receives dispatch lifecycle events. Publish is called after the state
// transition that produced the event has been committed, outside the
// orchestrator's critical section, and must not block for long; delivery is
// fire-and-forget and failures never roll back a transition.
type Sink interface {
	Publish(Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// MultiSink fans out events to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		s.Publish(e)
	}
}

// BusSink forwards events onto an in-process event bus so local consumers
// (metrics recorders, log tails) can subscribe alongside the external
// notifier.
type BusSink struct {
	Bus eventbus.EventBus
}

func (b BusSink) Publish(e Event) {
	if b.Bus != nil {
		b.Bus.Publish(e)
	}
}
