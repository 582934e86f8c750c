package metrics

import (
	coremetrics "github.com/brewline/maitre/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records dispatch lifecycle and matching events in Prometheus
// metrics.
type PromSink struct {
	events  *prometheus.CounterVec
	matches *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewPromSink registers the sink metrics on the default Prometheus
// registerer. The metrics server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_events_total",
		Help: "Total number of assignment lifecycle events",
	}, []string{"candidate_id", "task_kind", "outcome"})
	matches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "table_match_outcomes_total",
		Help: "Total number of table resolution outcomes",
	}, []string{"decision", "confidence"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_acceptance_seconds",
		Help:    "Time between dispatch start and acceptance",
		Buckets: prometheus.DefBuckets,
	}, []string{"candidate_id", "task_kind"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(matches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			matches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{events: events, matches: matches, latency: latency}, nil
}

// RecordDispatchEvent increments the counter for the lifecycle event.
func (s *PromSink) RecordDispatchEvent(ev coremetrics.DispatchEvent) error {
	s.events.WithLabelValues(ev.CandidateID, ev.TaskKind.String(), ev.Outcome).Inc()
	return nil
}

// RecordMatchOutcome increments the counter for a table resolution outcome.
func (s *PromSink) RecordMatchOutcome(ev coremetrics.MatchEvent) error {
	s.matches.WithLabelValues(ev.Decision, ev.Confidence).Inc()
	return nil
}

// RecordAcceptanceLatency records the acceptance latency histogram.
func (s *PromSink) RecordAcceptanceLatency(lat coremetrics.AcceptanceLatency) error {
	s.latency.WithLabelValues(lat.CandidateID, lat.TaskKind.String()).Observe(lat.Latency.Seconds())
	return nil
}
