package metrics

import coremetrics "github.com/brewline/maitre/core/metrics"

// MultiSink fans dispatch records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatchEvent forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordDispatchEvent(ev coremetrics.DispatchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatchEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatchOutcome forwards match outcomes to sinks that record them.
func (m *MultiSink) RecordMatchOutcome(ev coremetrics.MatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.MatchRecorder); ok {
			if err := rec.RecordMatchOutcome(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAcceptanceLatency forwards latencies to sinks that record them.
func (m *MultiSink) RecordAcceptanceLatency(lat coremetrics.AcceptanceLatency) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.LatencyRecorder); ok {
			if err := rec.RecordAcceptanceLatency(lat); err != nil {
				return err
			}
		}
	}
	return nil
}
