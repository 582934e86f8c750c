package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	offersTotal        *prometheus.CounterVec
	acceptedTotal      *prometheus.CounterVec
	passesTotal        *prometheus.CounterVec
	timeoutsTotal      *prometheus.CounterVec
	skippedTotal       *prometheus.CounterVec
	exhaustedTotal     *prometheus.CounterVec
	acceptanceLatency  *prometheus.HistogramVec
	pendingAssignments prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (offers, accepted, passes, timeouts, skipped, exhausted *prometheus.CounterVec, latency *prometheus.HistogramVec, pending prometheus.Gauge) {
	offers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_offers_total",
			Help: "Number of offers made to candidates",
		},
		[]string{"task_kind"},
	)
	accepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_accepted_total",
			Help: "Number of assignments accepted by a candidate",
		},
		[]string{"task_kind"},
	)
	passes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_passes_total",
			Help: "Number of offers explicitly declined",
		},
		[]string{"task_kind"},
	)
	timeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_timeouts_total",
			Help: "Number of offers that expired without a response",
		},
		[]string{"task_kind"},
	)
	skipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_skipped_total",
			Help: "Number of queued candidates skipped as unavailable at offer time",
		},
		[]string{"task_kind"},
	)
	exhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_exhausted_total",
			Help: "Number of assignments no candidate accepted",
		},
		[]string{"task_kind"},
	)
	latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_acceptance_latency_seconds",
			Help:    "Time from dispatch start to acceptance",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_kind"},
	)
	pending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_pending_assignments",
			Help: "Number of assignments currently in the offered state",
		},
	)
	return
}

func init() {
	offersTotal, acceptedTotal, passesTotal, timeoutsTotal, skippedTotal, exhaustedTotal, acceptanceLatency, pendingAssignments = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(offersTotal, acceptedTotal, passesTotal, timeoutsTotal, skippedTotal, exhaustedTotal, acceptanceLatency, pendingAssignments)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	offersTotal, acceptedTotal, passesTotal, timeoutsTotal, skippedTotal, exhaustedTotal, acceptanceLatency, pendingAssignments = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
