// Package metrics defines the sink interfaces used to record dispatch and
// matching observability data. Concrete sinks live in infra/metrics.
package metrics
