package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/brewline/maitre/core/metrics"
	"github.com/brewline/maitre/infra/logger"
)

// InfluxSink writes dispatch events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDispatchEvent writes the lifecycle event as a point.
func (s *InfluxSink) RecordDispatchEvent(ev coremetrics.DispatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("assignment_event").
		AddTag("assignment_id", ev.AssignmentID).
		AddTag("candidate_id", ev.CandidateID).
		AddTag("task_kind", ev.TaskKind.String()).
		AddTag("outcome", ev.Outcome).
		AddTag("component", "dispatch_orchestrator").
		AddField("queue_index", ev.QueueIndex).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMatchOutcome writes a table resolution outcome.
func (s *InfluxSink) RecordMatchOutcome(ev coremetrics.MatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("table_match").
		AddTag("decision", ev.Decision).
		AddTag("confidence", ev.Confidence).
		AddTag("component", "table_ranker").
		AddField("candidates", ev.Candidates).
		AddField("distance_m", ev.DistanceMeters).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAcceptanceLatency writes the acceptance latency of an assignment.
func (s *InfluxSink) RecordAcceptanceLatency(lat coremetrics.AcceptanceLatency) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("assignment_latency").
		AddTag("assignment_id", lat.AssignmentID).
		AddTag("candidate_id", lat.CandidateID).
		AddTag("task_kind", lat.TaskKind.String()).
		AddTag("component", "dispatch_orchestrator").
		AddField("latency_ms", lat.Latency.Seconds()*1000).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client resources.
func (s *InfluxSink) Close() {
	s.client.Close()
}
