// Package app wires the matching and dispatch core to its adapters.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brewline/maitre/config"
	"github.com/brewline/maitre/core/dispatch"
	"github.com/brewline/maitre/core/events"
	"github.com/brewline/maitre/core/geo"
	"github.com/brewline/maitre/core/match"
	coremetrics "github.com/brewline/maitre/core/metrics"
	"github.com/brewline/maitre/core/model"
	"github.com/brewline/maitre/infra/logger"
	"github.com/brewline/maitre/infra/metrics"
	"github.com/brewline/maitre/infra/notify"
	"github.com/brewline/maitre/internal/eventbus"
)

// Service owns the dispatcher, the ranker and their adapters.
type Service struct {
	Orchestrator *dispatch.Orchestrator
	Sweeper      *dispatch.Sweeper
	Ranker       *match.Ranker
	Roster       *Roster

	metrics     coremetrics.Sink
	bus         eventbus.EventBus
	notifier    *notify.Notifier
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// claimRelay lets the notifier route claims to an orchestrator that is
// constructed after the notifier has connected.
type claimRelay struct {
	mu   sync.RWMutex
	orch *dispatch.Orchestrator
}

func (r *claimRelay) bind(orch *dispatch.Orchestrator) {
	r.mu.Lock()
	r.orch = orch
	r.mu.Unlock()
}

func (r *claimRelay) Accept(assignmentID, candidateID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.orch == nil {
		return dispatch.ErrNotFound
	}
	return r.orch.Accept(assignmentID, candidateID)
}

func (r *claimRelay) Pass(assignmentID, candidateID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.orch == nil {
		return dispatch.ErrNotFound
	}
	return r.orch.Pass(assignmentID, candidateID)
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var msinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		msinks = append(msinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL,
			cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		msinks = append(msinks, sink)
	}
	var msink coremetrics.Sink
	switch len(msinks) {
	case 0:
		msink = coremetrics.NopSink{}
	case 1:
		msink = msinks[0]
	default:
		msink = metrics.NewMultiSink(msinks...)
	}

	bus := eventbus.New()
	sinks := events.MultiSink{events.BusSink{Bus: bus}}

	relay := &claimRelay{}
	var notifier *notify.Notifier
	if cfg.Notify.Enabled {
		var err error
		notifier, err = notify.New(cfg.Notify, relay)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		sinks = append(sinks, notifier)
	}

	roster := NewRoster()
	store := dispatch.NewMemoryStore()
	deadline := time.Duration(cfg.Dispatch.OfferDeadlineSeconds) * time.Second
	orch, err := dispatch.NewOrchestrator(store, sinks, msink, logg, roster.Available, deadline)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	relay.bind(orch)

	sweeper, err := dispatch.NewSweeper(orch, store, logg,
		time.Duration(cfg.Dispatch.SweepIntervalSeconds)*time.Second,
		time.Duration(cfg.Dispatch.SweepGraceSeconds)*time.Second,
		time.Duration(cfg.Dispatch.RetentionMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("sweeper: %w", err)
	}

	ranker, err := match.NewRanker(cfg.Match, logg)
	if err != nil {
		return nil, fmt.Errorf("ranker: %w", err)
	}

	return &Service{
		Orchestrator: orch,
		Sweeper:      sweeper,
		Ranker:       ranker,
		Roster:       roster,
		metrics:      msink,
		bus:          bus,
		notifier:     notifier,
		log:          logg,
		promEnabled:  cfg.Metrics.PrometheusEnabled,
		promPort:     cfg.Metrics.PrometheusPort,
	}, nil
}

// Resolve ranks a GPS fix against the table pool and records the outcome on
// the metrics sink.
func (s *Service) Resolve(point geo.Point, uncertaintyMeters float64, pool []model.Table) (match.Result, error) {
	res, err := s.Ranker.Rank(point, uncertaintyMeters, pool)
	if err != nil {
		return res, err
	}
	if rec, ok := s.metrics.(coremetrics.MatchRecorder); ok {
		ev := coremetrics.MatchEvent{Decision: res.Decision.String(), Time: time.Now()}
		switch res.Decision {
		case match.DecisionMatched:
			ev.Confidence = res.Confidence.String()
			ev.Candidates = 1 + len(res.Alternates)
			ev.DistanceMeters = res.Match.DistanceMeters
		case match.DecisionAmbiguous:
			ev.Candidates = len(res.Candidates)
		}
		if err := rec.RecordMatchOutcome(ev); err != nil {
			s.log.Errorf("match metrics error: %v", err)
		}
	}
	return res, nil
}

// DispatchTask builds the candidate queue around the task's table and starts
// a dispatch, returning the assignment id.
func (s *Service) DispatchTask(task model.Task, origin geo.Point) (string, error) {
	queue := dispatch.BuildQueue(origin, s.Roster.Waiters())
	return s.Orchestrator.StartDispatch(task, queue)
}

// Run starts the sweeper and auxiliary servers and blocks until the context
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.Sweeper.Run(ctx)
	go s.tailEvents(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// tailEvents logs every dispatch lifecycle event flowing over the bus.
func (s *Service) tailEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			switch ev := e.(type) {
			case events.OfferMade:
				s.log.Infof("offer %s -> %s (queue %d)", ev.AssignmentID, ev.CandidateID, ev.QueueIndex)
			case events.AssignmentAccepted:
				s.log.Infof("assignment %s accepted by %s after %s", ev.AssignmentID, ev.CandidateID, ev.WaitedFor)
			case events.OfferTimedOut:
				s.log.Infof("offer %s timed out for %s", ev.AssignmentID, ev.CandidateID)
			case events.OfferPassed:
				s.log.Infof("offer %s passed by %s", ev.AssignmentID, ev.CandidateID)
			case events.CandidateSkipped:
				s.log.Debugf("candidate %s skipped for %s", ev.CandidateID, ev.AssignmentID)
			case events.AssignmentExhausted:
				s.log.Warnf("assignment %s exhausted, escalate", ev.AssignmentID)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.Orchestrator.Close()
	if s.notifier != nil {
		s.notifier.Disconnect()
	}
	s.bus.Close()
	return err
}
