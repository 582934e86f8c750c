package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/brewline/maitre/core/logger"
)

// Sweeper is the durability backstop for lost deadline timers: it
// periodically forces expiry of offers older than deadline+grace and evicts
// terminal records past the retention window. The in-process timers remain
// the primary mechanism; a sweep of a healthy store finds nothing to do.
type Sweeper struct {
	orch      *Orchestrator
	store     Store
	log       logger.Logger
	interval  time.Duration
	grace     time.Duration
	retention time.Duration
}

// NewSweeper creates a Sweeper sharing the orchestrator's store. Zero
// durations fall back to one minute interval, five seconds grace and ten
// minutes retention.
func NewSweeper(orch *Orchestrator, store Store, log logger.Logger, interval, grace, retention time.Duration) (*Sweeper, error) {
	if orch == nil || store == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewSweeper")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if grace <= 0 {
		grace = 5 * time.Second
	}
	if retention <= 0 {
		retention = 10 * time.Minute
	}
	return &Sweeper{
		orch:      orch,
		store:     store,
		log:       log,
		interval:  interval,
		grace:     grace,
		retention: retention,
	}, nil
}

// Run sweeps until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep performs a single pass. Exported so tests and operators can force
// one without waiting for the ticker.
func (s *Sweeper) Sweep(now time.Time) {
	stale := 0
	evicted := 0
	for _, rec := range s.store.List() {
		switch {
		case rec.State == StateOffered && now.Sub(rec.OfferedAt) > s.orch.Deadline()+s.grace:
			// Forcing the expiry through the same idempotent path the timer
			// uses; if the timer fires concurrently one of the two is a
			// no-op.
			s.orch.expire(rec.ID, rec.offerSeq)
			stale++
		case rec.State.Terminal() && now.Sub(rec.ResolvedAt) > s.retention:
			s.store.Delete(rec.ID)
			evicted++
		}
	}
	if stale > 0 {
		s.log.Warnf("sweeper forced %d stale offers", stale)
	}
	if evicted > 0 {
		s.log.Debugf("sweeper evicted %d terminal records", evicted)
	}
}
