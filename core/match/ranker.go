package match

import (
	"errors"
	"fmt"
	"sort"

	"github.com/brewline/maitre/core/geo"
	"github.com/brewline/maitre/core/logger"
	"github.com/brewline/maitre/core/model"
)

// ErrEmptyPool is returned when Rank is called without any table snapshots.
var ErrEmptyPool = errors.New("match: empty table pool")

// maxAlternates bounds the preview of runners-up attached to a match.
const maxAlternates = 3

// Confidence grades a confident single match by the distance to the table.
type Confidence int

const (
	ConfidenceHigh Confidence = iota
	ConfidenceMedium
	ConfidenceLow
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}

// Decision tags the three possible ranking outcomes. NoMatch and Ambiguous
// are first-class results the caller must handle, not errors.
type Decision int

const (
	DecisionMatched Decision = iota
	DecisionAmbiguous
	DecisionNoMatch
)

func (d Decision) String() string {
	switch d {
	case DecisionMatched:
		return "matched"
	case DecisionAmbiguous:
		return "ambiguous"
	case DecisionNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}

// RankedTable is a table snapshot annotated with its distance from the query
// point. Created per query and discarded after use.
type RankedTable struct {
	Table          model.Table
	DistanceMeters float64
	WithinRadius   bool
}

// Result is the outcome of one ranking query.
//
// Decision == DecisionMatched: Match and Confidence are set, Alternates holds
// a bounded preview of runners-up. Decision == DecisionAmbiguous: Candidates
// holds every table within the disambiguation gap of the best, nearest first.
// Decision == DecisionNoMatch: Reason explains why.
type Result struct {
	Decision   Decision
	Match      *RankedTable
	Confidence Confidence
	Alternates []RankedTable
	Candidates []RankedTable
	Reason     string
}

// Ranker resolves an uncertain GPS fix to a table.
type Ranker struct {
	cfg Config
	log logger.Logger
}

// NewRanker validates the configuration and creates a Ranker.
func NewRanker(cfg Config, log logger.Logger) (*Ranker, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	if log == nil {
		return nil, fmt.Errorf("match: nil logger provided to NewRanker")
	}
	return &Ranker{cfg: cfg, log: log}, nil
}

// Rank computes the match outcome for a query point against a pool of table
// snapshots. uncertaintyMeters is the GPS accuracy of the fix; values <= 0
// fall back to the configured default. A table matches when its distance is
// within max(intrinsic radius, uncertainty), so an imprecise fix is never
// penalized by a physically small table radius.
func (r *Ranker) Rank(query geo.Point, uncertaintyMeters float64, pool []model.Table) (Result, error) {
	if err := query.Validate(); err != nil {
		return Result{}, err
	}
	if len(pool) == 0 {
		return Result{}, ErrEmptyPool
	}
	if uncertaintyMeters <= 0 {
		uncertaintyMeters = r.cfg.DefaultUncertaintyMeters
	}

	var inRange []RankedTable
	eligible := 0
	for _, t := range pool {
		if err := t.Validate(); err != nil {
			return Result{}, err
		}
		if !t.Eligible() {
			continue
		}
		eligible++
		d := geo.Distance(query, t.Position)
		effective := t.RadiusMeters
		if uncertaintyMeters > effective {
			effective = uncertaintyMeters
		}
		if d <= effective {
			inRange = append(inRange, RankedTable{Table: t, DistanceMeters: d, WithinRadius: true})
		}
	}

	if eligible == 0 {
		return Result{Decision: DecisionNoMatch, Reason: "no eligible tables"}, nil
	}
	if len(inRange) == 0 {
		return Result{Decision: DecisionNoMatch, Reason: "outside all detection zones"}, nil
	}

	// Deterministic order: distance ascending, table id as tie-break so
	// repeated queries are reproducible regardless of pool order.
	sort.Slice(inRange, func(i, j int) bool {
		if inRange[i].DistanceMeters != inRange[j].DistanceMeters {
			return inRange[i].DistanceMeters < inRange[j].DistanceMeters
		}
		return inRange[i].Table.ID < inRange[j].Table.ID
	})

	if len(inRange) == 1 {
		best := inRange[0]
		return Result{Decision: DecisionMatched, Match: &best, Confidence: ConfidenceHigh}, nil
	}

	gap := inRange[1].DistanceMeters - inRange[0].DistanceMeters
	if gap < r.cfg.DisambiguationGapMeters {
		candidates := []RankedTable{inRange[0]}
		for _, rt := range inRange[1:] {
			if rt.DistanceMeters-inRange[0].DistanceMeters < r.cfg.DisambiguationGapMeters {
				candidates = append(candidates, rt)
			}
		}
		r.log.Debugw("ambiguous match", map[string]any{
			"candidates": len(candidates),
			"gap_m":      gap,
		})
		return Result{Decision: DecisionAmbiguous, Candidates: candidates}, nil
	}

	best := inRange[0]
	alternates := inRange[1:]
	if len(alternates) > maxAlternates {
		alternates = alternates[:maxAlternates]
	}
	return Result{
		Decision:   DecisionMatched,
		Match:      &best,
		Confidence: r.grade(best.DistanceMeters),
		Alternates: alternates,
	}, nil
}

// grade downgrades confidence as the matched distance grows.
func (r *Ranker) grade(distance float64) Confidence {
	switch {
	case distance <= r.cfg.HighConfidenceMeters:
		return ConfidenceHigh
	case distance <= r.cfg.MediumConfidenceMeters:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
