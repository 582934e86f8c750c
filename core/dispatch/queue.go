package dispatch

import (
	"sort"

	"github.com/brewline/maitre/core/geo"
	"github.com/brewline/maitre/core/model"
)

// BuildQueue ranks the available waiters for a task originating at origin:
// nearest first, then fewest active assignments, then id for a stable order.
// Duplicates are dropped. The result is computed once at dispatch start and
// never re-ranked mid-dispatch; per-offer availability is re-checked by the
// orchestrator instead.
func BuildQueue(origin geo.Point, staff []model.Waiter) []string {
	type ranked struct {
		id       string
		distance float64
		load     int
	}
	seen := make(map[string]struct{}, len(staff))
	candidates := make([]ranked, 0, len(staff))
	for _, w := range staff {
		if !w.Available {
			continue
		}
		if _, ok := seen[w.ID]; ok {
			continue
		}
		seen[w.ID] = struct{}{}
		candidates = append(candidates, ranked{
			id:       w.ID,
			distance: geo.Distance(origin, w.Position),
			load:     w.ActiveAssignments,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].load != candidates[j].load {
			return candidates[i].load < candidates[j].load
		}
		return candidates[i].id < candidates[j].id
	})
	queue := make([]string, len(candidates))
	for i, c := range candidates {
		queue[i] = c.id
	}
	return queue
}
