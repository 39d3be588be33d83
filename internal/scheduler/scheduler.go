// Package scheduler implements the allocation pass: mandatory
// suggestions are assigned greedily, then optional ones are selected
// per gap by a 0/1 knapsack over priority and refined with a bounded
// permutation search that accounts for transition overhead between
// consecutive blocks.
//
// Every step is deterministic. The tie-break rule used throughout:
// equal priority/need resolves to the earlier-computed candidate,
// with the suggestion ID as the final key.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/ksakurai/memoplan/internal/match"
	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/travel"
)

// Options configures one allocation pass.
type Options struct {
	// PermutationLimit bounds the exhaustive ordering search per gap.
	// Selections larger than this keep the priority-descending order.
	PermutationLimit int

	// Estimator supplies transition overhead between consecutive
	// blocks; nil means zero overhead everywhere.
	Estimator travel.Estimator
}

// DefaultOptions returns the standard scheduling options.
func DefaultOptions() Options {
	return Options{PermutationLimit: 8}
}

func (o Options) validate() error {
	if o.PermutationLimit <= 0 {
		return fmt.Errorf("permutation limit must be positive, got %d", o.PermutationLimit)
	}
	return nil
}

// workingGap is the mutable view of a gap during one pass: the cursor
// advances and the remaining capacity shrinks as blocks are placed.
type workingGap struct {
	gap       models.Gap
	cursor    int
	remaining int
	at        *models.Coordinate
}

// Schedule runs one allocation pass. It is stateless given its
// inputs; identical inputs produce identical results apart from the
// Elapsed metadata.
func Schedule(suggestions []models.Suggestion, gapsIn []models.Gap, opts Options) (models.ScheduleResult, error) {
	started := time.Now()

	if err := opts.validate(); err != nil {
		return models.ScheduleResult{}, err
	}
	for _, g := range gapsIn {
		if g.Duration() <= 0 {
			return models.ScheduleResult{}, fmt.Errorf("gap %q duration must be positive", g.ID)
		}
	}
	for _, s := range suggestions {
		if s.DurationMin <= 0 {
			return models.ScheduleResult{}, fmt.Errorf("suggestion %q duration must be positive", s.ID)
		}
	}

	working := make([]*workingGap, 0, len(gapsIn))
	for _, g := range gapsIn {
		working = append(working, &workingGap{gap: g, cursor: g.Start, remaining: g.Duration(), at: g.Coord})
	}
	sort.SliceStable(working, func(i, j int) bool {
		if working[i].gap.Start != working[j].gap.Start {
			return working[i].gap.Start < working[j].gap.Start
		}
		return working[i].gap.ID < working[j].gap.ID
	})

	var mandatory, optional []models.Suggestion
	for _, s := range suggestions {
		if s.Mandatory() {
			mandatory = append(mandatory, s)
		} else {
			optional = append(optional, s)
		}
	}

	result := models.ScheduleResult{}

	scheduleMandatory(mandatory, working, opts, &result)
	scheduleOptional(optional, working, opts, &result)

	sort.SliceStable(result.Scheduled, func(i, j int) bool {
		if result.Scheduled[i].Start != result.Scheduled[j].Start {
			return result.Scheduled[i].Start < result.Scheduled[j].Start
		}
		return result.Scheduled[i].SuggestionID < result.Scheduled[j].SuggestionID
	})

	for _, b := range result.Scheduled {
		result.TotalScheduledMin += b.DurationMin
	}
	for _, s := range result.Dropped {
		result.TotalDroppedMin += s.DurationMin
	}
	for _, s := range result.MandatoryDropped {
		result.TotalDroppedMin += s.DurationMin
	}
	result.Elapsed = time.Since(started)

	return result, nil
}

// scheduleMandatory assigns mandatory suggestions, need descending,
// each into the earliest-starting compatible gap with enough
// remaining capacity. Failures are reported, never fatal.
func scheduleMandatory(mandatory []models.Suggestion, working []*workingGap, opts Options, result *models.ScheduleResult) {
	sort.SliceStable(mandatory, func(i, j int) bool {
		if mandatory[i].Need != mandatory[j].Need {
			return mandatory[i].Need > mandatory[j].Need
		}
		return mandatory[i].ID < mandatory[j].ID
	})

	for _, s := range mandatory {
		placed := false
		for _, wg := range working {
			if !match.Compatible(s.LocationPreference, wg.gap.Location) {
				continue
			}
			overhead := estimate(opts.Estimator, wg.at, s.Coord)
			if overhead+s.DurationMin > wg.remaining {
				continue
			}
			result.Scheduled = append(result.Scheduled, place(wg, s, overhead))
			result.TravelMin += overhead
			placed = true
			break
		}
		if !placed {
			result.MandatoryDropped = append(result.MandatoryDropped, s)
		}
	}
}

// scheduleOptional processes each gap independently: knapsack-select
// the best subset of still-unassigned candidates, refine the ordering
// under the permutation bound, then materialize back-to-back from the
// gap cursor. Candidates that fail materialization are dropped;
// unselected ones stay in the pool for later gaps.
func scheduleOptional(optional []models.Suggestion, working []*workingGap, opts Options, result *models.ScheduleResult) {
	pool := make([]models.Suggestion, len(optional))
	copy(pool, optional)
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Priority() != pool[j].Priority() {
			return pool[i].Priority() > pool[j].Priority()
		}
		return pool[i].ID < pool[j].ID
	})

	for _, wg := range working {
		if wg.remaining <= 0 || len(pool) == 0 {
			continue
		}

		var candidates []models.Suggestion
		for _, s := range pool {
			if s.DurationMin <= wg.remaining && match.Compatible(s.LocationPreference, wg.gap.Location) {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		selected := knapsack(candidates, wg.remaining)
		if len(selected) == 0 {
			continue
		}

		order, evaluated := refineOrder(wg, selected, opts)
		result.PermutationsEvaluated += evaluated

		consumed := make(map[string]bool, len(order))
		for i, s := range order {
			overhead := estimate(opts.Estimator, wg.at, s.Coord)
			if overhead+s.DurationMin > wg.remaining {
				// Transition overhead exhausted the capacity; the rest
				// of this gap's selection is dropped, matching the
				// feasible-prefix rule the ordering was chosen by.
				for _, rest := range order[i:] {
					result.Dropped = append(result.Dropped, rest)
					consumed[rest.ID] = true
				}
				break
			}
			result.Scheduled = append(result.Scheduled, place(wg, s, overhead))
			result.TravelMin += overhead
			consumed[s.ID] = true
		}

		remaining := pool[:0]
		for _, s := range pool {
			if !consumed[s.ID] {
				remaining = append(remaining, s)
			}
		}
		pool = remaining
	}

	result.Dropped = append(result.Dropped, pool...)
}

// place materializes one block at the gap cursor, after any travel
// overhead, and advances the working state.
func place(wg *workingGap, s models.Suggestion, overhead int) models.ScheduledBlock {
	start := wg.cursor + overhead
	block := models.ScheduledBlock{
		SuggestionID: s.ID,
		MemoID:       s.MemoID,
		GapID:        wg.gap.ID,
		Start:        start,
		End:          start + s.DurationMin,
		DurationMin:  s.DurationMin,
	}
	wg.cursor = block.End
	wg.remaining -= overhead + s.DurationMin
	if s.Coord != nil {
		wg.at = s.Coord
	}
	return block
}

// knapsack solves the 0/1 selection maximizing total priority under
// the capacity in minutes. Items are considered in their given
// (priority-descending) order, and ties keep the earlier-computed
// choice; the returned subset preserves that order.
func knapsack(items []models.Suggestion, capacity int) []models.Suggestion {
	n := len(items)
	dp := make([]float64, capacity+1)
	take := make([][]bool, n)

	for i := 0; i < n; i++ {
		take[i] = make([]bool, capacity+1)
		w := items[i].DurationMin
		v := items[i].Priority()
		for c := capacity; c >= w; c-- {
			if candidate := dp[c-w] + v; candidate > dp[c] {
				dp[c] = candidate
				take[i][c] = true
			}
		}
	}

	chosen := make([]bool, n)
	c := capacity
	for i := n - 1; i >= 0; i-- {
		if take[i][c] {
			chosen[i] = true
			c -= items[i].DurationMin
		}
	}

	var selected []models.Suggestion
	for i, ok := range chosen {
		if ok {
			selected = append(selected, items[i])
		}
	}
	return selected
}

// refineOrder searches orderings of the selected subset for the one
// keeping the most tasks feasible once transition overhead is applied
// sequentially from the gap cursor. Ties prefer lower total travel,
// then the earliest enumerated ordering; enumeration starts from the
// priority-descending base order. Above the permutation limit the
// base order is kept as-is.
func refineOrder(wg *workingGap, selected []models.Suggestion, opts Options) ([]models.Suggestion, int) {
	if len(selected) <= 1 || len(selected) > opts.PermutationLimit {
		return selected, 0
	}
	if opts.Estimator == nil {
		// Without overhead every ordering fits equally; keep the base.
		return selected, 0
	}

	best := make([]models.Suggestion, len(selected))
	bestCount := -1
	bestTravel := 0
	evaluated := 0

	perm := make([]models.Suggestion, len(selected))
	copy(perm, selected)
	permute(perm, 0, func(order []models.Suggestion) {
		evaluated++
		count, travelMin := simulate(wg, order, opts.Estimator)
		if count > bestCount || (count == bestCount && travelMin < bestTravel) {
			copy(best, order)
			bestCount = count
			bestTravel = travelMin
		}
	})

	return best, evaluated
}

// simulate counts how many tasks of the ordering fit back-to-back
// from the gap cursor, and the travel minutes spent on the feasible
// prefix.
func simulate(wg *workingGap, order []models.Suggestion, est travel.Estimator) (int, int) {
	remaining := wg.remaining
	at := wg.at
	count := 0
	travelMin := 0
	for _, s := range order {
		overhead := estimate(est, at, s.Coord)
		if overhead+s.DurationMin > remaining {
			break
		}
		remaining -= overhead + s.DurationMin
		travelMin += overhead
		count++
		if s.Coord != nil {
			at = s.Coord
		}
	}
	return count, travelMin
}

// permute visits every permutation of items in a fixed deterministic
// order; the identity ordering is visited first.
func permute(items []models.Suggestion, k int, visit func([]models.Suggestion)) {
	if k == len(items) {
		visit(items)
		return
	}
	for i := k; i < len(items); i++ {
		items[k], items[i] = items[i], items[k]
		permute(items, k+1, visit)
		items[k], items[i] = items[i], items[k]
	}
}

func estimate(est travel.Estimator, from, to *models.Coordinate) int {
	if est == nil {
		return 0
	}
	return est.Minutes(from, to)
}
