// Package planner wraps the engine with the interactive day-plan
// protocol: accepted suggestions become fixed obstacles, skipped ones
// leave the pool, blocks can be resized in place, and recomputation
// only commits when the plan actually changed.
package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/ksakurai/memoplan/internal/constants"
	"github.com/ksakurai/memoplan/internal/engine"
	"github.com/ksakurai/memoplan/internal/logger"
	"github.com/ksakurai/memoplan/internal/models"
)

// MutationResult is the outcome of one protocol operation. Mutations
// that cannot be applied report why instead of failing the program.
type MutationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`

	// MaxDurationMin is set on a failed resize: the largest duration
	// the surrounding window could have accommodated.
	MaxDurationMin int `json:"max_duration_min,omitempty"`
}

func ok() MutationResult { return MutationResult{OK: true} }

func fail(reason string) MutationResult { return MutationResult{Reason: reason} }

// Planner owns the mutable day-plan state on top of a stateless
// engine. It is not safe for concurrent use.
type Planner struct {
	eng *engine.Engine

	accepted []models.AcceptedSuggestion
	skipped  map[string]bool

	current     engine.Result
	fingerprint uint64
	committedAt time.Time

	lastGaps []models.Gap
}

// New builds a planner around an engine.
func New(eng *engine.Engine) *Planner {
	return &Planner{eng: eng, skipped: map[string]bool{}}
}

// Restore reloads persisted protocol state, typically at process start.
func (p *Planner) Restore(accepted []models.AcceptedSuggestion, skipped []string, current engine.Result) {
	p.accepted = append([]models.AcceptedSuggestion(nil), accepted...)
	p.skipped = make(map[string]bool, len(skipped))
	for _, id := range skipped {
		p.skipped[id] = true
	}
	p.current = current
	p.fingerprint = fingerprint(current.Schedule)
}

// Current returns the last committed plan.
func (p *Planner) Current() engine.Result { return p.current }

// Accepted returns the accepted suggestions in acceptance order.
func (p *Planner) Accepted() []models.AcceptedSuggestion {
	return append([]models.AcceptedSuggestion(nil), p.accepted...)
}

// Skipped returns the skipped memo IDs, sorted.
func (p *Planner) Skipped() []string {
	out := make([]string, 0, len(p.skipped))
	for id := range p.skipped {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CommittedAt returns when the current plan was last committed.
func (p *Planner) CommittedAt() time.Time { return p.committedAt }

// Regenerate recomputes the plan around the accepted obstacles and
// without the skipped memos. The result is committed only when it
// differs from the current plan; the returned flag reports whether a
// commit happened.
func (p *Planner) Regenerate(ctx context.Context, in engine.Input, opts engine.Options) (engine.Result, bool, error) {
	in.Gaps = p.availableGaps(in.Gaps)
	in.Tasks = p.eligibleTasks(in.Tasks)

	res, err := p.eng.GenerateSchedule(ctx, in, opts)
	if err != nil {
		return engine.Result{}, false, err
	}

	fp := fingerprint(res.Schedule)
	if p.fingerprint != 0 && fp == p.fingerprint {
		logger.Debug("plan unchanged, keeping committed result")
		return p.current, false, nil
	}

	p.current = res
	p.fingerprint = fp
	p.committedAt = in.Now
	p.lastGaps = in.Gaps
	return res, true, nil
}

// Accept pins a suggestion from the current plan. Accepted blocks
// survive future regenerations as fixed obstacles.
func (p *Planner) Accept(suggestionID string, now time.Time) MutationResult {
	for _, a := range p.accepted {
		if a.SuggestionID == suggestionID {
			return fail("suggestion already accepted")
		}
	}
	for _, b := range p.current.Schedule.Scheduled {
		if b.SuggestionID == suggestionID {
			p.accepted = append(p.accepted, models.AcceptedSuggestion{
				ScheduledBlock:      b,
				AcceptedAt:          now,
				OriginalDurationMin: b.DurationMin,
			})
			return ok()
		}
	}
	return fail("suggestion not in the current plan")
}

// Skip removes a memo from consideration for subsequent regenerations.
// Skipping is idempotent.
func (p *Planner) Skip(memoID string) MutationResult {
	p.skipped[memoID] = true
	return ok()
}

// Unskip returns a memo to the pool.
func (p *Planner) Unskip(memoID string) MutationResult {
	if !p.skipped[memoID] {
		return fail("memo is not skipped")
	}
	delete(p.skipped, memoID)
	return ok()
}

// Delete drops an accepted suggestion, freeing its interval for the
// next regeneration.
func (p *Planner) Delete(suggestionID string) MutationResult {
	for i, a := range p.accepted {
		if a.SuggestionID == suggestionID {
			p.accepted = append(p.accepted[:i], p.accepted[i+1:]...)
			return ok()
		}
	}
	return fail("suggestion is not accepted")
}

// Resize changes the duration of an accepted block, keeping its
// midpoint where possible. Requests below the 5-minute floor are
// rejected outright; the rest snap to 5-minute increments and are
// bounded by the gap edges and neighboring accepted blocks. An
// impossible request reports the achievable maximum.
func (p *Planner) Resize(suggestionID string, newDurationMin int) MutationResult {
	if newDurationMin < constants.ResizeSnapMin {
		return fail(fmt.Sprintf("duration must be at least %d minutes", constants.ResizeSnapMin))
	}

	idx := -1
	for i, a := range p.accepted {
		if a.SuggestionID == suggestionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fail("suggestion is not accepted")
	}
	block := p.accepted[idx].ScheduledBlock

	gap, found := p.findGap(block.GapID)
	if !found {
		return fail("containing gap is no longer known")
	}

	low, high := p.windowAround(block, gap)
	snapped := snapDuration(newDurationMin)

	if snapped > high-low {
		max := (high - low) / constants.ResizeSnapMin * constants.ResizeSnapMin
		r := fail(fmt.Sprintf("window allows at most %d minutes", max))
		r.MaxDurationMin = max
		return r
	}

	mid := (block.Start + block.End) / 2
	start := mid - snapped/2
	if start < low {
		start = low
	}
	if start+snapped > high {
		start = high - snapped
	}

	p.accepted[idx].Start = start
	p.accepted[idx].End = start + snapped
	p.accepted[idx].DurationMin = snapped
	return ok()
}

// availableGaps subtracts the accepted blocks from the raw gaps.
// Untouched gaps pass through as-is; fragments inherit the gap's label
// and coordinate, and slivers too small to hold anything are dropped.
func (p *Planner) availableGaps(raw []models.Gap) []models.Gap {
	if len(p.accepted) == 0 {
		return raw
	}

	out := make([]models.Gap, 0, len(raw))
	for _, g := range raw {
		var blockers []models.ScheduledBlock
		for _, a := range p.accepted {
			if baseGapID(a.GapID) == g.ID && a.Start < g.End && a.End > g.Start {
				blockers = append(blockers, a.ScheduledBlock)
			}
		}
		if len(blockers) == 0 {
			out = append(out, g)
			continue
		}
		sort.Slice(blockers, func(i, j int) bool { return blockers[i].Start < blockers[j].Start })

		cursor := g.Start
		n := 0
		emit := func(start, end int) {
			if end-start < constants.MinViableGapMin {
				return
			}
			frag := g
			frag.ID = fmt.Sprintf("%s#%d", g.ID, n)
			frag.Start = start
			frag.End = end
			out = append(out, frag)
			n++
		}
		for _, b := range blockers {
			if b.Start > cursor {
				emit(cursor, b.Start)
			}
			if b.End > cursor {
				cursor = b.End
			}
		}
		if cursor < g.End {
			emit(cursor, g.End)
		}
	}
	return out
}

// eligibleTasks removes skipped memos and memos that already hold an
// accepted block from the regeneration pool.
func (p *Planner) eligibleTasks(tasks []models.Task) []models.Task {
	if len(p.skipped) == 0 && len(p.accepted) == 0 {
		return tasks
	}
	pinned := make(map[string]bool, len(p.accepted))
	for _, a := range p.accepted {
		pinned[a.MemoID] = true
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !p.skipped[t.ID] && !pinned[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// findGap resolves a block's gap ID against the gaps of the last
// committed run, falling back to the base gap of a fragment ID.
func (p *Planner) findGap(gapID string) (models.Gap, bool) {
	for _, g := range p.current.Gaps {
		if g.ID == gapID {
			return g, true
		}
	}
	base := baseGapID(gapID)
	for _, g := range p.current.Gaps {
		if baseGapID(g.ID) == base {
			return g, true
		}
	}
	for _, g := range p.lastGaps {
		if g.ID == gapID || baseGapID(g.ID) == base {
			return g, true
		}
	}
	return models.Gap{}, false
}

// windowAround computes the free interval a block may grow into:
// bounded by its gap's edges and the nearest other accepted block on
// each side.
func (p *Planner) windowAround(block models.ScheduledBlock, gap models.Gap) (int, int) {
	low, high := gap.Start, gap.End
	for _, a := range p.accepted {
		if a.SuggestionID == block.SuggestionID || baseGapID(a.GapID) != baseGapID(block.GapID) {
			continue
		}
		if a.End <= block.Start && a.End > low {
			low = a.End
		}
		if a.Start >= block.End && a.Start < high {
			high = a.Start
		}
	}
	return low, high
}

// snapDuration rounds to the nearest 5-minute increment, never below
// the minimum viable size.
func snapDuration(min int) int {
	snapped := (min + constants.ResizeSnapMin/2) / constants.ResizeSnapMin * constants.ResizeSnapMin
	if snapped < constants.ResizeSnapMin {
		snapped = constants.ResizeSnapMin
	}
	return snapped
}

func baseGapID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '#' {
			return id[:i]
		}
	}
	return id
}

// fingerprint canonicalizes a schedule so that regeneration can detect
// a genuinely unchanged plan. Timing metadata is excluded.
func fingerprint(res models.ScheduleResult) uint64 {
	canonical := struct {
		Scheduled        []models.ScheduledBlock
		Dropped          []string
		MandatoryDropped []string
	}{Scheduled: res.Scheduled}
	for _, s := range res.Dropped {
		canonical.Dropped = append(canonical.Dropped, s.ID)
	}
	for _, s := range res.MandatoryDropped {
		canonical.MandatoryDropped = append(canonical.MandatoryDropped, s.ID)
	}
	sort.Strings(canonical.Dropped)
	sort.Strings(canonical.MandatoryDropped)

	h, err := hashstructure.Hash(canonical, hashstructure.FormatV2, nil)
	if err != nil {
		// Hashing plain structs cannot fail; commit unconditionally if
		// it somehow does.
		logger.Warn("failed to fingerprint schedule", "error", err)
		return 0
	}
	return h
}
