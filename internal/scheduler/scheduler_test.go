package scheduler

import (
	"reflect"
	"testing"

	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/travel"
)

func gap(t *testing.T, id string, start, end int, loc models.GapLocation) models.Gap {
	t.Helper()
	g, err := models.NewGap(id, start, end, loc)
	if err != nil {
		t.Fatalf("NewGap failed: %v", err)
	}
	return g
}

func TestSchedule_MandatoryFillsGapFromStart(t *testing.T) {
	// A deadline task due today in a single 30-minute home gap.
	sug := models.Suggestion{
		ID: "s1", MemoID: "m1", Need: 1.0, Importance: 0.6,
		DurationMin: 30, LocationPreference: models.PreferNone,
	}
	g := gap(t, "g1", 9*60, 9*60+30, models.LocationHome)

	res, err := Schedule([]models.Suggestion{sug}, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if len(res.MandatoryDropped) != 0 {
		t.Fatalf("mandatoryDropped should be empty, got %v", res.MandatoryDropped)
	}
	if len(res.Scheduled) != 1 {
		t.Fatalf("expected 1 block, got %d", len(res.Scheduled))
	}
	b := res.Scheduled[0]
	if b.Start != 9*60 || b.End != 9*60+30 {
		t.Errorf("block should fill the gap from its start, got %d-%d", b.Start, b.End)
	}
	if b.End-b.Start != b.DurationMin {
		t.Errorf("block end-start must equal duration")
	}
}

func TestSchedule_TwoBacklogCompeteForOneGap(t *testing.T) {
	// Two 40-minute backlog suggestions for one 50-minute gap: exactly
	// one is scheduled, the higher-priority one.
	a := models.Suggestion{ID: "a", MemoID: "a", Need: 0.5, Importance: 1.0, DurationMin: 40, LocationPreference: models.PreferNone}
	b := models.Suggestion{ID: "b", MemoID: "b", Need: 0.5, Importance: 0.6, DurationMin: 40, LocationPreference: models.PreferNone}
	g := gap(t, "g1", 10*60, 10*60+50, models.LocationUnknown)

	res, err := Schedule([]models.Suggestion{a, b}, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if len(res.Scheduled) != 1 {
		t.Fatalf("expected exactly 1 scheduled, got %d", len(res.Scheduled))
	}
	if res.Scheduled[0].SuggestionID != "a" {
		t.Errorf("higher priority suggestion should win, got %s", res.Scheduled[0].SuggestionID)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].ID != "b" {
		t.Errorf("the loser must appear in dropped, got %v", res.Dropped)
	}
}

func TestSchedule_MandatoryDroppedWhenNothingFits(t *testing.T) {
	sug := models.Suggestion{ID: "s1", MemoID: "m1", Need: 1.2, Importance: 1.0, DurationMin: 120, LocationPreference: models.PreferNone}
	g := gap(t, "g1", 9*60, 10*60, models.LocationHome)

	res, err := Schedule([]models.Suggestion{sug}, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("mandatory drop must not be an error: %v", err)
	}
	if len(res.MandatoryDropped) != 1 || res.MandatoryDropped[0].ID != "s1" {
		t.Errorf("expected s1 in mandatoryDropped, got %v", res.MandatoryDropped)
	}
	if len(res.Scheduled) != 0 {
		t.Errorf("nothing should be scheduled")
	}
}

func TestSchedule_MandatoryAccounting(t *testing.T) {
	// Every mandatory suggestion lands in exactly one of scheduled or
	// mandatoryDropped.
	suggestions := []models.Suggestion{
		{ID: "m1", MemoID: "m1", Need: 1.0, Importance: 0.6, DurationMin: 45, LocationPreference: models.PreferNone},
		{ID: "m2", MemoID: "m2", Need: 1.0, Importance: 1.0, DurationMin: 45, LocationPreference: models.PreferNone},
		{ID: "m3", MemoID: "m3", Need: 1.0, Importance: 0.3, DurationMin: 45, LocationPreference: models.PreferNone},
	}
	g := gap(t, "g1", 9*60, 10*60+30, models.LocationHome) // fits two

	res, err := Schedule(suggestions, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	seen := map[string]int{}
	for _, b := range res.Scheduled {
		seen[b.SuggestionID]++
	}
	for _, s := range res.MandatoryDropped {
		seen[s.ID]++
	}
	for _, id := range []string{"m1", "m2", "m3"} {
		if seen[id] != 1 {
			t.Errorf("suggestion %s counted %d times across scheduled+mandatoryDropped, want exactly 1", id, seen[id])
		}
	}
}

func TestSchedule_CapacityAndNonOverlap(t *testing.T) {
	suggestions := []models.Suggestion{
		{ID: "s1", MemoID: "s1", Need: 0.7, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNone},
		{ID: "s2", MemoID: "s2", Need: 0.6, Importance: 0.6, DurationMin: 25, LocationPreference: models.PreferNone},
		{ID: "s3", MemoID: "s3", Need: 0.5, Importance: 0.6, DurationMin: 40, LocationPreference: models.PreferNone},
		{ID: "s4", MemoID: "s4", Need: 0.4, Importance: 0.3, DurationMin: 50, LocationPreference: models.PreferNone},
	}
	gapsIn := []models.Gap{
		gap(t, "g1", 9*60, 10*60, models.LocationHome),
		gap(t, "g2", 13*60, 14*60+10, models.LocationUnknown),
	}

	res, err := Schedule(suggestions, gapsIn, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	perGap := map[string][]models.ScheduledBlock{}
	for _, b := range res.Scheduled {
		perGap[b.GapID] = append(perGap[b.GapID], b)
	}
	for _, g := range gapsIn {
		total := 0
		blocks := perGap[g.ID]
		for i, b := range blocks {
			total += b.DurationMin
			if b.Start < g.Start || b.End > g.End {
				t.Errorf("block %s outside gap %s bounds", b.SuggestionID, g.ID)
			}
			for _, other := range blocks[i+1:] {
				if b.Start < other.End && other.Start < b.End {
					t.Errorf("blocks %s and %s overlap in gap %s", b.SuggestionID, other.SuggestionID, g.ID)
				}
			}
		}
		if total > g.Duration() {
			t.Errorf("gap %s capacity exceeded: %d > %d", g.ID, total, g.Duration())
		}
	}
}

func TestSchedule_LocationFiltering(t *testing.T) {
	homebody := models.Suggestion{ID: "h", MemoID: "h", Need: 0.9, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNearHome}
	g := gap(t, "work", 9*60, 11*60, models.LocationWorkplace)

	res, err := Schedule([]models.Suggestion{homebody}, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(res.Scheduled) != 0 {
		t.Errorf("near_home suggestion must not land in a workplace gap")
	}
	if len(res.Dropped) != 1 {
		t.Errorf("incompatible suggestion should be dropped, got %v", res.Dropped)
	}
}

func TestSchedule_KnapsackPicksBestSubset(t *testing.T) {
	// 60-minute gap. One 60-minute item of priority 0.5 vs two
	// 30-minute items of priority 0.35 each: the pair wins.
	big := models.Suggestion{ID: "big", MemoID: "big", Need: 0.5, Importance: 1.0, DurationMin: 60, LocationPreference: models.PreferNone}
	a := models.Suggestion{ID: "a", MemoID: "a", Need: 0.35, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNone}
	b := models.Suggestion{ID: "b", MemoID: "b", Need: 0.35, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNone}
	g := gap(t, "g1", 9*60, 10*60, models.LocationUnknown)

	res, err := Schedule([]models.Suggestion{big, a, b}, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	ids := map[string]bool{}
	for _, blk := range res.Scheduled {
		ids[blk.SuggestionID] = true
	}
	if !ids["a"] || !ids["b"] || ids["big"] {
		t.Errorf("knapsack should pick the two small items, got %v", ids)
	}
}

func TestSchedule_TravelOverheadOrdering(t *testing.T) {
	// Three tasks on a line; the gap starts at the origin. Visiting in
	// coordinate order keeps all three feasible, while the naive
	// priority order wastes capacity on back-and-forth travel.
	est := travel.NewGridEstimator(3.0)

	near := &models.Coordinate{X: 1, Y: 0}   // 3 min from origin
	mid := &models.Coordinate{X: 5, Y: 0}    // 12 min from near
	far := &models.Coordinate{X: 10, Y: 0}   // 15 min from mid
	origin := &models.Coordinate{X: 0, Y: 0} // gap anchor

	suggestions := []models.Suggestion{
		{ID: "far", MemoID: "far", Need: 0.9, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNone, Coord: far},
		{ID: "mid", MemoID: "mid", Need: 0.8, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNone, Coord: mid},
		{ID: "near", MemoID: "near", Need: 0.7, Importance: 1.0, DurationMin: 30, LocationPreference: models.PreferNone, Coord: near},
	}
	g := gap(t, "g1", 9*60, 9*60+120, models.LocationUnknown)
	g.Coord = origin

	opts := DefaultOptions()
	opts.Estimator = est
	res, err := Schedule(suggestions, []models.Gap{g}, opts)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	// 3 x 30 min work + 30 min travel (3+12+15) fits in 120 only in
	// near -> mid -> far order.
	if len(res.Scheduled) != 3 {
		t.Fatalf("expected all three scheduled via ordering refinement, got %d", len(res.Scheduled))
	}
	order := []string{res.Scheduled[0].SuggestionID, res.Scheduled[1].SuggestionID, res.Scheduled[2].SuggestionID}
	if !reflect.DeepEqual(order, []string{"near", "mid", "far"}) {
		t.Errorf("expected travel-efficient order near,mid,far, got %v", order)
	}
	if res.TravelMin != 30 {
		t.Errorf("travel minutes = %d, want 30", res.TravelMin)
	}
	if res.PermutationsEvaluated == 0 {
		t.Errorf("permutation search should have run")
	}
}

func TestSchedule_TravelExhaustionDropsRestOfGap(t *testing.T) {
	// With the subset too large to permute, the priority order is kept
	// as-is. Once travel overhead makes a candidate infeasible, the
	// remainder of the gap's selection is dropped, even candidates that
	// would still fit on their own.
	est := travel.NewGridEstimator(3.0)
	away := &models.Coordinate{X: 10, Y: 0} // 30 min from origin

	suggestions := []models.Suggestion{
		{ID: "a", MemoID: "a", Need: 0.9, Importance: 1.0, DurationMin: 20, LocationPreference: models.PreferNone},
		{ID: "b", MemoID: "b", Need: 0.8, Importance: 1.0, DurationMin: 20, LocationPreference: models.PreferNone, Coord: away},
		{ID: "c", MemoID: "c", Need: 0.5, Importance: 1.0, DurationMin: 10, LocationPreference: models.PreferNone},
	}
	g := gap(t, "g1", 10*60, 11*60, models.LocationUnknown)
	g.Coord = &models.Coordinate{X: 0, Y: 0}

	opts := Options{PermutationLimit: 2, Estimator: est}
	res, err := Schedule(suggestions, []models.Gap{g}, opts)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	// a fits (20 of 60); b needs 30 travel + 20 work against the 40
	// remaining and fails; c is dropped with it despite fitting alone.
	if len(res.Scheduled) != 1 || res.Scheduled[0].SuggestionID != "a" {
		t.Fatalf("expected only a scheduled, got %+v", res.Scheduled)
	}
	dropped := map[string]bool{}
	for _, s := range res.Dropped {
		dropped[s.ID] = true
	}
	if len(res.Dropped) != 2 || !dropped["b"] || !dropped["c"] {
		t.Errorf("b and c must both be dropped, got %v", res.Dropped)
	}
	if res.TravelMin != 0 {
		t.Errorf("no travel was spent, got %d", res.TravelMin)
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	suggestions := []models.Suggestion{
		{ID: "s1", MemoID: "s1", Need: 0.5, Importance: 0.6, DurationMin: 30, LocationPreference: models.PreferNone},
		{ID: "s2", MemoID: "s2", Need: 0.5, Importance: 0.6, DurationMin: 30, LocationPreference: models.PreferNone},
		{ID: "s3", MemoID: "s3", Need: 0.9, Importance: 0.3, DurationMin: 45, LocationPreference: models.PreferNearHome},
	}
	gapsIn := []models.Gap{
		gap(t, "g1", 9*60, 10*60, models.LocationHome),
		gap(t, "g2", 12*60, 12*60+45, models.LocationUnknown),
	}

	first, err := Schedule(suggestions, gapsIn, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	second, err := Schedule(suggestions, gapsIn, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	first.Elapsed, second.Elapsed = 0, 0
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs must produce identical results:\n%+v\n%+v", first, second)
	}
}

func TestSchedule_EqualPriorityTieBreaksByID(t *testing.T) {
	a := models.Suggestion{ID: "aaa", MemoID: "aaa", Need: 0.5, Importance: 0.6, DurationMin: 40, LocationPreference: models.PreferNone}
	b := models.Suggestion{ID: "zzz", MemoID: "zzz", Need: 0.5, Importance: 0.6, DurationMin: 40, LocationPreference: models.PreferNone}
	g := gap(t, "g1", 9*60, 9*60+50, models.LocationUnknown)

	// Input order must not matter.
	res1, _ := Schedule([]models.Suggestion{a, b}, []models.Gap{g}, DefaultOptions())
	res2, _ := Schedule([]models.Suggestion{b, a}, []models.Gap{g}, DefaultOptions())

	if len(res1.Scheduled) != 1 || len(res2.Scheduled) != 1 {
		t.Fatalf("expected one block in each run")
	}
	if res1.Scheduled[0].SuggestionID != "aaa" || res2.Scheduled[0].SuggestionID != "aaa" {
		t.Errorf("tie must resolve to the lower suggestion ID in both runs")
	}
}

func TestSchedule_ConfigErrors(t *testing.T) {
	g := gap(t, "g1", 9*60, 10*60, models.LocationHome)
	s := models.Suggestion{ID: "s1", MemoID: "s1", Need: 0.5, Importance: 0.6, DurationMin: 30}

	if _, err := Schedule([]models.Suggestion{s}, []models.Gap{g}, Options{PermutationLimit: 0}); err == nil {
		t.Errorf("non-positive permutation limit must fail fast")
	}

	bad := models.Gap{ID: "bad", Start: 10 * 60, End: 10 * 60}
	if _, err := Schedule([]models.Suggestion{s}, []models.Gap{bad}, DefaultOptions()); err == nil {
		t.Errorf("zero-duration gap must fail fast")
	}

	zero := models.Suggestion{ID: "z", MemoID: "z", Need: 0.5, Importance: 0.6, DurationMin: 0}
	if _, err := Schedule([]models.Suggestion{zero}, []models.Gap{g}, DefaultOptions()); err == nil {
		t.Errorf("zero-duration suggestion must fail fast")
	}
}

func TestSchedule_TotalsAggregation(t *testing.T) {
	suggestions := []models.Suggestion{
		{ID: "s1", MemoID: "s1", Need: 0.7, Importance: 1.0, DurationMin: 40, LocationPreference: models.PreferNone},
		{ID: "s2", MemoID: "s2", Need: 0.6, Importance: 0.6, DurationMin: 40, LocationPreference: models.PreferNone},
		{ID: "m1", MemoID: "m1", Need: 1.1, Importance: 1.0, DurationMin: 500, LocationPreference: models.PreferNone},
	}
	g := gap(t, "g1", 9*60, 9*60+50, models.LocationUnknown)

	res, err := Schedule(suggestions, []models.Gap{g}, DefaultOptions())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if res.TotalScheduledMin != 40 {
		t.Errorf("TotalScheduledMin = %d, want 40", res.TotalScheduledMin)
	}
	// s2 (40) dropped + m1 (500) mandatory-dropped
	if res.TotalDroppedMin != 540 {
		t.Errorf("TotalDroppedMin = %d, want 540", res.TotalDroppedMin)
	}
}
