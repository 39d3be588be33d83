package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ksakurai/memoplan/internal/config"
	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/storage"
)

const testDate = "2025-03-10"

func newTestContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()

	store := storage.NewJSONStore(filepath.Join(dir, "memoplan.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("store init failed: %v", err)
	}

	// No file on disk: Load falls back to defaults.
	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	return &Context{Store: store, Config: cfg}
}

func addBacklogTask(t *testing.T, ctx *Context, id string) {
	t.Helper()
	err := ctx.Store.AddTask(models.Task{
		ID:                 id,
		Title:              id,
		Kind:               models.TaskKindBacklog,
		CreatedAt:          time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC),
		LocationPreference: models.PreferNone,
	})
	if err != nil {
		t.Fatalf("AddTask(%s) failed: %v", id, err)
	}
}

func writeDayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing day file failed: %v", err)
	}
	return path
}

func dayState(t *testing.T, ctx *Context) storage.DayState {
	t.Helper()
	state, err := ctx.Store.GetDayState(testDate)
	if err != nil {
		t.Fatalf("GetDayState failed: %v", err)
	}
	return state
}

// Mutation commands rebuild the committed plan immediately: an
// accepted block leaves the suggestion list, and a skipped memo frees
// its slot, without another plan run in between.
func TestMutationCommandsRebuildThePlan(t *testing.T) {
	ctx := newTestContext(t)
	addBacklogTask(t, ctx, "t1")
	addBacklogTask(t, ctx, "t2")

	dayFile := writeDayFile(t, `{"gaps":[{"id":"g","start":"10:00","end":"11:00"}]}`)
	plan := &PlanCmd{DayFile: dayFile, Date: testDate}
	if err := plan.Run(ctx); err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	state := dayState(t, ctx)
	if len(state.Schedule.Scheduled) != 2 {
		t.Fatalf("expected both tasks scheduled, got %+v", state.Schedule.Scheduled)
	}
	if len(state.DayGaps) != 1 || state.DayGaps[0].ID != "g" {
		t.Fatalf("day inputs must be persisted with the state, got %+v", state.DayGaps)
	}

	accept := &AcceptCmd{ID: "t1", Date: testDate}
	if err := accept.Run(ctx); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	state = dayState(t, ctx)
	if len(state.Accepted) != 1 || state.Accepted[0].MemoID != "t1" {
		t.Fatalf("t1 must be accepted, got %+v", state.Accepted)
	}
	for _, b := range state.Schedule.Scheduled {
		if b.MemoID == "t1" {
			t.Errorf("accepted memo must leave the scheduled list, got %+v", state.Schedule.Scheduled)
		}
	}
	if len(state.Schedule.Scheduled) != 1 || state.Schedule.Scheduled[0].MemoID != "t2" {
		t.Fatalf("t2 should be rescheduled around the accepted block, got %+v", state.Schedule.Scheduled)
	}
	if got := state.Schedule.Scheduled[0].Start; got != 10*60+30 {
		t.Errorf("t2 should start where the accepted block ends, got %d", got)
	}

	skip := &SkipCmd{ID: "t2", Date: testDate}
	if err := skip.Run(ctx); err != nil {
		t.Fatalf("skip failed: %v", err)
	}

	state = dayState(t, ctx)
	if len(state.Schedule.Scheduled) != 0 {
		t.Errorf("skipping the only remaining memo must empty the schedule, got %+v", state.Schedule.Scheduled)
	}
	if len(state.Skipped) != 1 || state.Skipped[0] != "t2" {
		t.Errorf("skip set = %v, want [t2]", state.Skipped)
	}
}

// Deleting an accepted block hands its interval back to the pool on
// the spot.
func TestDeleteCommandReschedulesFreedTime(t *testing.T) {
	ctx := newTestContext(t)
	addBacklogTask(t, ctx, "t1")

	dayFile := writeDayFile(t, `{"gaps":[{"id":"g","start":"10:00","end":"11:00"}]}`)
	if err := (&PlanCmd{DayFile: dayFile, Date: testDate}).Run(ctx); err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if err := (&AcceptCmd{ID: "t1", Date: testDate}).Run(ctx); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if err := (&DeleteCmd{ID: "t1", Date: testDate}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	state := dayState(t, ctx)
	if len(state.Accepted) != 0 {
		t.Errorf("accepted list should be empty, got %+v", state.Accepted)
	}
	if len(state.Schedule.Scheduled) != 1 || state.Schedule.Scheduled[0].MemoID != "t1" {
		t.Errorf("freed memo should be rescheduled immediately, got %+v", state.Schedule.Scheduled)
	}
	if state.Schedule.Scheduled[0].GapID != "g" {
		t.Errorf("gap should be whole again, got %q", state.Schedule.Scheduled[0].GapID)
	}
}
