package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ksakurai/memoplan/internal/enrichment"
	"github.com/ksakurai/memoplan/internal/models"
)

var testNow = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC) // a Monday

func newTestEngine(t *testing.T, enricher Enricher) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EnrichmentDelay = 0
	e, err := New(cfg, enricher)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func deadlineTask(id string, due time.Time) models.Task {
	return models.Task{
		ID:        id,
		Title:     id,
		Kind:      models.TaskKindDeadline,
		CreatedAt: testNow.AddDate(0, 0, -7),
		Deadline:  &due,
	}
}

func mkGap(t *testing.T, id string, start, end int, loc models.GapLocation) models.Gap {
	t.Helper()
	g, err := models.NewGap(id, start, end, loc)
	if err != nil {
		t.Fatalf("NewGap failed: %v", err)
	}
	return g
}

func TestGenerateSchedule_EndToEnd(t *testing.T) {
	e := newTestEngine(t, nil)

	in := Input{
		Tasks: []models.Task{
			deadlineTask("due-today", testNow),
			{
				ID: "read", Title: "read", Kind: models.TaskKindBacklog,
				CreatedAt: testNow.AddDate(0, 0, -10),
			},
		},
		Gaps: []models.Gap{
			mkGap(t, "morning", 7*60, 8*60, ""),
			mkGap(t, "evening", 19*60, 21*60, ""),
		},
		Now: testNow,
	}

	res, err := e.GenerateSchedule(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if res.Summary.TaskCount != 2 || res.Summary.EligibleCount != 2 {
		t.Errorf("summary counts wrong: %+v", res.Summary)
	}
	if len(res.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(res.Suggestions))
	}
	// Both gaps lack labels and neighbors: time-of-day fallback labels
	// them home.
	for _, g := range res.Gaps {
		if g.Location != models.LocationHome {
			t.Errorf("gap %s should fall back to home, got %q", g.ID, g.Location)
		}
	}
	if len(res.Schedule.MandatoryDropped) != 0 {
		t.Errorf("due-today task must be placed, got mandatoryDropped %v", res.Schedule.MandatoryDropped)
	}
	if res.Summary.ScheduledCount != len(res.Schedule.Scheduled) {
		t.Errorf("summary scheduled count out of sync")
	}
}

func TestGenerateSchedule_SkipsCompletedTasks(t *testing.T) {
	e := newTestEngine(t, nil)

	done := deadlineTask("done", testNow)
	done.Status.CompletionState = models.StateCompleted

	in := Input{
		Tasks: []models.Task{done, deadlineTask("open", testNow)},
		Gaps:  []models.Gap{mkGap(t, "g", 9*60, 12*60, models.LocationHome)},
		Now:   testNow,
	}

	res, err := e.GenerateSchedule(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if res.Summary.EligibleCount != 1 || len(res.Suggestions) != 1 {
		t.Errorf("completed task must not be scored: eligible=%d suggestions=%d",
			res.Summary.EligibleCount, len(res.Suggestions))
	}
	if res.Suggestions[0].MemoID != "open" {
		t.Errorf("wrong task scored: %s", res.Suggestions[0].MemoID)
	}
}

func TestGenerateSchedule_ResetsRoutinePeriods(t *testing.T) {
	e := newTestEngine(t, nil)

	lastWeek := testNow.AddDate(0, 0, -7)
	routine := models.Task{
		ID: "run", Title: "run", Kind: models.TaskKindRoutine,
		CreatedAt: testNow.AddDate(0, 0, -30),
		Goal:      &models.RecurrenceGoal{TargetCount: 3, Period: models.PeriodWeek},
		Status: models.TaskStatus{
			CompletionsThisPeriod: 3,
			PeriodStart:           &lastWeek,
		},
	}

	in := Input{
		Tasks: []models.Task{routine},
		Gaps:  []models.Gap{mkGap(t, "g", 9*60, 12*60, models.LocationHome)},
		Now:   testNow,
	}

	res, err := e.GenerateSchedule(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if res.Tasks[0].Status.CompletionsThisPeriod != 0 {
		t.Errorf("week boundary crossed, counter should reset, got %d",
			res.Tasks[0].Status.CompletionsThisPeriod)
	}
}

type stubEnricher struct {
	fields enrichment.Fields
	err    error
	calls  []string
}

func (s *stubEnricher) Enrich(_ context.Context, req enrichment.Request) (enrichment.Fields, error) {
	s.calls = append(s.calls, req.ID)
	return s.fields, s.err
}

func TestGenerateSchedule_EnrichmentMergesFields(t *testing.T) {
	stub := &stubEnricher{fields: enrichment.Fields{
		Genre:              "errand",
		Importance:         "high",
		SessionDurationMin: 20,
		TotalDurationMin:   60,
	}}
	e := newTestEngine(t, stub)

	bare := models.Task{ID: "bare", Title: "bare", Kind: models.TaskKindBacklog, CreatedAt: testNow}
	full := models.Task{
		ID: "full", Title: "full", Kind: models.TaskKindBacklog, CreatedAt: testNow,
		Genre: "study", Importance: models.ImportanceLow,
		SessionDurationMin: 30, TotalDurationMin: 90,
	}

	in := Input{
		Tasks: []models.Task{bare, full},
		Gaps:  []models.Gap{mkGap(t, "g", 9*60, 12*60, models.LocationHome)},
		Now:   testNow,
	}

	res, err := e.GenerateSchedule(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if len(stub.calls) != 1 || stub.calls[0] != "bare" {
		t.Errorf("only the incomplete task should be sent, calls = %v", stub.calls)
	}
	if res.Summary.EnrichedCount != 1 {
		t.Errorf("EnrichedCount = %d, want 1", res.Summary.EnrichedCount)
	}

	var got models.Task
	for _, task := range res.Tasks {
		if task.ID == "bare" {
			got = task
		}
	}
	if got.Genre != "errand" || got.Importance != models.ImportanceHigh || got.SessionDurationMin != 20 {
		t.Errorf("enriched fields not merged: %+v", got)
	}

	for _, task := range res.Tasks {
		if task.ID == "full" && task.Genre != "study" {
			t.Errorf("user-set fields must survive, got %+v", task)
		}
	}
}

func TestGenerateSchedule_EnrichmentFailureIsAbsorbed(t *testing.T) {
	stub := &stubEnricher{err: errors.New("service down")}
	e := newTestEngine(t, stub)

	in := Input{
		Tasks: []models.Task{{ID: "t", Title: "t", Kind: models.TaskKindBacklog, CreatedAt: testNow}},
		Gaps:  []models.Gap{mkGap(t, "g", 9*60, 12*60, models.LocationHome)},
		Now:   testNow,
	}

	res, err := e.GenerateSchedule(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("collaborator failure must not abort the run: %v", err)
	}
	if res.Summary.EnrichedCount != 0 {
		t.Errorf("failed enrichment must not count, got %d", res.Summary.EnrichedCount)
	}
	if len(res.Suggestions) != 1 {
		t.Errorf("task should still be scored with defaults")
	}
}

func TestGenerateSchedule_SkipExternalEnrichment(t *testing.T) {
	stub := &stubEnricher{}
	e := newTestEngine(t, stub)

	in := Input{
		Tasks: []models.Task{{ID: "t", Title: "t", Kind: models.TaskKindBacklog, CreatedAt: testNow}},
		Gaps:  []models.Gap{mkGap(t, "g", 9*60, 12*60, models.LocationHome)},
		Now:   testNow,
	}

	if _, err := e.GenerateSchedule(context.Background(), in, Options{SkipExternalEnrichment: true}); err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Errorf("enricher must not be called when skipped, calls = %v", stub.calls)
	}
}

func TestGenerateSchedule_MalformedTaskAborts(t *testing.T) {
	e := newTestEngine(t, nil)

	in := Input{
		Tasks: []models.Task{{ID: "bad", Title: "bad", Kind: models.TaskKindDeadline, CreatedAt: testNow}},
		Gaps:  []models.Gap{mkGap(t, "g", 9*60, 12*60, models.LocationHome)},
		Now:   testNow,
	}

	if _, err := e.GenerateSchedule(context.Background(), in, Options{}); err == nil {
		t.Errorf("deadline task without a deadline must abort the run")
	}
}

func TestMarkSessionComplete(t *testing.T) {
	task := models.Task{
		ID: "t", Title: "t", Kind: models.TaskKindBacklog, CreatedAt: testNow,
		TotalDurationMin: 60,
		Status:           models.TaskStatus{TimeSpentMin: 30},
	}

	got, out, err := MarkSessionComplete(task, 20, testNow)
	if err != nil {
		t.Fatalf("MarkSessionComplete failed: %v", err)
	}
	if got.Status.TimeSpentMin != 50 {
		t.Errorf("TimeSpentMin = %d, want 50", got.Status.TimeSpentMin)
	}
	if out.IsNowComplete || got.Completed() {
		t.Errorf("50 of 60 minutes must not complete the task")
	}
	if got.LastActivity == nil || !got.LastActivity.Equal(testNow) {
		t.Errorf("LastActivity should be stamped")
	}

	got, out, err = MarkSessionComplete(got, 10, testNow)
	if err != nil {
		t.Fatalf("MarkSessionComplete failed: %v", err)
	}
	if !out.IsNowComplete || !got.Completed() {
		t.Errorf("reaching the total duration must complete the task")
	}

	if _, _, err := MarkSessionComplete(got, 10, testNow); err == nil {
		t.Errorf("completed task must reject further sessions")
	}
}

func TestMarkSessionComplete_RoutineGoal(t *testing.T) {
	start := testNow
	task := models.Task{
		ID: "run", Title: "run", Kind: models.TaskKindRoutine, CreatedAt: testNow,
		Goal: &models.RecurrenceGoal{TargetCount: 2, Period: models.PeriodWeek},
		Status: models.TaskStatus{
			CompletionsThisPeriod: 1,
			PeriodStart:           &start,
		},
	}

	got, out, err := MarkSessionComplete(task, 30, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("MarkSessionComplete failed: %v", err)
	}
	if !out.GoalReached {
		t.Errorf("second completion of two should reach the goal")
	}
	if got.Completed() {
		t.Errorf("routines must stay open after the goal is met")
	}
	if got.Status.CompletionsThisPeriod != 2 {
		t.Errorf("CompletionsThisPeriod = %d, want 2", got.Status.CompletionsThisPeriod)
	}
}

func TestMarkSessionComplete_RejectsBadMinutes(t *testing.T) {
	task := models.Task{ID: "t", Kind: models.TaskKindBacklog, CreatedAt: testNow}
	if _, _, err := MarkSessionComplete(task, 0, testNow); err == nil {
		t.Errorf("zero minutes must be rejected")
	}
}
