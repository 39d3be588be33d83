// Package engine runs the full suggestion pipeline: task filtering
// and period upkeep, optional external enrichment, scoring, gap
// labeling, and allocation. The engine holds no mutable state between
// runs; every run is a pure function of its input plus configuration.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ksakurai/memoplan/internal/enrichment"
	"github.com/ksakurai/memoplan/internal/gaps"
	"github.com/ksakurai/memoplan/internal/logger"
	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/period"
	"github.com/ksakurai/memoplan/internal/scheduler"
	"github.com/ksakurai/memoplan/internal/scorer"
)

// Enricher fills in task metadata from an external collaborator.
// Implementations may be slow or flaky; the engine absorbs failures.
type Enricher interface {
	Enrich(ctx context.Context, req enrichment.Request) (enrichment.Fields, error)
}

// Config assembles the pipeline's tunables.
type Config struct {
	Scorer    scorer.Config
	Gaps      gaps.Config
	Scheduler scheduler.Options

	// EnrichmentDelay is the pause between consecutive collaborator
	// calls within one run.
	EnrichmentDelay time.Duration
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Scorer:          scorer.DefaultConfig(),
		Gaps:            gaps.DefaultConfig(),
		Scheduler:       scheduler.DefaultOptions(),
		EnrichmentDelay: 500 * time.Millisecond,
	}
}

// Engine is the assembled pipeline. Construct with New; the zero value
// is not usable.
type Engine struct {
	scorer   *scorer.Scorer
	gapsCfg  gaps.Config
	schedOpt scheduler.Options
	enricher Enricher
	delay    time.Duration
}

// New builds an engine. A nil enricher disables external enrichment
// entirely.
func New(cfg Config, enricher Enricher) (*Engine, error) {
	sc, err := scorer.New(cfg.Scorer)
	if err != nil {
		return nil, fmt.Errorf("invalid scorer config: %w", err)
	}
	return &Engine{
		scorer:   sc,
		gapsCfg:  cfg.Gaps,
		schedOpt: cfg.Scheduler,
		enricher: enricher,
		delay:    cfg.EnrichmentDelay,
	}, nil
}

// Input is one run's worth of user data.
type Input struct {
	Tasks  []models.Task
	Gaps   []models.Gap
	Events []models.Event
	Now    time.Time
}

// Options tweaks a single run.
type Options struct {
	// SkipExternalEnrichment suppresses collaborator calls even when an
	// enricher is configured.
	SkipExternalEnrichment bool
}

// Result is everything one run produced. Tasks carries updated copies
// (period resets applied, enriched fields merged); the caller decides
// whether to persist them.
type Result struct {
	Tasks       []models.Task
	Suggestions []models.Suggestion
	Gaps        []models.Gap
	Schedule    models.ScheduleResult
	Summary     models.PipelineSummary
}

// GenerateSchedule runs the pipeline once. Collaborator failures are
// logged and absorbed; a malformed task or bad configuration aborts
// the run.
func (e *Engine) GenerateSchedule(ctx context.Context, in Input, opts Options) (Result, error) {
	started := time.Now()

	tasks := make([]models.Task, len(in.Tasks))
	copy(tasks, in.Tasks)

	eligible := make([]int, 0, len(tasks))
	for i := range tasks {
		if tasks[i].Completed() {
			continue
		}
		tasks[i] = period.ResetIfNeeded(tasks[i], in.Now)
		eligible = append(eligible, i)
	}

	enriched := 0
	if e.enricher != nil && !opts.SkipExternalEnrichment {
		enriched = e.enrichTasks(ctx, tasks, eligible)
	}

	suggestions := make([]models.Suggestion, 0, len(eligible))
	for _, i := range eligible {
		s, err := e.scorer.Score(tasks[i], in.Now)
		if err != nil {
			return Result{}, fmt.Errorf("failed to score task %q: %w", tasks[i].ID, err)
		}
		suggestions = append(suggestions, s)
	}

	labeled := gaps.Enrich(in.Gaps, in.Events, e.gapsCfg)

	schedule, err := scheduler.Schedule(suggestions, labeled, e.schedOpt)
	if err != nil {
		return Result{}, err
	}

	summary := models.PipelineSummary{
		ExecutionTime:    time.Since(started),
		TaskCount:        len(in.Tasks),
		EligibleCount:    len(eligible),
		SuggestionCount:  len(suggestions),
		GapCount:         len(labeled),
		ScheduledCount:   len(schedule.Scheduled),
		DroppedCount:     len(schedule.Dropped),
		MandatoryDropped: len(schedule.MandatoryDropped),
		EnrichedCount:    enriched,
	}

	logger.Debug("pipeline run finished",
		"tasks", summary.TaskCount,
		"scheduled", summary.ScheduledCount,
		"dropped", summary.DroppedCount,
		"elapsed", summary.ExecutionTime,
	)

	return Result{
		Tasks:       tasks,
		Suggestions: suggestions,
		Gaps:        labeled,
		Schedule:    schedule,
		Summary:     summary,
	}, nil
}

// enrichTasks calls the collaborator for every eligible task that is
// still missing metadata, sequentially with the configured delay
// between calls. Returns the number of tasks that received fields.
func (e *Engine) enrichTasks(ctx context.Context, tasks []models.Task, eligible []int) int {
	enriched := 0
	first := true
	for _, i := range eligible {
		if !needsEnrichment(tasks[i]) {
			continue
		}
		if !first && e.delay > 0 {
			select {
			case <-ctx.Done():
				logger.Warn("enrichment cancelled", "error", ctx.Err())
				return enriched
			case <-time.After(e.delay):
			}
		}
		first = false

		fields, err := e.enricher.Enrich(ctx, enrichment.NewRequest(tasks[i]))
		if err != nil {
			logger.Warn("enrichment failed, keeping task as-is", "task", tasks[i].ID, "error", err)
			continue
		}
		enrichment.Merge(&tasks[i], fields)
		enriched++
	}
	return enriched
}

func needsEnrichment(t models.Task) bool {
	return t.Genre == "" || t.Importance == "" || t.SessionDurationMin == 0 || t.TotalDurationMin == 0
}

// SessionOutcome reports what a completed work session did to a task.
type SessionOutcome struct {
	// IsNowComplete is set when the task's total duration target has
	// been reached and the task was marked completed.
	IsNowComplete bool
	// GoalReached is set for routine tasks whose per-period target is
	// now met.
	GoalReached bool
}

// MarkSessionComplete records minutes of work against a task: time
// spent accumulates, the period counter advances for routines, and the
// task flips to completed once its total duration target is met.
func MarkSessionComplete(task models.Task, minutes int, now time.Time) (models.Task, SessionOutcome, error) {
	if minutes <= 0 {
		return task, SessionOutcome{}, fmt.Errorf("session minutes must be positive, got %d", minutes)
	}
	if task.Completed() {
		return task, SessionOutcome{}, fmt.Errorf("task %q is already completed", task.ID)
	}

	task = period.RecordCompletion(task, now)
	task.Status.TimeSpentMin += minutes

	var out SessionOutcome
	switch task.Kind {
	case models.TaskKindRoutine:
		// Routines recur; they never flip to completed on their own.
		task.Status.CompletionState = models.StateInProgress
		out.GoalReached = task.Goal != nil && task.Status.CompletionsThisPeriod >= task.Goal.TargetCount
	default:
		if task.TotalDurationMin > 0 && task.Status.TimeSpentMin >= task.TotalDurationMin {
			task.Status.CompletionState = models.StateCompleted
			out.IsNowComplete = true
		} else {
			task.Status.CompletionState = models.StateInProgress
		}
	}

	return task, out, nil
}
