package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ksakurai/memoplan/internal/config"
	"github.com/ksakurai/memoplan/internal/engine"
	"github.com/ksakurai/memoplan/internal/enrichment"
	"github.com/ksakurai/memoplan/internal/gaps"
	"github.com/ksakurai/memoplan/internal/keyring"
	"github.com/ksakurai/memoplan/internal/logger"
	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/planner"
	"github.com/ksakurai/memoplan/internal/scheduler"
	"github.com/ksakurai/memoplan/internal/scorer"
	"github.com/ksakurai/memoplan/internal/storage"
	"github.com/ksakurai/memoplan/internal/travel"
	"github.com/ksakurai/memoplan/internal/utils"
)

type Context struct {
	Store  storage.Provider
	Config *config.AppConfig
}

// buildEngine assembles the pipeline from the loaded configuration.
// A missing or unreadable API key downgrades to local-only enrichment
// rather than failing the command.
func (ctx *Context) buildEngine() (*engine.Engine, error) {
	morningEnd, err := utils.ParseTimeToMinutes(ctx.Config.Day.MorningEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid day.morning_end: %w", err)
	}
	eveningStart, err := utils.ParseTimeToMinutes(ctx.Config.Day.EveningStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day.evening_start: %w", err)
	}

	cfg := engine.Config{
		Scorer: scorer.Config{
			DeadlineHorizonDays:       ctx.Config.Scoring.DeadlineHorizonDays,
			BacklogSaturationDays:     ctx.Config.Scoring.BacklogSaturationDays,
			DefaultDeadlineSessionMin: ctx.Config.Scoring.DefaultDeadlineSessionMin,
			DefaultSessionMin:         ctx.Config.Scoring.DefaultSessionMin,
		},
		Gaps: gaps.Config{MorningEnd: morningEnd, EveningStart: eveningStart},
		Scheduler: scheduler.Options{
			PermutationLimit: ctx.Config.Scheduler.PermutationLimit,
			Estimator:        travel.NewGridEstimator(ctx.Config.Scheduler.MinutesPerUnit),
		},
		EnrichmentDelay: time.Duration(ctx.Config.Enrichment.DelayMS) * time.Millisecond,
	}

	var enricher engine.Enricher
	if ctx.Config.Enrichment.Enabled {
		key, err := keyring.GetAPIKey()
		if err != nil {
			logger.Warn("enrichment enabled but no API key available, continuing without it", "error", err)
		} else {
			client, err := enrichment.NewClient(ctx.Config.Enrichment.BaseURL, key, ctx.Config.Enrichment.Model, 0)
			if err != nil {
				logger.Warn("could not build enrichment client, continuing without it", "error", err)
			} else {
				enricher = client
			}
		}
	}

	return engine.New(cfg, enricher)
}

// plannerForDate restores the planner from the persisted day state, if
// any exists.
func (ctx *Context) plannerForDate(date string) (*planner.Planner, storage.DayState, error) {
	eng, err := ctx.buildEngine()
	if err != nil {
		return nil, storage.DayState{}, err
	}
	p := planner.New(eng)

	state, err := ctx.Store.GetDayState(date)
	if err != nil {
		// No state yet: a fresh planner for a fresh day.
		return p, storage.DayState{Date: date}, nil
	}

	p.Restore(state.Accepted, state.Skipped, engine.Result{
		Suggestions: state.Suggestions,
		Gaps:        state.Gaps,
		Schedule:    state.Schedule,
	})
	return p, state, nil
}

// saveDayState persists the planner's protocol state, carrying the
// raw day inputs along so later mutations can regenerate.
func (ctx *Context) saveDayState(state storage.DayState, p *planner.Planner) error {
	res := p.Current()
	state.Accepted = p.Accepted()
	state.Skipped = p.Skipped()
	state.Suggestions = res.Suggestions
	state.Gaps = res.Gaps
	state.Schedule = res.Schedule
	return ctx.Store.SaveDayState(state)
}

// rebuild regenerates the plan around the mutated protocol state from
// the day inputs recorded by the last plan run. A day without a plan
// run yet has nothing to rebuild. External enrichment is skipped:
// mutations are local edits and the tasks were already enriched when
// the day was planned.
func (ctx *Context) rebuild(p *planner.Planner, state storage.DayState, now time.Time) error {
	if len(state.DayGaps) == 0 {
		return nil
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return err
	}
	_, _, err = p.Regenerate(context.Background(), engine.Input{
		Tasks:  tasks,
		Gaps:   state.DayGaps,
		Events: state.DayEvents,
		Now:    now,
	}, engine.Options{SkipExternalEnrichment: true})
	return err
}

// resolveDate parses a --date flag, defaulting to today.
func resolveDate(s string) (string, time.Time, error) {
	if s == "" {
		now := time.Now()
		return now.Format("2006-01-02"), now, nil
	}
	day, err := utils.ParseDate(s)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, day, nil
}

func formatBlock(b models.ScheduledBlock, suggestions []models.Suggestion) string {
	need := ""
	for _, s := range suggestions {
		if s.ID == b.SuggestionID {
			if s.Mandatory() {
				need = " [mandatory]"
			}
			break
		}
	}
	return fmt.Sprintf("%s-%s  %s (%dm)%s",
		utils.FormatMinutes(b.Start), utils.FormatMinutes(b.End), b.MemoID, b.DurationMin, need)
}
