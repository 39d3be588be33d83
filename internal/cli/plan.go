package cli

import (
	"context"
	"fmt"

	"github.com/ksakurai/memoplan/internal/engine"
	"github.com/ksakurai/memoplan/internal/validation"
)

type PlanCmd struct {
	DayFile        string `arg:"" help:"JSON file describing the day's gaps and calendar events." type:"path"`
	Date           string `short:"D" help:"Plan date (YYYY-MM-DD), defaults to today."`
	NoEnrich       bool   `help:"Skip external metadata enrichment for this run."`
	Check          bool   `help:"Run consistency checks on the computed schedule."`
	PersistUpdates bool   `help:"Write period resets and enriched fields back to the store."`
}

func (c *PlanCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, now, err := resolveDate(c.Date)
	if err != nil {
		return err
	}

	gapsIn, events, err := loadDayFile(c.DayFile)
	if err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return err
	}

	p, state, err := ctx.plannerForDate(date)
	if err != nil {
		return err
	}

	res, changed, err := p.Regenerate(context.Background(), engine.Input{
		Tasks:  tasks,
		Gaps:   gapsIn,
		Events: events,
		Now:    now,
	}, engine.Options{SkipExternalEnrichment: c.NoEnrich})
	if err != nil {
		return err
	}
	state.DayGaps = gapsIn
	state.DayEvents = events

	if c.PersistUpdates {
		for _, task := range res.Tasks {
			if err := ctx.Store.UpdateTask(task); err != nil {
				return fmt.Errorf("failed to persist task %s: %w", task.ID, err)
			}
		}
	}

	if err := ctx.saveDayState(state, p); err != nil {
		return err
	}

	if !changed {
		fmt.Printf("Plan for %s is unchanged.\n", date)
	}

	if len(p.Accepted()) > 0 {
		fmt.Println("Accepted:")
		for _, a := range p.Accepted() {
			fmt.Printf("  %s\n", formatBlock(a.ScheduledBlock, res.Suggestions))
		}
	}

	if len(res.Schedule.Scheduled) == 0 {
		fmt.Println("No suggestions scheduled.")
	} else {
		fmt.Printf("Suggestions for %s:\n", date)
		for _, b := range res.Schedule.Scheduled {
			fmt.Printf("  %s\n", formatBlock(b, res.Suggestions))
		}
	}

	if len(res.Schedule.MandatoryDropped) > 0 {
		fmt.Println("Could not fit (urgent):")
		for _, s := range res.Schedule.MandatoryDropped {
			fmt.Printf("  %s (%dm)\n", s.MemoID, s.DurationMin)
		}
	}
	if len(res.Schedule.Dropped) > 0 {
		fmt.Printf("Deferred: %d task(s), %dm total\n",
			len(res.Schedule.Dropped), res.Schedule.TotalDroppedMin-mandatoryMinutes(res))
	}

	fmt.Printf("Planned %dm across %d gap(s)", res.Schedule.TotalScheduledMin, res.Summary.GapCount)
	if res.Schedule.TravelMin > 0 {
		fmt.Printf(", %dm travel", res.Schedule.TravelMin)
	}
	fmt.Println()

	if c.Check {
		v := validation.New()
		report := v.CheckSchedule(res.Gaps, res.Schedule)
		fmt.Println(report.FormatReport())
		if report.HasConflicts() {
			return fmt.Errorf("schedule failed consistency checks")
		}
	}

	return nil
}

func mandatoryMinutes(res engine.Result) int {
	total := 0
	for _, s := range res.Schedule.MandatoryDropped {
		total += s.DurationMin
	}
	return total
}
