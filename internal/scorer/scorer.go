// Package scorer maps tasks into scored suggestions: a need value
// (urgency; >= 1.0 means mandatory), a normalized importance, and a
// chosen session duration.
package scorer

import (
	"fmt"
	"time"

	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/period"
	"github.com/ksakurai/memoplan/internal/utils"
)

const (
	deadlineNeedFloor = 0.1

	backlogNeedMin = 0.25
	backlogNeedMax = 0.7

	routineNeedMin = 0.3
	routineNeedMax = 0.8
)

// Config holds the tunable scoring parameters.
type Config struct {
	// DeadlineHorizonDays is the distance at which deadline need
	// saturates at its floor.
	DeadlineHorizonDays int

	// BacklogSaturationDays is the staleness at which backlog need
	// reaches its cap.
	BacklogSaturationDays int

	// DefaultDeadlineSessionMin is the session length for deadline
	// tasks without an explicit one.
	DefaultDeadlineSessionMin int

	// DefaultSessionMin is the session length for backlog and routine
	// tasks without an explicit one.
	DefaultSessionMin int
}

// DefaultConfig returns the standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		DeadlineHorizonDays:       14,
		BacklogSaturationDays:     30,
		DefaultDeadlineSessionMin: 45,
		DefaultSessionMin:         30,
	}
}

type Scorer struct {
	cfg Config
}

func New(cfg Config) (*Scorer, error) {
	if cfg.DeadlineHorizonDays <= 0 {
		return nil, fmt.Errorf("deadline horizon must be positive, got %d", cfg.DeadlineHorizonDays)
	}
	if cfg.BacklogSaturationDays <= 0 {
		return nil, fmt.Errorf("backlog saturation must be positive, got %d", cfg.BacklogSaturationDays)
	}
	if cfg.DefaultDeadlineSessionMin <= 0 || cfg.DefaultSessionMin <= 0 {
		return nil, fmt.Errorf("default session durations must be positive")
	}
	return &Scorer{cfg: cfg}, nil
}

// Score derives the suggestion for one task at the given time. The
// suggestion ID equals the memo ID so that identical inputs always
// produce identical results.
func (s *Scorer) Score(task models.Task, now time.Time) (models.Suggestion, error) {
	if err := task.Validate(); err != nil {
		return models.Suggestion{}, err
	}

	var need float64
	switch task.Kind {
	case models.TaskKindDeadline:
		need = s.deadlineNeed(*task.Deadline, now)
	case models.TaskKindBacklog:
		need = s.backlogNeed(task, now)
	case models.TaskKindRoutine:
		need = routineNeed(task, now)
	}

	return models.Suggestion{
		ID:                 task.ID,
		MemoID:             task.ID,
		Need:               need,
		Importance:         ImportanceValue(task.Importance),
		DurationMin:        s.sessionDuration(task),
		LocationPreference: task.LocationPreference,
		Coord:              task.Coord,
	}, nil
}

// deadlineNeed hits exactly 1.0 when the deadline is today or already
// passed, and otherwise climbs linearly from the floor as the deadline
// approaches within the horizon.
func (s *Scorer) deadlineNeed(deadline, now time.Time) float64 {
	daysUntil := utils.DaysBetween(now, deadline)
	if daysUntil <= 0 {
		return models.MandatoryNeedThreshold
	}
	closeness := 1.0 - float64(daysUntil)/float64(s.cfg.DeadlineHorizonDays)
	return deadlineNeedFloor + (models.MandatoryNeedThreshold-deadlineNeedFloor)*clamp01(closeness)
}

// backlogNeed grows with staleness (time since last activity, or
// creation) and is capped below the mandatory threshold.
func (s *Scorer) backlogNeed(task models.Task, now time.Time) float64 {
	ref := task.CreatedAt
	if task.LastActivity != nil {
		ref = *task.LastActivity
	}
	staleDays := utils.DaysBetween(ref, now)
	if staleDays < 0 {
		staleDays = 0
	}
	ratio := clamp01(float64(staleDays) / float64(s.cfg.BacklogSaturationDays))
	return backlogNeedMin + (backlogNeedMax-backlogNeedMin)*ratio
}

// routineNeed rises as the period progresses while the completion
// ratio stays unmet, and falls to the low end once the goal is met.
func routineNeed(task models.Task, now time.Time) float64 {
	goal := task.Goal
	ratio := float64(task.Status.CompletionsThisPeriod) / float64(goal.TargetCount)
	if ratio >= 1 {
		return routineNeedMin
	}
	deficit := clamp01(period.Progress(now, goal.Period) - ratio)
	return routineNeedMin + (routineNeedMax-routineNeedMin)*deficit
}

// ImportanceValue normalizes the 3-level importance enum to [0,1];
// unset defaults to medium.
func ImportanceValue(imp models.Importance) float64 {
	switch imp {
	case models.ImportanceLow:
		return 0.3
	case models.ImportanceHigh:
		return 1.0
	default:
		return 0.6
	}
}

func (s *Scorer) sessionDuration(task models.Task) int {
	if task.SessionDurationMin > 0 {
		return task.SessionDurationMin
	}
	if task.Kind == models.TaskKindDeadline {
		return s.cfg.DefaultDeadlineSessionMin
	}
	return s.cfg.DefaultSessionMin
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
