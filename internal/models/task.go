package models

import (
	"fmt"
	"time"
)

type TaskKind string

const (
	TaskKindDeadline TaskKind = "deadline"
	TaskKindBacklog  TaskKind = "backlog"
	TaskKindRoutine  TaskKind = "routine"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

type LocationPreference string

const (
	PreferNearHome      LocationPreference = "near_home"
	PreferNearWorkplace LocationPreference = "near_workplace"
	PreferNone          LocationPreference = "no_preference"
)

type CompletionState string

const (
	StateNotStarted CompletionState = "not_started"
	StateInProgress CompletionState = "in_progress"
	StateCompleted  CompletionState = "completed"
)

// Coordinate is a point on the caller's location grid, used only to
// derive travel-time hints between consecutive blocks.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RecurrenceGoal is the per-period completion target of a routine task.
type RecurrenceGoal struct {
	TargetCount int    `json:"target_count"`
	Period      Period `json:"period"`
}

// TaskStatus tracks accumulated progress on a task.
type TaskStatus struct {
	TimeSpentMin          int             `json:"time_spent_min"`
	CompletionState       CompletionState `json:"completion_state"`
	CompletionsThisPeriod int             `json:"completions_this_period"`
	PeriodStart           *time.Time      `json:"period_start,omitempty"`
}

// Task is a user-tracked unit of work ("memo"). Tasks are long-lived;
// the engine only ever reads them and returns modified copies.
type Task struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Kind               TaskKind           `json:"kind"`
	CreatedAt          time.Time          `json:"created_at"`
	Deadline           *time.Time         `json:"deadline,omitempty"`
	Goal               *RecurrenceGoal    `json:"goal,omitempty"`
	LocationPreference LocationPreference `json:"location_preference"`
	Status             TaskStatus         `json:"status"`
	Importance         Importance         `json:"importance,omitempty"`
	Genre              string             `json:"genre,omitempty"`
	SessionDurationMin int                `json:"session_duration_min,omitempty"`
	TotalDurationMin   int                `json:"total_duration_min,omitempty"`
	LastActivity       *time.Time         `json:"last_activity,omitempty"`
	Coord              *Coordinate        `json:"coord,omitempty"`
}

// Validate reports malformed tasks before they enter the pipeline.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task is missing an id")
	}
	switch t.Kind {
	case TaskKindDeadline:
		if t.Deadline == nil {
			return fmt.Errorf("deadline task %q has no deadline", t.ID)
		}
	case TaskKindBacklog:
		// no extra required fields
	case TaskKindRoutine:
		if t.Goal == nil {
			return fmt.Errorf("routine task %q has no recurrence goal", t.ID)
		}
		if t.Goal.TargetCount <= 0 {
			return fmt.Errorf("routine task %q has non-positive target count %d", t.ID, t.Goal.TargetCount)
		}
		switch t.Goal.Period {
		case PeriodDay, PeriodWeek, PeriodMonth:
		default:
			return fmt.Errorf("routine task %q has unknown period %q", t.ID, t.Goal.Period)
		}
	default:
		return fmt.Errorf("task %q has unknown kind %q", t.ID, t.Kind)
	}
	if t.SessionDurationMin < 0 {
		return fmt.Errorf("task %q has negative session duration", t.ID)
	}
	return nil
}

// Completed reports whether the task is finished and should be skipped
// by the engine.
func (t Task) Completed() bool {
	return t.Status.CompletionState == StateCompleted
}
