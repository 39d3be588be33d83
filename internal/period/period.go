// Package period implements pure date arithmetic for routine-task
// cycles: progress through a day/week/month, boundary crossing
// detection, and the idempotent per-period counter reset.
package period

import (
	"time"

	"github.com/ksakurai/memoplan/internal/models"
)

const minutesPerDay = 24 * 60

// Progress returns the fraction elapsed through the current period as
// a value in [0,1). Weeks start on Monday; month progress accounts for
// the actual month length.
func Progress(t time.Time, p models.Period) float64 {
	minuteOfDay := float64(t.Hour()*60 + t.Minute())
	switch p {
	case models.PeriodWeek:
		day := weekdayIndex(t)
		return (float64(day)*minutesPerDay + minuteOfDay) / (7 * minutesPerDay)
	case models.PeriodMonth:
		days := daysInMonth(t)
		return (float64(t.Day()-1)*minutesPerDay + minuteOfDay) / (float64(days) * minutesPerDay)
	default:
		return minuteOfDay / minutesPerDay
	}
}

// CrossedBoundary reports whether now falls in a different
// day/week/month than periodStart.
func CrossedBoundary(periodStart, now time.Time, p models.Period) bool {
	switch p {
	case models.PeriodWeek:
		return !startOfWeek(periodStart).Equal(startOfWeek(now))
	case models.PeriodMonth:
		return periodStart.Year() != now.Year() || periodStart.Month() != now.Month()
	default:
		sy, sm, sd := periodStart.Date()
		ny, nm, nd := now.Date()
		return sy != ny || sm != nm || sd != nd
	}
}

// ResetIfNeeded returns a copy of the task with its per-period counter
// reset when a boundary has been crossed (or no period has started
// yet). Resetting twice in the same period is a no-op; non-routine
// tasks pass through unchanged.
func ResetIfNeeded(task models.Task, now time.Time) models.Task {
	if task.Kind != models.TaskKindRoutine || task.Goal == nil {
		return task
	}
	if task.Status.PeriodStart != nil && !CrossedBoundary(*task.Status.PeriodStart, now, task.Goal.Period) {
		return task
	}
	start := now
	task.Status.CompletionsThisPeriod = 0
	task.Status.PeriodStart = &start
	return task
}

// RecordCompletion applies the period reset, then counts one
// completion and stamps the task's last activity. For non-routine
// tasks only the activity stamp is updated.
func RecordCompletion(task models.Task, now time.Time) models.Task {
	task = ResetIfNeeded(task, now)
	if task.Kind == models.TaskKindRoutine {
		task.Status.CompletionsThisPeriod++
	}
	at := now
	task.LastActivity = &at
	return task
}

// weekdayIndex maps time.Weekday onto a Monday-first 0..6 index.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func startOfWeek(t time.Time) time.Time {
	y, m, d := t.AddDate(0, 0, -weekdayIndex(t)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
