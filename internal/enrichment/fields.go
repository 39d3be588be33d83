// Package enrichment fills in task metadata a user left blank by
// asking an external collaborator service. Responses are advisory:
// they are clamped to sane ranges and never overwrite values the user
// set explicitly.
package enrichment

import (
	"time"

	"github.com/ksakurai/memoplan/internal/models"
)

// Session duration bounds accepted from the collaborator, in minutes.
const (
	MinSessionMin = 15
	MaxSessionMin = 120
)

// Request is the task snapshot sent to the collaborator.
type Request struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Kind     string     `json:"kind"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Fields is the collaborator's answer. Zero values mean "no opinion".
type Fields struct {
	Genre              string `json:"genre"`
	Importance         string `json:"importance"`
	SessionDurationMin int    `json:"sessionDurationMin"`
	TotalDurationMin   int    `json:"totalDurationMin"`
}

// NewRequest builds the outbound snapshot for one task.
func NewRequest(task models.Task) Request {
	return Request{
		ID:       task.ID,
		Title:    task.Title,
		Kind:     string(task.Kind),
		Deadline: task.Deadline,
	}
}

// Clamped returns a copy with every field forced into its accepted
// range. Out-of-range values are zeroed rather than rounded when no
// sensible projection exists.
func (f Fields) Clamped() Fields {
	out := f

	switch models.Importance(out.Importance) {
	case models.ImportanceLow, models.ImportanceMedium, models.ImportanceHigh:
	default:
		out.Importance = ""
	}

	if out.SessionDurationMin != 0 {
		if out.SessionDurationMin < MinSessionMin {
			out.SessionDurationMin = MinSessionMin
		}
		if out.SessionDurationMin > MaxSessionMin {
			out.SessionDurationMin = MaxSessionMin
		}
	}

	if out.TotalDurationMin != 0 && out.TotalDurationMin < out.SessionDurationMin {
		out.TotalDurationMin = out.SessionDurationMin
	}

	return out
}

// Merge copies each enriched field onto the task only where the task
// has no value of its own.
func Merge(task *models.Task, f Fields) {
	f = f.Clamped()

	if task.Genre == "" && f.Genre != "" {
		task.Genre = f.Genre
	}
	if task.Importance == "" && f.Importance != "" {
		task.Importance = models.Importance(f.Importance)
	}
	if task.SessionDurationMin == 0 && f.SessionDurationMin != 0 {
		task.SessionDurationMin = f.SessionDurationMin
	}
	if task.TotalDurationMin == 0 && f.TotalDurationMin != 0 {
		task.TotalDurationMin = f.TotalDurationMin
	}
}
