// Package storage persists tasks and per-day planning state. Two
// providers share one interface: a SQLite database for normal use and
// a single-file JSON store for portability and tests.
package storage

import "github.com/ksakurai/memoplan/internal/models"

// Settings are the user-level knobs stored alongside the data.
type Settings struct {
	DayStart          string `json:"day_start"`
	DayEnd            string `json:"day_end"`
	DefaultSessionMin int    `json:"default_session_min"`
}

// DefaultSettings returns the settings written on first init.
func DefaultSettings() Settings {
	return Settings{
		DayStart:          "07:00",
		DayEnd:            "22:00",
		DefaultSessionMin: 30,
	}
}

// DayState is everything the planner needs to resume a day: the
// committed schedule, the accepted and skipped protocol state, and
// the raw day inputs so mutations can regenerate without the day
// file.
type DayState struct {
	Date        string                      `json:"date"`
	Accepted    []models.AcceptedSuggestion `json:"accepted"`
	Skipped     []string                    `json:"skipped"`
	Suggestions []models.Suggestion         `json:"suggestions"`
	Gaps        []models.Gap                `json:"gaps"`
	Schedule    models.ScheduleResult       `json:"schedule"`

	// DayGaps and DayEvents are the raw inputs of the last plan run,
	// before accepted-block subtraction and location enrichment.
	DayGaps   []models.Gap   `json:"day_gaps,omitempty"`
	DayEvents []models.Event `json:"day_events,omitempty"`
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	UpdateTask(models.Task) error
	DeleteTask(id string) error

	// Day state
	SaveDayState(DayState) error
	GetDayState(date string) (DayState, error)
	DeleteDayState(date string) error

	// Utils
	GetConfigPath() string
}
