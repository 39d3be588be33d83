package models

import "time"

// Suggestion is a scored, schedulable candidate derived from a Task
// for one engine run. Suggestions are recreated on every run; their
// IDs are deterministic so identical inputs produce identical results.
type Suggestion struct {
	ID                 string             `json:"id"`
	MemoID             string             `json:"memo_id"`
	Need               float64            `json:"need"`
	Importance         float64            `json:"importance"`
	DurationMin        int                `json:"duration_min"`
	LocationPreference LocationPreference `json:"location_preference"`
	Coord              *Coordinate        `json:"coord,omitempty"`
}

// MandatoryNeedThreshold marks suggestions that must be scheduled if
// at all possible.
const MandatoryNeedThreshold = 1.0

// Mandatory reports whether the suggestion's need reaches the
// mandatory threshold.
func (s Suggestion) Mandatory() bool {
	return s.Need >= MandatoryNeedThreshold
}

// Priority is the sole ranking key for optional suggestions.
func (s Suggestion) Priority() float64 {
	return s.Need * s.Importance
}

// ScheduledBlock is a suggestion placed inside a gap. Times are
// minutes from midnight; End-Start always equals DurationMin.
type ScheduledBlock struct {
	SuggestionID string `json:"suggestion_id"`
	MemoID       string `json:"memo_id"`
	GapID        string `json:"gap_id"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	DurationMin  int    `json:"duration_min"`
}

// ScheduleResult is the outcome of one allocation pass.
type ScheduleResult struct {
	Scheduled        []ScheduledBlock `json:"scheduled"`
	Dropped          []Suggestion     `json:"dropped"`
	MandatoryDropped []Suggestion     `json:"mandatory_dropped"`

	TotalScheduledMin     int `json:"total_scheduled_min"`
	TotalDroppedMin       int `json:"total_dropped_min"`
	TravelMin             int `json:"travel_min"`
	PermutationsEvaluated int `json:"permutations_evaluated"`

	Elapsed time.Duration `json:"elapsed"`
}

// AcceptedSuggestion is a user-confirmed scheduled block. It persists
// across recomputations and acts as a fixed obstacle: future runs
// subtract its interval from the gap it occupies.
type AcceptedSuggestion struct {
	ScheduledBlock
	AcceptedAt          time.Time `json:"accepted_at"`
	OriginalDurationMin int       `json:"original_duration_min"`
}

// PipelineSummary carries per-run metadata for presentation
// collaborators.
type PipelineSummary struct {
	ExecutionTime    time.Duration `json:"execution_time"`
	TaskCount        int           `json:"task_count"`
	EligibleCount    int           `json:"eligible_count"`
	SuggestionCount  int           `json:"suggestion_count"`
	GapCount         int           `json:"gap_count"`
	ScheduledCount   int           `json:"scheduled_count"`
	DroppedCount     int           `json:"dropped_count"`
	MandatoryDropped int           `json:"mandatory_dropped"`
	EnrichedCount    int           `json:"enriched_count"`
}
