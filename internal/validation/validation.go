package validation

import (
	"fmt"
	"sort"

	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingBlocks   ConflictType = "overlapping_blocks"
	ConflictBlockOutsideGap     ConflictType = "block_outside_gap"
	ConflictCapacityExceeded    ConflictType = "capacity_exceeded"
	ConflictUnknownGap          ConflictType = "unknown_gap"
	ConflictDurationMismatch    ConflictType = "duration_mismatch"
	ConflictMandatoryBothLists  ConflictType = "mandatory_in_both_lists"
	ConflictDuplicateTaskTitle  ConflictType = "duplicate_task_title"
	ConflictMalformedTask       ConflictType = "malformed_task"
	ConflictDuplicateSuggestion ConflictType = "duplicate_suggestion"
)

// Conflict represents a detected inconsistency in tasks or a schedule
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // task/suggestion/gap IDs involved
	TimeRange   string   // human-readable time range (if applicable)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator checks tasks and schedules for internal consistency
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateTasks checks the task list for duplicates and malformed
// entries before it enters the pipeline.
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titleCount := make(map[string][]string)
	for _, task := range tasks {
		if task.Title == "" {
			continue
		}
		titleCount[task.Title] = append(titleCount[task.Title], task.ID)
	}
	titles := make([]string, 0, len(titleCount))
	for title := range titleCount {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		if ids := titleCount[title]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTaskTitle,
				Description: fmt.Sprintf("Duplicate task title: \"%s\" (IDs: %v)", title, ids),
				Items:       ids,
			})
		}
	}

	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMalformedTask,
				Description: fmt.Sprintf("Malformed task %q: %v", task.ID, err),
				Items:       []string{task.ID},
			})
		}
	}

	return result
}

// CheckSchedule verifies a computed schedule against the gaps it was
// built from: every block inside a known gap, no overlaps, no gap over
// capacity, and no suggestion accounted for twice.
func (v *Validator) CheckSchedule(gapsIn []models.Gap, res models.ScheduleResult) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	gapMap := make(map[string]models.Gap, len(gapsIn))
	for _, g := range gapsIn {
		gapMap[g.ID] = g
	}

	perGap := make(map[string][]models.ScheduledBlock)
	seen := make(map[string]bool)
	for _, b := range res.Scheduled {
		if seen[b.SuggestionID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateSuggestion,
				Description: fmt.Sprintf("Suggestion %q is scheduled more than once", b.SuggestionID),
				Items:       []string{b.SuggestionID},
			})
		}
		seen[b.SuggestionID] = true

		if b.End-b.Start != b.DurationMin {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictDurationMismatch,
				Description: fmt.Sprintf("Block %q spans %d minutes but claims %d",
					b.SuggestionID, b.End-b.Start, b.DurationMin),
				Items:     []string{b.SuggestionID},
				TimeRange: blockRange(b),
			})
		}

		g, ok := gapMap[b.GapID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownGap,
				Description: fmt.Sprintf("Block %q references unknown gap %q", b.SuggestionID, b.GapID),
				Items:       []string{b.SuggestionID, b.GapID},
			})
			continue
		}
		if b.Start < g.Start || b.End > g.End {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictBlockOutsideGap,
				Description: fmt.Sprintf("Block %q (%s) escapes gap %q (%s-%s)",
					b.SuggestionID, blockRange(b), g.ID,
					utils.FormatMinutes(g.Start), utils.FormatMinutes(g.End)),
				Items:     []string{b.SuggestionID, g.ID},
				TimeRange: blockRange(b),
			})
		}
		perGap[b.GapID] = append(perGap[b.GapID], b)
	}

	gapIDs := make([]string, 0, len(perGap))
	for id := range perGap {
		gapIDs = append(gapIDs, id)
	}
	sort.Strings(gapIDs)

	for _, id := range gapIDs {
		blocks := perGap[id]
		g := gapMap[id]

		total := 0
		for _, b := range blocks {
			total += b.DurationMin
		}
		if total > g.Duration() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictCapacityExceeded,
				Description: fmt.Sprintf("Gap %q holds %d minutes of work in a %d-minute window",
					g.ID, total, g.Duration()),
				Items: []string{g.ID},
			})
		}

		sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
		for i := 0; i < len(blocks); i++ {
			for j := i + 1; j < len(blocks); j++ {
				b1, b2 := blocks[i], blocks[j]
				if b1.Start < b2.End && b2.Start < b1.End {
					result.Conflicts = append(result.Conflicts, Conflict{
						Type: ConflictOverlappingBlocks,
						Description: fmt.Sprintf("Blocks overlap in gap %q: %q (%s) and %q (%s)",
							g.ID, b1.SuggestionID, blockRange(b1), b2.SuggestionID, blockRange(b2)),
						Items:     []string{b1.SuggestionID, b2.SuggestionID},
						TimeRange: blockRange(b1),
					})
				}
			}
		}
	}

	// A mandatory suggestion is either scheduled or reported dropped,
	// never both.
	for _, s := range res.MandatoryDropped {
		if seen[s.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMandatoryBothLists,
				Description: fmt.Sprintf("Mandatory suggestion %q is both scheduled and reported dropped", s.ID),
				Items:       []string{s.ID},
			})
		}
	}

	return result
}

func blockRange(b models.ScheduledBlock) string {
	return fmt.Sprintf("%s-%s", utils.FormatMinutes(b.Start), utils.FormatMinutes(b.End))
}
