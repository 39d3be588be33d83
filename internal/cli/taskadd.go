package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/utils"
)

type TaskAddCmd struct {
	Title      string  `arg:"" help:"Task title."`
	Kind       string  `short:"k" help:"Task kind (deadline|backlog|routine)." default:"backlog"`
	Deadline   string  `short:"d" help:"Deadline date (YYYY-MM-DD), required for deadline tasks."`
	Target     int     `short:"t" help:"Completions per period for routine tasks." default:"1"`
	Period     string  `short:"p" help:"Routine period (day|week|month)." default:"week"`
	Importance string  `short:"i" help:"Importance (low|medium|high)."`
	Genre      string  `short:"g" help:"Free-form genre label."`
	Session    int     `short:"s" help:"Preferred session duration in minutes."`
	Total      int     `short:"T" help:"Total estimated duration in minutes."`
	Location   string  `short:"l" help:"Location preference (near_home|near_workplace|no_preference)." default:"no_preference"`
	X          float64 `help:"Grid X coordinate of the task's location."`
	Y          float64 `help:"Grid Y coordinate of the task's location."`
	HasCoord   bool    `help:"Set when --x/--y carry a real coordinate."`
}

func (c *TaskAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task := models.Task{
		ID:                 uuid.New().String(),
		Title:              c.Title,
		Kind:               models.TaskKind(c.Kind),
		CreatedAt:          time.Now(),
		LocationPreference: models.LocationPreference(c.Location),
		Importance:         models.Importance(c.Importance),
		Genre:              c.Genre,
		SessionDurationMin: c.Session,
		TotalDurationMin:   c.Total,
	}

	switch task.Kind {
	case models.TaskKindDeadline:
		if c.Deadline == "" {
			return fmt.Errorf("deadline tasks require --deadline")
		}
		due, err := utils.ParseDate(c.Deadline)
		if err != nil {
			return err
		}
		task.Deadline = &due
	case models.TaskKindRoutine:
		task.Goal = &models.RecurrenceGoal{
			TargetCount: c.Target,
			Period:      models.Period(c.Period),
		}
	}

	if c.HasCoord {
		task.Coord = &models.Coordinate{X: c.X, Y: c.Y}
	}

	if err := task.Validate(); err != nil {
		return err
	}

	if err := ctx.Store.AddTask(task); err != nil {
		return err
	}

	fmt.Printf("Added task: %s (ID: %s)\n", c.Title, task.ID)
	return nil
}
