package cli

import (
	"fmt"
	"sort"

	"github.com/ksakurai/memoplan/internal/models"
)

type TaskListCmd struct {
	OpenOnly bool `help:"Show only tasks that are not completed."`
}

func (c *TaskListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })

	fmt.Println("Tasks:")
	for _, task := range tasks {
		if c.OpenOnly && task.Completed() {
			continue
		}

		status := "open"
		if task.Completed() {
			status = "done"
		}

		fmt.Printf("  [%s] %s - %s (ID: %s)\n", status, task.Title, describeKind(task), task.ID)
		if task.Genre != "" || task.Importance != "" {
			fmt.Printf("      %s importance, genre: %s\n", importanceOrDefault(task.Importance), task.Genre)
		}
		if task.Status.TimeSpentMin > 0 && task.TotalDurationMin > 0 {
			fmt.Printf("      Progress: %dm of %dm\n", task.Status.TimeSpentMin, task.TotalDurationMin)
		}
	}

	return nil
}

func describeKind(task models.Task) string {
	switch task.Kind {
	case models.TaskKindDeadline:
		if task.Deadline != nil {
			return fmt.Sprintf("due %s", task.Deadline.Format("2006-01-02"))
		}
		return "deadline"
	case models.TaskKindRoutine:
		if task.Goal != nil {
			return fmt.Sprintf("%dx per %s (%d done)",
				task.Goal.TargetCount, task.Goal.Period, task.Status.CompletionsThisPeriod)
		}
		return "routine"
	default:
		return "backlog"
	}
}

func importanceOrDefault(imp models.Importance) models.Importance {
	if imp == "" {
		return models.ImportanceMedium
	}
	return imp
}
