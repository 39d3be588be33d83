package cli

import (
	"fmt"
	"time"

	"github.com/ksakurai/memoplan/internal/engine"
)

type CompleteCmd struct {
	ID      string `arg:"" help:"Memo ID the session was spent on."`
	Minutes int    `short:"m" help:"Minutes worked." required:""`
}

func (c *CompleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return err
	}

	task, outcome, err := engine.MarkSessionComplete(task, c.Minutes, time.Now())
	if err != nil {
		return err
	}

	if err := ctx.Store.UpdateTask(task); err != nil {
		return err
	}

	fmt.Printf("Logged %dm on %s (total %dm).\n", c.Minutes, task.Title, task.Status.TimeSpentMin)
	if outcome.IsNowComplete {
		fmt.Printf("%s is complete.\n", task.Title)
	}
	if outcome.GoalReached {
		fmt.Printf("%s has met its goal for this period.\n", task.Title)
	}
	return nil
}
