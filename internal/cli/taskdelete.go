package cli

import "fmt"

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.DeleteTask(c.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted task %s\n", c.ID)
	return nil
}
