package cli

import "fmt"

type DeleteCmd struct {
	ID   string `arg:"" help:"Accepted suggestion ID to remove from the plan."`
	Date string `short:"D" help:"Plan date (YYYY-MM-DD), defaults to today."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, now, err := resolveDate(c.Date)
	if err != nil {
		return err
	}

	p, state, err := ctx.plannerForDate(date)
	if err != nil {
		return err
	}

	if r := p.Delete(c.ID); !r.OK {
		return fmt.Errorf("cannot delete %s: %s", c.ID, r.Reason)
	}

	if err := ctx.rebuild(p, state, now); err != nil {
		return err
	}
	if err := ctx.saveDayState(state, p); err != nil {
		return err
	}

	fmt.Printf("Removed %s and rebuilt the plan with the freed time.\n", c.ID)
	return nil
}
