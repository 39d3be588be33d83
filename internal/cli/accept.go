package cli

import (
	"fmt"
	"time"
)

type AcceptCmd struct {
	ID   string `arg:"" help:"Suggestion ID to accept."`
	Date string `short:"D" help:"Plan date (YYYY-MM-DD), defaults to today."`
}

func (c *AcceptCmd) Run(ctx *Context) error {
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

	if r := p.Accept(c.ID, time.Now()); !r.OK {
		return fmt.Errorf("cannot accept %s: %s", c.ID, r.Reason)
	}

	if err := ctx.rebuild(p, state, now); err != nil {
		return err
	}
	if err := ctx.saveDayState(state, p); err != nil {
		return err
	}

	fmt.Printf("Accepted %s and rebuilt the plan around it.\n", c.ID)
	return nil
}
