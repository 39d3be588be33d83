package cli

import "fmt"

type SkipCmd struct {
	ID   string `arg:"" help:"Memo ID to skip for the day."`
	Date string `short:"D" help:"Plan date (YYYY-MM-DD), defaults to today."`
	Undo bool   `help:"Return a previously skipped memo to the pool."`
}

func (c *SkipCmd) Run(ctx *Context) error {
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

	if c.Undo {
		if r := p.Unskip(c.ID); !r.OK {
			return fmt.Errorf("cannot unskip %s: %s", c.ID, r.Reason)
		}
	} else {
		p.Skip(c.ID)
	}

	if err := ctx.rebuild(p, state, now); err != nil {
		return err
	}
	if err := ctx.saveDayState(state, p); err != nil {
		return err
	}

	if c.Undo {
		fmt.Printf("Returned %s to the pool.\n", c.ID)
	} else {
		fmt.Printf("Skipped %s for %s.\n", c.ID, date)
	}
	return nil
}
