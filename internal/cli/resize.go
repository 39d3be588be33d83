package cli

import "fmt"

type ResizeCmd struct {
	ID       string `arg:"" help:"Accepted suggestion ID to resize."`
	Duration int    `arg:"" help:"New duration in minutes."`
	Date     string `short:"D" help:"Plan date (YYYY-MM-DD), defaults to today."`
}

func (c *ResizeCmd) Run(ctx *Context) error {
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

	r := p.Resize(c.ID, c.Duration)
	if !r.OK {
		if r.MaxDurationMin > 0 {
			return fmt.Errorf("cannot resize %s to %dm: %s (try %dm or less)",
				c.ID, c.Duration, r.Reason, r.MaxDurationMin)
		}
		return fmt.Errorf("cannot resize %s: %s", c.ID, r.Reason)
	}

	if err := ctx.rebuild(p, state, now); err != nil {
		return err
	}
	if err := ctx.saveDayState(state, p); err != nil {
		return err
	}

	fmt.Printf("Resized %s to %dm.\n", c.ID, c.Duration)
	return nil
}
