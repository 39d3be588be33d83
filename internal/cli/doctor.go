package cli

import (
	"fmt"
	"time"

	"github.com/ksakurai/memoplan/internal/keyring"
	"github.com/ksakurai/memoplan/internal/validation"
)

type DoctorCmd struct {
	Date string `short:"D" help:"Check the plan for this date (YYYY-MM-DD), defaults to today."`
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: store reachable
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	// Check 2: settings present
	if storeReachable {
		if _, err := ctx.Store.GetSettings(); err != nil {
			fmt.Printf("❌ Settings present: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings present: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings present: SKIPPED (store not reachable)\n")
	}

	// Check 3: task data validates
	if storeReachable {
		tasks, err := ctx.Store.GetAllTasks()
		if err != nil {
			fmt.Printf("❌ Task data: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			v := validation.New()
			report := v.ValidateTasks(tasks)
			if report.HasConflicts() {
				fmt.Printf("⚠ Task data: WARNING\n")
				fmt.Printf("   %s", report.FormatReport())
			} else {
				fmt.Printf("✓ Task data: OK (%d tasks)\n", len(tasks))
			}
		}
	} else {
		fmt.Printf("⊘ Task data: SKIPPED (store not reachable)\n")
	}

	// Check 4: committed plan consistency
	if storeReachable {
		date, _, err := resolveDate(cmd.Date)
		if err != nil {
			return err
		}
		state, err := ctx.Store.GetDayState(date)
		if err != nil {
			fmt.Printf("⊘ Plan consistency: SKIPPED (no plan for %s)\n", date)
		} else {
			v := validation.New()
			report := v.CheckSchedule(state.Gaps, state.Schedule)
			if report.HasConflicts() {
				fmt.Printf("❌ Plan consistency: FAIL\n")
				fmt.Printf("   %s", report.FormatReport())
				hasError = true
			} else {
				fmt.Printf("✓ Plan consistency: OK\n")
			}
		}
	}

	// Check 5: keyring availability (warning only, enrichment degrades
	// gracefully without it)
	if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: OK\n")
	} else {
		fmt.Printf("⚠ OS keyring: WARNING (external enrichment will be unavailable)\n")
	}

	// Check 6: clock sanity
	if err := checkClock(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reports %v, which looks wrong", now)
	}
	if _, offset := now.Zone(); offset < -14*3600 || offset > 14*3600 {
		return fmt.Errorf("timezone offset %ds is outside the valid range", offset)
	}
	return nil
}
