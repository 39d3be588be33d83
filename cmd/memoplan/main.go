package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ksakurai/memoplan/internal/cli"
	"github.com/ksakurai/memoplan/internal/config"
	"github.com/ksakurai/memoplan/internal/errors"
	"github.com/ksakurai/memoplan/internal/logger"
	"github.com/ksakurai/memoplan/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path"`
	Store   string `help:"Storage file path, overrides the configured one." type:"path"`
	Debug   bool   `help:"Enable debug logging."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize memoplan storage."`
	Plan     cli.PlanCmd     `cmd:"" help:"Compute suggestions for a day."`
	Accept   cli.AcceptCmd   `cmd:"" help:"Pin a suggestion in place."`
	Skip     cli.SkipCmd     `cmd:"" help:"Drop a memo from today's pool."`
	Resize   cli.ResizeCmd   `cmd:"" help:"Change an accepted block's duration."`
	Delete   cli.DeleteCmd   `cmd:"" help:"Remove an accepted block."`
	Complete cli.CompleteCmd `cmd:"" help:"Log a finished work session."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run diagnostics."`
	Task     struct {
		Add    cli.TaskAddCmd    `cmd:"" help:"Add a new task."`
		List   cli.TaskListCmd   `cmd:"" help:"List all tasks."`
		Delete cli.TaskDeleteCmd `cmd:"" help:"Delete a task."`
	} `cmd:"" help:"Manage tasks."`
	Key struct {
		Set   cli.KeySetCmd   `cmd:"" help:"Store the enrichment API key."`
		Clear cli.KeyClearCmd `cmd:"" help:"Remove the enrichment API key."`
	} `cmd:"" help:"Manage the enrichment service credentials."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("memoplan"),
		kong.Description("Personal task suggestion and day-planning engine"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatalf("could not load configuration: %v", err)
	}

	storePath := cfg.StorePath
	if CLI.Store != "" {
		storePath = CLI.Store
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
	}); err != nil {
		errors.Fatal(err)
	}

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(storePath, ".json") {
		store = storage.NewJSONStore(storePath)
	} else {
		store = storage.NewSQLiteStore(storePath)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:  store,
		Config: cfg,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
}
