package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fastreckless/frb/internal/api"
	"github.com/fastreckless/frb/internal/config"
	"github.com/fastreckless/frb/internal/database"
	"github.com/fastreckless/frb/internal/logging"
	"github.com/fastreckless/frb/internal/orchestrator"
	"github.com/fastreckless/frb/internal/prefs"
	"github.com/fastreckless/frb/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("frb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	check := fs.Bool("check", false, "refresh accounts once, print them and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithReadRetries(cfg.API.ReadRetries),
		api.WithLogger(logger),
	)
	orch := orchestrator.New(client, orchestrator.WithLogger(logger))

	if *check {
		if err := runCheck(ctx, stdout, orch); err != nil {
			return 1
		}
		return 0
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(stderr, "open db: %v\n", err)
		return 1
	}
	defer db.Close()

	overrides, err := tui.LoadKeybindings(cfg.UI.KeybindingsPath)
	if err != nil {
		logger.Warn("using default keybindings", zap.Error(err))
		overrides = nil
	}

	app := tui.New(ctx, orch, tui.Options{
		BaseURL:      cfg.API.BaseURL,
		TimeFormat:   cfg.UI.TimeFormat,
		Prefs:        prefs.NewStore(db),
		KeyOverrides: overrides,
		Logger:       logger,
	})
	logger.Info("starting", zap.String("base_url", cfg.API.BaseURL))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
