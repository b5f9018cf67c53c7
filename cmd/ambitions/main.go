package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/ambitions/internal/cli"
	"github.com/alexanderramin/ambitions/internal/db"
	"github.com/alexanderramin/ambitions/internal/importer"
	"github.com/alexanderramin/ambitions/internal/repository"
	"github.com/alexanderramin/ambitions/internal/roster"
	"github.com/alexanderramin/ambitions/internal/service"
	"github.com/alexanderramin/ambitions/internal/telemetry"
	"github.com/mattn/go-isatty"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		if !cli.ErrAlreadyReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	var closers []func(context.Context) error
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}()

	app := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	app.Open = func(ctx context.Context, app *cli.App) error {
		cfg := app.Config

		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		closers = append(closers, func(context.Context) error { return database.Close() })
		app.Health = func(ctx context.Context) error { return db.Ping(ctx, database) }

		tel, err := telemetry.Init(ctx, cfg.OTel, version)
		if err != nil {
			return err
		}
		closers = append(closers, tel.Shutdown)

		var store repository.Store = repository.NewSQLiteStore(database, db.NewSQLiteUnitOfWork(database))
		store = tel.InstrumentStore(store)

		// Approval rights: the directory manager, plus the legacy fixed
		// address and the roster file when configured.
		approvers := service.AnyApprover{service.NewDirectoryApprover(store.Repos().People)}
		if cfg.ManagerEmail != "" {
			approvers = append(approvers, service.FixedEmailApprover{Email: cfg.ManagerEmail})
		}
		if cfg.RosterFile != "" {
			r, err := roster.Load(cfg.RosterFile, store.Repos().People)
			if err != nil {
				return err
			}
			approvers = append(approvers, r)
			app.Roster = r
			app.Logger.Info("roster loaded", "path", r.Path(), "approvers", r.Len())
		}

		observer := tel.UseCaseObserver()
		if cfg.LogLevel == "debug" {
			observer = service.MultiUseCaseObserver(service.NewSlogUseCaseObserver(app.Logger), observer)
		}
		app.Services = service.New(store, approvers,
			service.WithLogger(app.Logger),
			service.WithObserver(observer),
		)
		app.Importer = importer.New(app.Services.People, app.Services.Goals)
		return nil
	}

	return cli.NewRootCmd(app).Execute()
}
