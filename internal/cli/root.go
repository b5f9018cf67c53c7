package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexanderramin/ambitions/internal/config"
	"github.com/alexanderramin/ambitions/internal/contract"
	"github.com/alexanderramin/ambitions/internal/importer"
	"github.com/alexanderramin/ambitions/internal/roster"
	"github.com/alexanderramin/ambitions/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App holds the wired services and settings used by CLI commands.
type App struct {
	Services *service.Services
	Importer *importer.Importer
	Roster   *roster.Roster
	Config   config.Config
	Logger   *slog.Logger

	// Open wires the services from the resolved config. It runs once, before
	// the first command, when Services is still nil.
	Open func(ctx context.Context, app *App) error

	IsInteractive func() bool

	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error

	viper   *viper.Viper
	cfgFile string
	asJSON  bool
}

// NewRootCmd creates the top-level "ambitions" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.viper == nil {
		app.viper = config.NewViper()
	}

	root := &cobra.Command{
		Use:           "ambitions",
		Short:         "Goal ladders with an approval workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.cfgFile, "config", "", "Config file (default ~/.ambitions/config.yaml)")
	pf.String("db", "", "SQLite database path")
	pf.String("as", "", "Email of the person running the command")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.BoolVar(&app.asJSON, "json", false, "Print results as JSON")
	_ = app.viper.BindPFlag(config.KeyDB, pf.Lookup("db"))
	_ = app.viper.BindPFlag(config.KeyUserEmail, pf.Lookup("as"))
	_ = app.viper.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = app.viper.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(app),
		newGoalCmd(app),
		newPersonCmd(app),
		newReconcileCmd(app),
		newImportCmd(app),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	if a.Services != nil {
		if email := a.viper.GetString(config.KeyUserEmail); email != "" {
			a.Config.UserEmail = email
		}
		if a.Logger == nil {
			a.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		return nil
	}

	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Logger = cfg.NewLogger(cmd.ErrOrStderr())
	if a.Open == nil {
		return fmt.Errorf("no storage configured")
	}
	return a.Open(cmd.Context(), a)
}

func (a *App) interactive() bool {
	return !a.asJSON && a.IsInteractive != nil && a.IsInteractive()
}

// caller returns the email commands act as.
func (a *App) caller() (string, error) {
	if a.Config.UserEmail == "" {
		return "", fmt.Errorf("no identity: pass --as or set %s_USER_EMAIL", config.EnvPrefix)
	}
	return a.Config.UserEmail, nil
}

// render prints v as JSON when --json is set, otherwise the human form.
func (a *App) render(cmd *cobra.Command, v any, human func() string) error {
	out := cmd.OutOrStdout()
	if a.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintln(out, human())
	return nil
}

// fail reports err. In JSON mode the error body is printed on stdout and a
// short error is still returned so the exit status is non-zero.
func (a *App) fail(cmd *cobra.Command, err error) error {
	if !a.asJSON {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(contract.FromError(err))
	return errReported
}

var errReported = errors.New("command failed")

// ErrAlreadyReported reports whether err has already been printed as JSON.
func ErrAlreadyReported(err error) bool { return errors.Is(err, errReported) }
