package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/cli/formatter"
	"github.com/alexanderramin/ambitions/internal/contract"
	"github.com/alexanderramin/ambitions/internal/importer"
	"github.com/spf13/cobra"
)

func newReconcileCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild every parent's ladder summaries from the child records",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.Services.Hierarchy.Reconcile(cmd.Context())
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.render(cmd, contract.FromReconcile(report), func() string {
				return formatter.FormatReconcile(report)
			})
		},
	}
}

// importJSON is the --json shape of an import.
type importJSON struct {
	PeopleCreated  int                        `json:"peopleCreated"`
	PeopleExisting int                        `json:"peopleExisting"`
	GoalsCreated   int                        `json:"goalsCreated"`
	GoalIDs        map[string]string          `json:"goalIds"`
	Warnings       []contract.WarningResponse `json:"warnings,omitempty"`
}

func newImportCmd(a *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import people and goal ladders from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadImportSchema(args[0])
			if err != nil {
				return err
			}

			if dryRun {
				if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
					msgs := make([]string, len(errs))
					for i, e := range errs {
						msgs[i] = "  " + e.Error()
					}
					return fmt.Errorf("%s is invalid:\n%s", args[0], strings.Join(msgs, "\n"))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d people, %d goals\n",
					args[0], len(schema.People), len(schema.Goals))
				return nil
			}

			res, err := a.Importer.Import(cmd.Context(), schema)
			if err != nil {
				if res != nil && !a.asJSON {
					fmt.Fprintf(cmd.ErrOrStderr(), "Import stopped after %d people and %d goals.\n",
						res.PeopleCreated, res.GoalsCreated)
				}
				return a.fail(cmd, err)
			}

			out := importJSON{
				PeopleCreated:  res.PeopleCreated,
				PeopleExisting: res.PeopleExisting,
				GoalsCreated:   res.GoalsCreated,
				GoalIDs:        res.GoalIDs,
				Warnings:       contract.FromWarnings(res.Warnings),
			}
			return a.render(cmd, out, func() string {
				return fmt.Sprintf("Imported %d people (%d already present) and %d goals.\n%s",
					res.PeopleCreated, res.PeopleExisting, res.GoalsCreated,
					formatter.FormatWarnings(res.Warnings))
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without writing anything")
	return cmd
}
