package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/cli/formatter"
	"github.com/alexanderramin/ambitions/internal/contract"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/spf13/cobra"
)

// resolveGoalID accepts a full goal id or an unambiguous prefix of one.
func resolveGoalID(ctx context.Context, a *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", app.ValidationError("id", "goal id is required")
	}

	goals, err := a.Services.Goals.List(ctx, app.GoalListFilter{})
	if err != nil {
		return "", err
	}

	var matches []string
	for _, v := range goals {
		if v.Goal.ID == input {
			return input, nil
		}
		if strings.HasPrefix(v.Goal.ID, input) {
			matches = append(matches, v.Goal.ID)
		}
	}

	switch len(matches) {
	case 0:
		// Let the service report not_found for the id as given.
		return input, nil
	case 1:
		return matches[0], nil
	default:
		return "", app.ValidationError("id", "goal id prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func (a *App) ownerNames(ctx context.Context) map[string]string {
	people, err := a.Services.People.List(ctx)
	if err != nil {
		a.Logger.Warn("listing people for display", "error", err)
		return nil
	}
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}
	return names
}

func (a *App) renderGoal(cmd *cobra.Command, v *app.GoalView) error {
	return a.render(cmd, contract.FromView(v), func() string {
		return formatter.FormatGoalDetail(v, a.ownerNames(cmd.Context()))
	})
}

func newGoalCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals", "g"},
		Short:   "Manage goals and their approval status",
	}

	cmd.AddCommand(
		newGoalCreateCmd(a),
		newGoalListCmd(a),
		newGoalShowCmd(a),
		newGoalEditCmd(a),
		newGoalStatusCmd(a),
		newGoalDeleteCmd(a),
		newGoalTreeCmd(a),
		newGoalBrowseCmd(a),
	)
	for _, verb := range transitionVerbs {
		cmd.AddCommand(newGoalVerbCmd(a, verb))
	}

	return cmd
}

func newGoalCreateCmd(a *App) *cobra.Command {
	var in app.CreateGoalInput
	var goalType, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a goal owned by you",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.caller()
			if err != nil {
				return err
			}

			if in.Title == "" && a.interactive() {
				if err := goalForm(&in.Title, &in.Description, &goalType).Run(); err != nil {
					return err
				}
			}
			in.Type = domain.GoalType(goalType)
			in.Status = domain.GoalStatus(status)

			if in.ParentID != "" {
				if in.ParentID, err = resolveGoalID(cmd.Context(), a, in.ParentID); err != nil {
					return a.fail(cmd, err)
				}
			}

			view, err := a.Services.Goals.Create(cmd.Context(), in, email)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.renderGoal(cmd, view)
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Goal title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Longer description")
	cmd.Flags().StringVar(&goalType, "type", string(domain.GoalBusiness), "business, manager_effectiveness or personal_growth_and_development")
	cmd.Flags().StringVar(&status, "status", "", "Initial status: draft (default) or awaiting_approval")
	cmd.Flags().StringVar(&in.ParentID, "parent", "", "Ladder the goal under this parent goal")
	cmd.Flags().IntVar(&in.Progress, "progress", 0, "Progress percentage (0-100)")

	return cmd
}

func newGoalListCmd(a *App) *cobra.Command {
	var ownerEmail, status, parent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter := app.GoalListFilter{Status: domain.GoalStatus(status), ParentID: parent}
			if status != "" {
				if _, ok := domain.ParseGoalStatus(status); !ok {
					return a.fail(cmd, app.InvalidStatusError(status))
				}
			}
			if ownerEmail != "" {
				owner, err := a.Services.People.GetByEmail(ctx, ownerEmail)
				if err != nil {
					return a.fail(cmd, err)
				}
				filter.OwnerID = owner.ID
			}

			views, err := a.Services.Goals.List(ctx, filter)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.render(cmd, contract.FromViews(views), func() string {
				if len(views) == 0 {
					return formatter.Dim("No goals found.")
				}
				return formatter.FormatGoalList(views, a.ownerNames(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&ownerEmail, "owner", "", "Only goals owned by this email")
	cmd.Flags().StringVar(&status, "status", "", "Only goals in this status")
	cmd.Flags().StringVar(&parent, "parent", "", "Only goals laddered under this goal id")

	return cmd
}

func newGoalShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a goal with its ladder summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveGoalID(cmd.Context(), a, args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			view, err := a.Services.Goals.Get(cmd.Context(), id)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.renderGoal(cmd, view)
		},
	}
}

func newGoalEditCmd(a *App) *cobra.Command {
	var title, description string
	var progress int

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a goal you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.caller()
			if err != nil {
				return err
			}
			id, err := resolveGoalID(cmd.Context(), a, args[0])
			if err != nil {
				return a.fail(cmd, err)
			}

			var patch app.GoalPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("progress") {
				patch.Progress = &progress
			}

			view, err := a.Services.Goals.Edit(cmd.Context(), id, patch, email)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.renderGoal(cmd, view)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().IntVar(&progress, "progress", 0, "New progress percentage (0-100)")

	return cmd
}

func (a *App) transition(cmd *cobra.Command, rawID, status, comment string) error {
	email, err := a.caller()
	if err != nil {
		return err
	}
	id, err := resolveGoalID(cmd.Context(), a, rawID)
	if err != nil {
		return a.fail(cmd, err)
	}
	view, err := a.Services.Lifecycle.Transition(cmd.Context(), app.TransitionRequest{
		GoalID:         id,
		Status:         status,
		Comment:        comment,
		RequesterEmail: email,
	})
	if err != nil {
		return a.fail(cmd, err)
	}
	return a.renderGoal(cmd, view)
}

func newGoalStatusCmd(a *App) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a goal to a new status",
		Long: `Move a goal to a new status.

Allowed moves:
  draft              -> awaiting_approval, archived     (owner)
  awaiting_approval  -> approved, draft                 (manager)
  awaiting_approval  -> archived                        (owner or manager)
  approved           -> completed, archived             (owner)
  archived           -> draft                           (owner)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, args[0], args[1], comment)
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Note recorded with the change")
	return cmd
}

type transitionVerb struct {
	name   string
	target domain.GoalStatus
	short  string
}

var transitionVerbs = []transitionVerb{
	{"submit", domain.GoalAwaitingApproval, "Submit a draft for approval"},
	{"approve", domain.GoalApproved, "Approve a goal awaiting approval"},
	{"reject", domain.GoalDraft, "Send a goal awaiting approval back to draft"},
	{"complete", domain.GoalCompleted, "Mark an approved goal completed"},
	{"archive", domain.GoalArchived, "Archive a goal"},
	{"restore", domain.GoalDraft, "Restore an archived goal to draft"},
}

func newGoalVerbCmd(a *App, verb transitionVerb) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   verb.name + " <id>",
		Short: verb.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, args[0], string(verb.target), comment)
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Note recorded with the change")
	return cmd
}

func newGoalDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.caller()
			if err != nil {
				return err
			}
			id, err := resolveGoalID(cmd.Context(), a, args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			warnings, err := a.Services.Goals.Delete(cmd.Context(), id, email)
			if err != nil {
				return a.fail(cmd, err)
			}
			resp := contract.DeleteResponse{ID: id, Deleted: true, Warnings: contract.FromWarnings(warnings)}
			return a.render(cmd, resp, func() string {
				return fmt.Sprintf("Deleted goal %s\n%s", id, formatter.FormatWarnings(warnings))
			})
		},
	}
}
