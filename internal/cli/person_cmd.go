package cli

import (
	"fmt"

	"github.com/alexanderramin/ambitions/internal/cli/formatter"
	"github.com/alexanderramin/ambitions/internal/contract"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/spf13/cobra"
)

func newPersonCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "person",
		Aliases: []string{"people"},
		Short:   "Manage the people directory",
	}

	cmd.AddCommand(
		newPersonAddCmd(a),
		newPersonListCmd(a),
	)

	return cmd
}

func newPersonAddCmd(a *App) *cobra.Command {
	var email, name, avatar, managerEmail string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a person to the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := &domain.Person{Email: email, Name: name, AvatarURL: avatar}
			if managerEmail != "" {
				manager, err := a.Services.People.GetByEmail(ctx, managerEmail)
				if err != nil {
					return a.fail(cmd, err)
				}
				p.ManagerID = &manager.ID
			}

			if err := a.Services.People.Add(ctx, p); err != nil {
				return a.fail(cmd, err)
			}
			return a.render(cmd, contract.FromPerson(p), func() string {
				return fmt.Sprintf("Added %s <%s> %s", p.Name, p.Email, formatter.TruncID(p.ID))
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	cmd.Flags().StringVar(&managerEmail, "manager", "", "Email of the person's manager")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPersonListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List people",
		RunE: func(cmd *cobra.Command, args []string) error {
			people, err := a.Services.People.List(cmd.Context())
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.render(cmd, contract.FromPeople(people), func() string {
				if len(people) == 0 {
					return formatter.Dim("No people yet. Add one with: ambitions person add --email ... --name ...")
				}
				return formatter.FormatPeople(people)
			})
		},
	}
}
