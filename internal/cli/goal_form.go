package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/cli/formatter"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func ambitionsHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// goalForm collects the fields of a new goal when create runs without flags.
func goalForm(title, description, goalType *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(title).
				Validate(validateTitle),
			huh.NewText().
				Title("Description").
				Value(description),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Business", string(domain.GoalBusiness)),
					huh.NewOption("Manager effectiveness", string(domain.GoalManagerEffectiveness)),
					huh.NewOption("Personal growth and development", string(domain.GoalPersonalGrowth)),
				).
				Value(goalType),
		),
	).WithTheme(ambitionsHuhTheme()).WithShowHelp(false)
}
