package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newGoalBrowseCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse goals interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.interactive() {
				return fmt.Errorf("browse needs an interactive terminal; use goal list instead")
			}
			m := newBrowseModel(cmd.Context(), a)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

type browseKeys struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Filter key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Filter, k.Back, k.Quit}
}

func (k browseKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func defaultBrowseKeys() browseKeys {
	return browseKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// goalsLoadedMsg carries the result of listing goals.
type goalsLoadedMsg struct {
	views []*app.GoalView
	names map[string]string
	err   error
}

// goalOpenedMsg carries a freshly assembled goal for the detail pane.
type goalOpenedMsg struct {
	view *app.GoalView
	err  error
}

// browseModel is a navigable goal list with a detail pane. Opening a goal
// re-reads it so the pane reflects the latest parent and children.
type browseModel struct {
	ctx  context.Context
	app  *App
	keys browseKeys
	help help.Model

	views  []*app.GoalView
	names  map[string]string
	cursor int
	err    error

	filtering bool
	filter    string

	detail *app.GoalView
}

func newBrowseModel(ctx context.Context, a *App) *browseModel {
	return &browseModel{ctx: ctx, app: a, keys: defaultBrowseKeys(), help: help.New()}
}

func (m *browseModel) Init() tea.Cmd {
	return m.load
}

func (m *browseModel) load() tea.Msg {
	views, err := m.app.Services.Goals.List(m.ctx, app.GoalListFilter{})
	return goalsLoadedMsg{views: views, names: m.app.ownerNames(m.ctx), err: err}
}

func (m *browseModel) open(id string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.app.Services.Goals.Get(m.ctx, id)
		return goalOpenedMsg{view: view, err: err}
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case goalsLoadedMsg:
		m.views, m.names, m.err = msg.views, msg.names, msg.err
		return m, nil
	case goalOpenedMsg:
		m.detail, m.err = msg.view, msg.err
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *browseModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visible()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.detail = nil
	case m.detail != nil:
		// Only back and quit apply in the detail pane.
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(visible) {
			return m, m.open(visible[m.cursor].Goal.ID)
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter = ""
	}
	return m, nil
}

func (m *browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
		m.cursor = 0
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
		m.cursor = 0
	}
	return m, nil
}

func (m *browseModel) visible() []*app.GoalView {
	if m.filter == "" {
		return m.views
	}
	lf := strings.ToLower(m.filter)
	var out []*app.GoalView
	for _, v := range m.views {
		if strings.Contains(strings.ToLower(v.Goal.Title), lf) ||
			strings.Contains(string(v.Goal.Status), lf) {
			out = append(out, v)
		}
	}
	return out
}

func (m *browseModel) View() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if m.detail != nil {
		b.WriteString(formatter.FormatGoalDetail(m.detail, m.names))
		b.WriteString("\n" + m.help.View(m.keys))
		return b.String()
	}

	b.WriteString(formatter.Header("Goals") + "\n\n")
	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(formatter.Dim("  No goals.") + "\n")
	}
	for i, v := range visible {
		cursor := "  "
		title := v.Goal.Title
		if i == m.cursor {
			cursor = formatter.StyleYellowBold.Render("▸ ")
			title = formatter.Bold(title)
		}
		fmt.Fprintf(&b, "%s%s  %s  %s\n", cursor, formatter.StatusPill(v.Goal.Status), title,
			formatter.Dim(m.names[v.Goal.OwnerID]))
	}
	if m.filtering {
		b.WriteString("\n/" + m.filter + "█\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
