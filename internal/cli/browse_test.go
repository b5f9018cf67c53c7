package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m *browseModel, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd != nil {
		m.Update(cmd())
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseModel_NavigateAndOpen(t *testing.T) {
	f := newCLIFixture(t)
	company := f.goalJSON(t, f.mona.Email, "goal", "create", "--title", "Company goal")
	f.goalJSON(t, f.alice.Email, "goal", "create", "--title", "Team goal", "--parent", company.ID)

	m := newBrowseModel(context.Background(), f.app)
	m.Update(m.Init()())
	require.Len(t, m.views, 2)
	assert.Contains(t, m.View(), "Company goal")
	assert.Contains(t, m.View(), "Mona")

	press(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor)
	press(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor, "cursor stops at the last goal")

	press(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor)

	press(t, m, runes("/"))
	press(t, m, runes("team"))
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)
	assert.Equal(t, "Team goal", m.detail.Goal.Title)
	assert.Contains(t, m.View(), "Company goal", "detail shows the parent backlink")

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.detail)
}

func TestBrowseModel_Filter(t *testing.T) {
	f := newCLIFixture(t)
	f.goalJSON(t, f.mona.Email, "goal", "create", "--title", "Company goal")
	f.goalJSON(t, f.alice.Email, "goal", "create", "--title", "Team goal")

	m := newBrowseModel(context.Background(), f.app)
	m.Update(m.Init()())

	press(t, m, runes("/"))
	require.True(t, m.filtering)
	press(t, m, runes("team"))
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Team goal", m.visible()[0].Goal.Title)

	press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "tea", m.filter)

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
	assert.Len(t, m.visible(), 2)
}

func TestBrowseModel_Quit(t *testing.T) {
	f := newCLIFixture(t)
	m := newBrowseModel(context.Background(), f.app)
	m.Update(m.Init()())
	assert.Contains(t, m.View(), "No goals")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
