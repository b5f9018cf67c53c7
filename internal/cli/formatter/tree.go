package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single goal in a ladder display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Status domain.GoalStatus
	Detail string
	// Stale marks a summary that no longer matches its child record.
	Stale bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Completed goals get a green ✔
// prefix, approved goals a ● prefix, and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		statusPrefix := ""
		switch item.Status {
		case domain.GoalCompleted:
			statusPrefix = StyleGreen.Render("✔ ")
			title = Dim(title)
		case domain.GoalArchived:
			statusPrefix = StyleDim.Render("✖ ")
			title = Dim(title)
		case domain.GoalApproved:
			statusPrefix = StyleGreen.Render("● ")
		case domain.GoalAwaitingApproval:
			statusPrefix = StyleYellowBold.Render("◔ ")
			title = StyleYellowBold.Render(title)
		}
		if item.Stale {
			title += StyleRed.Render(" (stale)")
		}

		content := prefix + statusPrefix + title
		lines[idx].content = content

		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := max(maxContentWidth-lipgloss.Width(li.content), 0)
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}
