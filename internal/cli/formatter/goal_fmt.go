package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// FormatGoalList renders goals as a table inside a bordered box. owners maps
// person ids to display names; unknown owners show their truncated id.
func FormatGoalList(views []*app.GoalView, owners map[string]string) string {
	headers := []string{"ID", "TITLE", "TYPE", "STATUS", "PROGRESS", "OWNER", "UPDATED"}
	rows := make([][]string, 0, len(views))

	for _, v := range views {
		g := v.Goal
		title := Bold(g.Title)
		if v.Parent != nil {
			title += Dim(" ↑ " + v.Parent.Title)
		}
		rows = append(rows, []string{
			TruncID(g.ID),
			title,
			TypeBadge(g.Type),
			StatusPill(g.Status),
			RenderProgress(g.Progress, 10),
			ownerName(owners, g.OwnerID),
			Dim(HumanTimestamp(g.UpdatedAt)),
		})
	}

	return RenderBox("Goals", RenderTable(headers, rows))
}

// FormatGoalDetail renders one assembled goal: metadata on the left, its
// ladder summaries on the right, warnings underneath.
func FormatGoalDetail(v *app.GoalView, owners map[string]string) string {
	g := v.Goal

	var meta strings.Builder
	meta.WriteString(Bold(g.Title) + "\n")
	meta.WriteString(Dim(g.ID) + "\n\n")
	fmt.Fprintf(&meta, "%s  %s\n", Dim("Status  "), StatusPill(g.Status))
	fmt.Fprintf(&meta, "%s  %s\n", Dim("Type    "), TypeBadge(g.Type))
	fmt.Fprintf(&meta, "%s  %s\n", Dim("Owner   "), ownerName(owners, g.OwnerID))
	fmt.Fprintf(&meta, "%s  %s\n", Dim("Progress"), RenderProgress(g.Progress, 16))
	switch {
	case v.Parent != nil:
		fmt.Fprintf(&meta, "%s  %s\n", Dim("Parent  "), v.Parent.Title)
	case g.HasParent():
		fmt.Fprintf(&meta, "%s  %s\n", Dim("Parent  "), StyleRed.Render(*g.ParentID+" (missing)"))
	}
	fmt.Fprintf(&meta, "%s  %s\n", Dim("Updated "), HumanTimestamp(g.UpdatedAt))
	if g.Description != "" {
		meta.WriteString("\n" + g.Description + "\n")
	}
	if len(g.Achievements) > 0 {
		meta.WriteString("\n" + Header("Achievements") + "\n")
		for _, a := range g.Achievements {
			fmt.Fprintf(&meta, "• %s %s %s\n", a.Title, Dim(a.Status), RenderProgress(a.Progress, 8))
		}
	}
	if len(g.Actions) > 0 {
		meta.WriteString("\n" + Header("Actions") + "\n")
		for _, a := range g.Actions {
			fmt.Fprintf(&meta, "• %s %s\n", a.Title, Dim(a.Status))
		}
	}

	body := strings.TrimRight(meta.String(), "\n")
	if len(g.Children) > 0 {
		var ladder strings.Builder
		ladder.WriteString(Header("Laddered goals") + "\n")
		for _, c := range g.Children {
			fmt.Fprintf(&ladder, "%s %s\n  %s  %s\n",
				StatusPill(c.Status), Bold(c.Title),
				Dim(c.UserName), RenderProgress(c.Progress, 8))
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "    ", strings.TrimRight(ladder.String(), "\n"))
	}

	out := RenderBox("Goal", body)
	if w := FormatWarnings(v.Warnings); w != "" {
		out += "\n" + w
	}
	return out
}

// LadderNode is one goal in a ladder tree. Stale marks a summary on the
// parent that no longer mirrors the child record.
type LadderNode struct {
	Title    string
	Status   domain.GoalStatus
	Progress int
	Owner    string
	Stale    bool
	Children []*LadderNode
}

// FormatLadder renders root and every goal laddered beneath it.
func FormatLadder(root *LadderNode) string {
	var items []TreeItem
	var walk func(n *LadderNode, level int, last bool)
	walk = func(n *LadderNode, level int, last bool) {
		items = append(items, TreeItem{
			Title:  n.Title,
			Level:  level,
			IsLast: last,
			Status: n.Status,
			Detail: fmt.Sprintf("%d%% %s", n.Progress, n.Owner),
			Stale:  n.Stale,
		})
		for i, c := range n.Children {
			walk(c, level+1, i == len(n.Children)-1)
		}
	}
	walk(root, 0, true)
	return RenderTree(items)
}

// FormatWarnings renders secondary failures. Empty input renders nothing.
func FormatWarnings(ws []app.Warning) string {
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range ws {
		fmt.Fprintf(&b, "%s %s\n", StyleYellowBold.Render("⚠ "+string(w.Code)), w.Message)
	}
	b.WriteString(Dim("Run `ambitions reconcile` to repair stale ladder summaries.") + "\n")
	return b.String()
}

func FormatReconcile(r *app.ReconcileReport) string {
	rows := [][]string{
		{"Goals scanned", fmt.Sprint(r.GoalsScanned)},
		{"Parents rewritten", fmt.Sprint(r.ParentsRewritten)},
		{"Summaries added", fmt.Sprint(r.SummariesAdded)},
		{"Summaries updated", fmt.Sprint(r.SummariesUpdated)},
		{"Summaries removed", fmt.Sprint(r.SummariesRemoved)},
		{"Ladder links indexed", fmt.Sprint(r.LinksIndexed)},
	}
	out := RenderBox("Reconcile", RenderTable([]string{"CHECK", "COUNT"}, rows))
	if len(r.DanglingParents) > 0 {
		out += "\n" + StyleYellow.Render("Goals pointing at missing parents: ") +
			strings.Join(r.DanglingParents, ", ") + "\n"
	}
	if w := FormatWarnings(r.Warnings); w != "" {
		out += "\n" + w
	}
	return out
}

func FormatPeople(people []*domain.Person) string {
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		manager := Dim("--")
		if p.ManagerID != nil {
			manager = ownerName(names, *p.ManagerID)
		}
		rows = append(rows, []string{TruncID(p.ID), Bold(p.Name), p.Email, manager})
	}
	return RenderBox("People", RenderTable([]string{"ID", "NAME", "EMAIL", "MANAGER"}, rows))
}

func ownerName(owners map[string]string, id string) string {
	if name, ok := owners[id]; ok && name != "" {
		return name
	}
	return TruncID(id)
}
