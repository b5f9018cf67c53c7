package cli

import (
	"context"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/cli/formatter"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/spf13/cobra"
)

// ladderJSON is the --json shape of goal tree.
type ladderJSON struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Status   domain.GoalStatus `json:"status"`
	Progress int               `json:"progress"`
	Owner    string            `json:"owner"`
	Stale    bool              `json:"stale,omitempty"`
	Missing  bool              `json:"missing,omitempty"`
	Children []*ladderJSON     `json:"children"`
}

func newGoalTreeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <id>",
		Short: "Show a goal and everything laddered beneath it",
		Long: `Show a goal and everything laddered beneath it.

The tree follows the summaries stored on each parent. A summary that no
longer matches its child record is flagged stale; run reconcile to repair it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveGoalID(ctx, a, args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			root, err := a.Services.Goals.Get(ctx, id)
			if err != nil {
				return a.fail(cmd, err)
			}

			tree := buildLadder(ctx, a, root.Goal, a.ownerNames(ctx))
			return a.render(cmd, tree, func() string {
				return formatter.FormatLadder(toLadderNode(tree))
			})
		},
	}
}

// buildLadder walks child summaries depth first. Each goal is expanded once,
// so a cycle left behind by a bad write cannot loop forever.
func buildLadder(ctx context.Context, a *App, g *domain.Goal, names map[string]string) *ladderJSON {
	seen := map[string]bool{}
	var walk func(g *domain.Goal) *ladderJSON
	walk = func(g *domain.Goal) *ladderJSON {
		seen[g.ID] = true
		node := &ladderJSON{
			ID:       g.ID,
			Title:    g.Title,
			Status:   g.Status,
			Progress: g.Progress,
			Owner:    names[g.OwnerID],
			Children: []*ladderJSON{},
		}
		for _, s := range g.Children {
			if seen[s.ID] {
				continue
			}
			child, err := a.Services.Goals.Get(ctx, s.ID)
			if err != nil {
				if !app.IsCode(err, app.ErrNotFound) {
					a.Logger.Warn("loading laddered goal", "goal_id", s.ID, "error", err)
				}
				node.Children = append(node.Children, &ladderJSON{
					ID: s.ID, Title: s.Title, Status: s.Status, Progress: s.Progress,
					Owner: s.UserName, Stale: true, Missing: true, Children: []*ladderJSON{},
				})
				continue
			}
			c := walk(child.Goal)
			c.Stale = summaryStale(s, child.Goal)
			node.Children = append(node.Children, c)
		}
		return node
	}
	return walk(g)
}

func summaryStale(s domain.LadderSummary, child *domain.Goal) bool {
	return s.Title != child.Title ||
		s.Status != child.Status ||
		s.Progress != child.Progress ||
		s.OwnerID != child.OwnerID
}

func toLadderNode(j *ladderJSON) *formatter.LadderNode {
	n := &formatter.LadderNode{
		Title:    j.Title,
		Status:   j.Status,
		Progress: j.Progress,
		Owner:    j.Owner,
		Stale:    j.Stale,
	}
	for _, c := range j.Children {
		n.Children = append(n.Children, toLadderNode(c))
	}
	return n
}
