package service

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

type goalAssembler struct {
	store  repository.Store
	logger *slog.Logger
}

func NewAssembler(store repository.Store, opts ...Option) Assembler {
	o := buildOptions(opts)
	return &goalAssembler{store: store, logger: o.logger}
}

func (a *goalAssembler) Assemble(ctx context.Context, g *domain.Goal) *app.GoalView {
	view := &app.GoalView{Goal: g}
	if !g.HasParent() {
		return view
	}
	parent, err := a.store.Repos().Goals.GetByID(ctx, *g.ParentID)
	switch {
	case repository.IsNotFound(err):
		a.logger.DebugContext(ctx, "parent goal missing; omitting backlink",
			"goal_id", g.ID, "parent_id", *g.ParentID)
	case err != nil:
		a.logger.WarnContext(ctx, "loading parent goal for backlink",
			"goal_id", g.ID, "parent_id", *g.ParentID, "error", err)
	default:
		view.Parent = &domain.ParentLink{ID: parent.ID, Title: parent.Title}
	}
	return view
}
