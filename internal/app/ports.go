package app

import (
	"context"

	"github.com/alexanderramin/ambitions/internal/domain"
)

type TransitionUseCase interface {
	Transition(ctx context.Context, req TransitionRequest) (*GoalView, error)
}

type GoalUseCase interface {
	Create(ctx context.Context, in CreateGoalInput, creatorEmail string) (*GoalView, error)
	Edit(ctx context.Context, id string, patch GoalPatch, editorEmail string) (*GoalView, error)
	Get(ctx context.Context, id string) (*GoalView, error)
	List(ctx context.Context, filter GoalListFilter) ([]*GoalView, error)
	Delete(ctx context.Context, id string, requesterEmail string) ([]Warning, error)
}

type ReconcileUseCase interface {
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

// GoalListFilter narrows a listing. Zero-valued fields are ignored.
type GoalListFilter struct {
	OwnerID  string
	Status   domain.GoalStatus
	ParentID string
}
