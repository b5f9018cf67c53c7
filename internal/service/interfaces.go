package service

import (
	"context"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
)

// LifecycleService moves goals through the approval workflow.
type LifecycleService interface {
	app.TransitionUseCase
}

type GoalService interface {
	app.GoalUseCase
}

// HierarchyService keeps ladder summaries on parent goals in step with the
// child records they mirror. Callers hold the child's key lock; the service
// takes parent locks itself. Failures after the child write are returned as
// warnings rather than errors.
type HierarchyService interface {
	Attach(ctx context.Context, child *domain.Goal) []app.Warning
	Propagate(ctx context.Context, goal *domain.Goal) []app.Warning
	Detach(ctx context.Context, childID string) []app.Warning
	app.ReconcileUseCase
}

// Assembler builds the outward view of a goal. It never mutates and never
// fails: an unresolvable parent simply has no backlink.
type Assembler interface {
	Assemble(ctx context.Context, g *domain.Goal) *app.GoalView
}

type PersonService interface {
	Add(ctx context.Context, p *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)
	List(ctx context.Context) ([]*domain.Person, error)
	ListReports(ctx context.Context, managerID string) ([]*domain.Person, error)
}

// Approver decides whether approverEmail may approve goals owned by ownerID.
type Approver interface {
	CanApprove(ctx context.Context, approverEmail, ownerID string) (bool, error)
}
