package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/ambitions/internal/domain"
)

// ErrNotFound is wrapped by every repository lookup that misses.
var ErrNotFound = errors.New("not found")

// GoalFilter narrows List results. Zero-valued fields are ignored.
type GoalFilter struct {
	OwnerID  string
	Status   domain.GoalStatus
	ParentID string
}

// GoalRepo is the goal store: keyed storage of full goal records.
type GoalRepo interface {
	Create(ctx context.Context, g *domain.Goal) error
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	List(ctx context.Context, filter GoalFilter) ([]*domain.Goal, error)
	// Update writes the full record, children included.
	Update(ctx context.Context, g *domain.Goal) error
	Delete(ctx context.Context, id string) error
}

// LadderLink records that ChildID has a summary in ParentID's children list.
type LadderLink struct {
	ChildID  string
	ParentID string
}

// LadderIndexRepo maps child goal ids to the parents holding their summary.
type LadderIndexRepo interface {
	Link(ctx context.Context, childID, parentID string) error
	ParentsOf(ctx context.Context, childID string) ([]string, error)
	Unlink(ctx context.Context, childID, parentID string) error
	// Replace swaps the whole index for links.
	Replace(ctx context.Context, links []LadderLink) error
}

type PersonRepo interface {
	Create(ctx context.Context, p *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)
	List(ctx context.Context) ([]*domain.Person, error)
	ListReports(ctx context.Context, managerID string) ([]*domain.Person, error)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
