package service

import (
	"context"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

// DirectoryApprover lets a person approve goals owned by their direct reports.
type DirectoryApprover struct {
	people repository.PersonRepo
}

func NewDirectoryApprover(people repository.PersonRepo) *DirectoryApprover {
	return &DirectoryApprover{people: people}
}

func (a *DirectoryApprover) CanApprove(ctx context.Context, approverEmail, ownerID string) (bool, error) {
	owner, err := a.people.GetByID(ctx, ownerID)
	if repository.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if owner.ManagerID == nil {
		return false, nil
	}
	mgr, err := a.people.GetByID(ctx, *owner.ManagerID)
	if repository.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return domain.SameEmail(mgr.Email, approverEmail), nil
}

// FixedEmailApprover grants approval rights over every goal to one address.
// It exists for deployments still configured with a single manager email.
type FixedEmailApprover struct {
	Email string
}

func (a FixedEmailApprover) CanApprove(_ context.Context, approverEmail, _ string) (bool, error) {
	return domain.SameEmail(a.Email, approverEmail), nil
}

// AnyApprover grants approval when any member does. Members are consulted in
// order; the first error stops the walk.
type AnyApprover []Approver

func (as AnyApprover) CanApprove(ctx context.Context, approverEmail, ownerID string) (bool, error) {
	for _, a := range as {
		if a == nil {
			continue
		}
		ok, err := a.CanApprove(ctx, approverEmail, ownerID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

var (
	_ Approver = (*DirectoryApprover)(nil)
	_ Approver = FixedEmailApprover{}
	_ Approver = AnyApprover(nil)
)
