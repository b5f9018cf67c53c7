package service

import (
	"context"
	"time"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
	"github.com/google/uuid"
)

type personService struct {
	store repository.Store
	opts  options
}

func NewPersonService(store repository.Store, opts ...Option) PersonService {
	return &personService{store: store, opts: buildOptions(opts)}
}

func (s *personService) Add(ctx context.Context, p *domain.Person) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"email": p.Email}
	defer func() { observe(ctx, s.opts.observer, "add-person", startedAt, fields, &err) }()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Email = domain.NormalizeEmail(p.Email)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.opts.clock()
	}
	if err := p.Validate(); err != nil {
		return app.ValidationError("person", "%v", err)
	}

	return s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if p.ManagerID != nil {
			if _, err := r.People.GetByID(ctx, *p.ManagerID); err != nil {
				if repository.IsNotFound(err) {
					return app.ValidationError("managerId", "manager %s is not in the directory", *p.ManagerID)
				}
				return app.StorageError("resolving manager", err)
			}
		}
		if _, err := r.People.GetByEmail(ctx, p.Email); err == nil {
			return app.ValidationError("email", "%s is already registered", p.Email)
		}
		if err := r.People.Create(ctx, p); err != nil {
			return app.StorageError("adding person", err)
		}
		return nil
	})
}

func (s *personService) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	p, err := s.store.Repos().People.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, app.NotFoundError("person", id, err)
	}
	if err != nil {
		return nil, app.StorageError("loading person", err)
	}
	return p, nil
}

func (s *personService) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	p, err := s.store.Repos().People.GetByEmail(ctx, email)
	if repository.IsNotFound(err) {
		return nil, app.NotFoundError("person", email, err)
	}
	if err != nil {
		return nil, app.StorageError("loading person", err)
	}
	return p, nil
}

func (s *personService) List(ctx context.Context) ([]*domain.Person, error) {
	people, err := s.store.Repos().People.List(ctx)
	if err != nil {
		return nil, app.StorageError("listing people", err)
	}
	return people, nil
}

func (s *personService) ListReports(ctx context.Context, managerID string) ([]*domain.Person, error) {
	people, err := s.store.Repos().People.ListReports(ctx, managerID)
	if err != nil {
		return nil, app.StorageError("listing reports", err)
	}
	return people, nil
}
