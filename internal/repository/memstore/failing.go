package memstore

import (
	"context"
	"sync"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

// FailingGoalStore wraps a GoalRepo and injects errors into Update calls for
// selected goal ids. This simulates a parent write failing after the child
// write already committed.
type FailingGoalStore struct {
	repository.GoalRepo

	mu         sync.Mutex
	failUpdate map[string]error
	failGet    map[string]error
}

func NewFailingGoalStore(inner repository.GoalRepo) *FailingGoalStore {
	return &FailingGoalStore{
		GoalRepo:   inner,
		failUpdate: make(map[string]error),
		failGet:    make(map[string]error),
	}
}

// FailUpdate makes every Update of goal id return err until cleared with a nil err.
func (s *FailingGoalStore) FailUpdate(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failUpdate, id)
		return
	}
	s.failUpdate[id] = err
}

// FailGet makes every GetByID of goal id return err until cleared with a nil err.
func (s *FailingGoalStore) FailGet(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failGet, id)
		return
	}
	s.failGet[id] = err
}

func (s *FailingGoalStore) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	s.mu.Lock()
	err := s.failGet[id]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.GoalRepo.GetByID(ctx, id)
}

func (s *FailingGoalStore) Update(ctx context.Context, g *domain.Goal) error {
	s.mu.Lock()
	err := s.failUpdate[g.ID]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.GoalRepo.Update(ctx, g)
}
