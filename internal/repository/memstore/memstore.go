// Package memstore provides in-process goal, ladder and person stores.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

// MemGoalStore is an in-process GoalRepo. Records are cloned on the way in
// and out so callers never share slices with the store.
type MemGoalStore struct {
	mu    sync.RWMutex
	goals map[string]*domain.Goal
}

func NewMemGoalStore() *MemGoalStore {
	return &MemGoalStore{goals: make(map[string]*domain.Goal)}
}

// Reset empties the store between test cases.
func (s *MemGoalStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = make(map[string]*domain.Goal)
}

func (s *MemGoalStore) Create(_ context.Context, g *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; ok {
		return fmt.Errorf("inserting goal: duplicate id %s", g.ID)
	}
	s.goals[g.ID] = g.Clone()
	return nil
}

func (s *MemGoalStore) GetByID(_ context.Context, id string) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, repository.ErrNotFound)
	}
	return g.Clone(), nil
}

func (s *MemGoalStore) List(_ context.Context, f repository.GoalFilter) ([]*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Goal
	for _, g := range s.goals {
		if f.OwnerID != "" && g.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		if f.ParentID != "" && (g.ParentID == nil || *g.ParentID != f.ParentID) {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemGoalStore) Update(_ context.Context, g *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		return fmt.Errorf("goal %s: %w", g.ID, repository.ErrNotFound)
	}
	s.goals[g.ID] = g.Clone()
	return nil
}

func (s *MemGoalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("goal %s: %w", id, repository.ErrNotFound)
	}
	delete(s.goals, id)
	return nil
}

// MemLadderIndex is an in-process LadderIndexRepo.
type MemLadderIndex struct {
	mu      sync.Mutex
	parents map[string]map[string]bool
}

func NewMemLadderIndex() *MemLadderIndex {
	return &MemLadderIndex{parents: make(map[string]map[string]bool)}
}

func (m *MemLadderIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents = make(map[string]map[string]bool)
}

func (m *MemLadderIndex) Link(_ context.Context, childID, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.parents[childID] == nil {
		m.parents[childID] = make(map[string]bool)
	}
	m.parents[childID][parentID] = true
	return nil
}

func (m *MemLadderIndex) ParentsOf(_ context.Context, childID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.parents[childID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemLadderIndex) Unlink(_ context.Context, childID, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.parents[childID], parentID)
	if len(m.parents[childID]) == 0 {
		delete(m.parents, childID)
	}
	return nil
}

func (m *MemLadderIndex) Replace(_ context.Context, links []repository.LadderLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents = make(map[string]map[string]bool)
	for _, l := range links {
		if m.parents[l.ChildID] == nil {
			m.parents[l.ChildID] = make(map[string]bool)
		}
		m.parents[l.ChildID][l.ParentID] = true
	}
	return nil
}

// MemPersonRepo is an in-process PersonRepo.
type MemPersonRepo struct {
	mu     sync.RWMutex
	people map[string]*domain.Person
}

func NewMemPersonRepo() *MemPersonRepo {
	return &MemPersonRepo{people: make(map[string]*domain.Person)}
}

func (r *MemPersonRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.people = make(map[string]*domain.Person)
}

func (r *MemPersonRepo) Create(_ context.Context, p *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.people {
		if domain.SameEmail(existing.Email, p.Email) {
			return fmt.Errorf("inserting person: email %s already registered", p.Email)
		}
	}
	cp := *p
	cp.Email = domain.NormalizeEmail(p.Email)
	r.people[p.ID] = &cp
	return nil
}

func (r *MemPersonRepo) GetByID(_ context.Context, id string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.people[id]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", id, repository.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *MemPersonRepo) GetByEmail(_ context.Context, email string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.people {
		if domain.SameEmail(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("person %s: %w", email, repository.ErrNotFound)
}

func (r *MemPersonRepo) List(_ context.Context) ([]*domain.Person, error) {
	return r.filter(func(*domain.Person) bool { return true }), nil
}

func (r *MemPersonRepo) ListReports(_ context.Context, managerID string) ([]*domain.Person, error) {
	return r.filter(func(p *domain.Person) bool {
		return p.ManagerID != nil && *p.ManagerID == managerID
	}), nil
}

func (r *MemPersonRepo) filter(keep func(*domain.Person) bool) []*domain.Person {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Person
	for _, p := range r.people {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var (
	_ repository.GoalRepo        = (*MemGoalStore)(nil)
	_ repository.LadderIndexRepo = (*MemLadderIndex)(nil)
	_ repository.PersonRepo      = (*MemPersonRepo)(nil)
)

// Store is an in-process repository.Store. It is constructed once per test or
// process and injected; Reset clears it between test cases. Fields are
// exported so tests can wrap a repository with a fault-injecting one.
type Store struct {
	Goals  repository.GoalRepo
	Ladder repository.LadderIndexRepo
	People repository.PersonRepo

	goals  *MemGoalStore
	ladder *MemLadderIndex
	people *MemPersonRepo

	// txMu serializes WithinTx callbacks the way a single SQLite writer would.
	txMu sync.Mutex
}

func New() *Store {
	s := &Store{
		goals:  NewMemGoalStore(),
		ladder: NewMemLadderIndex(),
		people: NewMemPersonRepo(),
	}
	s.Goals, s.Ladder, s.People = s.goals, s.ladder, s.people
	return s
}

// Reset empties every underlying repository. Wrappers installed on the
// exported fields are kept.
func (s *Store) Reset() {
	s.goals.Reset()
	s.ladder.Reset()
	s.people.Reset()
}

func (s *Store) Repos() repository.Repos {
	return repository.Repos{Goals: s.Goals, Ladder: s.Ladder, People: s.People}
}

// WithinTx runs fn against the shared repositories. Writes are not rolled
// back when fn fails. Like BeginTx, it refuses to start on a done context.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx, s.Repos())
}

var _ repository.Store = (*Store)(nil)
