package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/db"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
	"github.com/alexanderramin/ambitions/internal/repository/memstore"
	"github.com/alexanderramin/ambitions/internal/testutil"
	"github.com/stretchr/testify/require"
)

// fixture is a directory of three people (alice reports to mona; bob is
// unrelated) over one store, with services wired the way main wires them.
type fixture struct {
	store repository.Store
	svc   *Services

	alice *domain.Person
	mona  *domain.Person
	bob   *domain.Person
}

// tickingClock returns a clock that advances one second per call, so every
// mutation gets a distinct updatedAt.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T, store repository.Store, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	people := store.Repos().People

	mona := testutil.NewTestPerson("Mona")
	alice := testutil.NewTestPerson("Alice", testutil.WithManager(mona.ID))
	bob := testutil.NewTestPerson("Bob")
	for _, p := range []*domain.Person{mona, alice, bob} {
		require.NoError(t, people.Create(ctx, p))
	}

	opts = append([]Option{WithClock(tickingClock())}, opts...)
	return &fixture{
		store: store,
		svc:   New(store, nil, opts...),
		alice: alice,
		mona:  mona,
		bob:   bob,
	}
}

func newSQLiteFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newFixture(t, repository.NewSQLiteStore(database, testutil.NewTestUoW(database)), opts...)
}

// newConcurrentSQLiteFixture uses a file-backed database so concurrent
// goroutines get their own pooled connections.
func newConcurrentSQLiteFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "ambitions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return newFixture(t, repository.NewSQLiteStore(database, db.NewSQLiteUnitOfWork(database)), opts...)
}

func newMemFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixture(t, memstore.New(), opts...)
}

// eachStore runs fn against a SQLite-backed and an in-memory fixture.
func eachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteFixture(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, newMemFixture(t)) })
}

// createGoal creates a goal owned by owner through the goal service.
func (f *fixture) createGoal(t *testing.T, owner *domain.Person, title, parentID string) *domain.Goal {
	t.Helper()
	view, err := f.svc.Goals.Create(context.Background(), app.CreateGoalInput{
		Title:    title,
		Type:     domain.GoalBusiness,
		ParentID: parentID,
	}, owner.Email)
	require.NoError(t, err)
	require.Empty(t, view.Warnings)
	return view.Goal
}

// seedGoal writes a goal straight into the store, bypassing the lifecycle.
func (f *fixture) seedGoal(t *testing.T, owner *domain.Person, status domain.GoalStatus) *domain.Goal {
	t.Helper()
	g := testutil.NewTestGoal(owner.ID, "Seeded "+string(status), testutil.WithStatus(status))
	require.NoError(t, f.store.Repos().Goals.Create(context.Background(), g))
	return g
}

func (f *fixture) reload(t *testing.T, id string) *domain.Goal {
	t.Helper()
	g, err := f.store.Repos().Goals.GetByID(context.Background(), id)
	require.NoError(t, err)
	return g
}

func (f *fixture) transition(id string, to domain.GoalStatus, who *domain.Person) (*app.GoalView, error) {
	return f.svc.Lifecycle.Transition(context.Background(), app.TransitionRequest{
		GoalID:         id,
		Status:         string(to),
		RequesterEmail: who.Email,
	})
}

// requireLadderConsistent asserts that parent's summary of child mirrors the
// child record exactly.
func (f *fixture) requireLadderConsistent(t *testing.T, parentID, childID string) {
	t.Helper()
	ctx := context.Background()
	parent := f.reload(t, parentID)
	child := f.reload(t, childID)
	owner, err := f.store.Repos().People.GetByID(ctx, child.OwnerID)
	require.NoError(t, err)

	idx := parent.ChildIndex(childID)
	require.GreaterOrEqual(t, idx, 0, "parent %s has no summary of %s", parentID, childID)
	require.True(t, sameSummary(child.Summarize(owner), parent.Children[idx]),
		"summary %+v does not mirror child %+v", parent.Children[idx], child.Summarize(owner))
}
