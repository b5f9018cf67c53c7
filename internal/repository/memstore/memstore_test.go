package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
	"github.com/alexanderramin/ambitions/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemGoalStore_ClonesOnReadAndWrite(t *testing.T) {
	s := NewMemGoalStore()
	ctx := context.Background()

	g := testutil.NewTestGoal("owner-1", "Original")
	require.NoError(t, s.Create(ctx, g))

	g.Title = "Mutated after create"
	fetched, err := s.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", fetched.Title)

	fetched.Children = append(fetched.Children, domain.LadderSummary{ID: "x"})
	again, err := s.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Children)
}

func TestMemGoalStore_NotFoundAndReset(t *testing.T) {
	s := NewMemGoalStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))
	assert.True(t, repository.IsNotFound(s.Update(ctx, testutil.NewTestGoal("o", "ghost"))))

	require.NoError(t, s.Create(ctx, testutil.NewTestGoal("o", "kept")))
	s.Reset()
	all, err := s.List(ctx, repository.GoalFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemLadderIndex_Replace(t *testing.T) {
	idx := NewMemLadderIndex()
	ctx := context.Background()

	require.NoError(t, idx.Link(ctx, "c1", "p1"))
	require.NoError(t, idx.Replace(ctx, []repository.LadderLink{{ChildID: "c2", ParentID: "p2"}}))

	parents, err := idx.ParentsOf(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, parents)
	parents, err = idx.ParentsOf(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, parents)
}

func TestMemPersonRepo_EmailLookupIgnoresCase(t *testing.T) {
	r := NewMemPersonRepo()
	ctx := context.Background()

	p := testutil.NewTestPerson("Alice")
	require.NoError(t, r.Create(ctx, p))
	assert.Error(t, r.Create(ctx, testutil.NewTestPerson("ALICE")))

	got, err := r.GetByEmail(ctx, " Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestFailingGoalStore_InjectsUpdateErrors(t *testing.T) {
	st := New()
	failing := NewFailingGoalStore(st.Goals)
	st.Goals = failing
	ctx := context.Background()

	g := testutil.NewTestGoal("o", "Parent")
	require.NoError(t, st.Goals.Create(ctx, g))

	boom := errors.New("disk full")
	failing.FailUpdate(g.ID, boom)
	assert.ErrorIs(t, st.Repos().Goals.Update(ctx, g), boom)

	failing.FailUpdate(g.ID, nil)
	assert.NoError(t, st.Repos().Goals.Update(ctx, g))
}

func TestStore_WithinTxRefusesDoneContext(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := st.WithinTx(ctx, func(context.Context, repository.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)

	require.NoError(t, st.WithinTx(context.WithoutCancel(ctx), func(context.Context, repository.Repos) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
