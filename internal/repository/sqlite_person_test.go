package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/ambitions/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonRepo_CreateAndLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePersonRepo(db)
	ctx := context.Background()

	p := testutil.NewTestPerson("Alice", testutil.WithPersonID("person-alice"))
	p.Email = "  Alice@Example.COM "
	require.NoError(t, repo.Create(ctx, p))

	byID, err := repo.GetByID(ctx, "person-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "Alice", byID.Name)
	assert.Nil(t, byID.ManagerID)

	// Email lookup is case-insensitive.
	byEmail, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byEmail.ID)
}

func TestPersonRepo_DuplicateEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePersonRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestPerson("Alice")))
	assert.Error(t, repo.Create(ctx, testutil.NewTestPerson("Alice")))
}

func TestPersonRepo_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePersonRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.True(t, IsNotFound(err))
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, IsNotFound(err))
}

func TestPersonRepo_ListReports(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePersonRepo(db)
	ctx := context.Background()

	mgr := testutil.NewTestPerson("Mona")
	require.NoError(t, repo.Create(ctx, mgr))
	zed := testutil.NewTestPerson("Zed", testutil.WithManager(mgr.ID))
	amy := testutil.NewTestPerson("Amy", testutil.WithManager(mgr.ID))
	loner := testutil.NewTestPerson("Lou")
	require.NoError(t, repo.Create(ctx, zed))
	require.NoError(t, repo.Create(ctx, amy))
	require.NoError(t, repo.Create(ctx, loner))

	reports, err := repo.ListReports(ctx, mgr.ID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Amy", reports[0].Name)
	assert.Equal(t, "Zed", reports[1].Name)
	require.NotNil(t, reports[0].ManagerID)
	assert.Equal(t, mgr.ID, *reports[0].ManagerID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
