package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
	"github.com/alexanderramin/ambitions/internal/repository/memstore"
	"github.com/alexanderramin/ambitions/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoster(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRoster_CanApprove(t *testing.T) {
	people := memstore.NewMemPersonRepo()
	alice := testutil.NewTestPerson("Alice")
	bob := testutil.NewTestPerson("Bob")
	require.NoError(t, people.Create(context.Background(), alice))
	require.NoError(t, people.Create(context.Background(), bob))

	path := filepath.Join(t.TempDir(), "roster.yaml")
	writeRoster(t, path, `
approvers:
  - email: Head@Example.com
    all: true
  - email: mona@example.com
    owners: [ALICE@example.com]
`)
	r, err := Load(path, people)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	ctx := context.Background()

	tests := []struct {
		approver, owner string
		want            bool
	}{
		{"head@example.com", bob.ID, true},
		{"mona@example.com", alice.ID, true},
		{"MONA@example.com", alice.ID, true},
		{"mona@example.com", bob.ID, false},
		{"mona@example.com", "unknown", false},
		{"alice@example.com", alice.ID, false},
	}
	for _, tc := range tests {
		got, err := r.CanApprove(ctx, tc.approver, tc.owner)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s over %s", tc.approver, tc.owner)
	}
}

type brokenDirectory struct{ err error }

func (d brokenDirectory) GetByID(context.Context, string) (*domain.Person, error) {
	return nil, d.err
}

func TestRoster_CanApprovePropagatesDirectoryFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	writeRoster(t, path, `
approvers:
  - email: head@example.com
    all: true
  - email: mona@example.com
    owners: [alice@example.com]
`)
	outage := errors.New("database is locked")
	r, err := Load(path, brokenDirectory{err: outage})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.CanApprove(ctx, "mona@example.com", "alice-id")
	assert.ErrorIs(t, err, outage)

	// A blanket grant never consults the directory.
	ok, err := r.CanApprove(ctx, "head@example.com", "alice-id")
	require.NoError(t, err)
	assert.True(t, ok)

	r, err = Load(path, brokenDirectory{err: fmt.Errorf("person alice-id: %w", repository.ErrNotFound)})
	require.NoError(t, err)
	ok, err = r.CanApprove(ctx, "mona@example.com", "alice-id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParse_RejectsBadEntries(t *testing.T) {
	_, err := parse([]byte("approvers:\n  - all: true\n"))
	assert.ErrorContains(t, err, "email is required")

	_, err = parse([]byte("approvers:\n  - email: a@x\n"))
	assert.ErrorContains(t, err, "set all or list owners")

	_, err = parse([]byte("approvers: {not: a list"))
	assert.Error(t, err)
}

func TestRoster_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	writeRoster(t, path, "approvers:\n  - email: head@x\n    all: true\n")
	r, err := Load(path, nil)
	require.NoError(t, err)

	writeRoster(t, path, "approvers: [")
	assert.Error(t, r.Reload())

	ok, err := r.CanApprove(context.Background(), "head@x", "anyone")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRoster_WatchPicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	writeRoster(t, path, "approvers:\n  - email: head@x\n    all: true\n")
	r, err := Load(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))) }()
	// Give the watcher a moment to register before editing.
	time.Sleep(50 * time.Millisecond)

	writeRoster(t, path, "approvers:\n  - email: deputy@x\n    all: true\n")
	assert.Eventually(t, func() bool {
		ok, _ := r.CanApprove(context.Background(), "deputy@x", "anyone")
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	ok, _ := r.CanApprove(context.Background(), "head@x", "anyone")
	assert.False(t, ok)

	cancel()
	require.NoError(t, <-done)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
