package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"people", "goals", "ladder_links"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_people_email",
		"idx_people_manager",
		"idx_goals_owner",
		"idx_goals_parent",
		"idx_goals_status",
		"idx_ladder_links_parent",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_StatusConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO goals (id, title, status, goal_type, owner_id, created_at, updated_at)
		VALUES ('g1', 't', 'pending', 'business', 'p1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "unknown status should violate CHECK constraint")
}

// TestMigrate_BackfillsLadderLinks simulates a database whose goals carry
// children summaries written before the ladder_links index existed.
func TestMigrate_BackfillsLadderLinks(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE goals (
		id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft', goal_type TEXT NOT NULL, owner_id TEXT NOT NULL,
		parent_id TEXT, progress INTEGER NOT NULL DEFAULT 0,
		achievements TEXT NOT NULL DEFAULT '[]', actions TEXT NOT NULL DEFAULT '[]',
		children TEXT NOT NULL DEFAULT '[]', created_at TEXT NOT NULL, updated_at TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO goals (id, title, goal_type, owner_id, children, created_at, updated_at)
		VALUES ('parent', 'P', 'business', 'p1', '[{"id":"c1","title":"C1"},{"id":"c2","title":"C2"}]', 'x', 'x')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	rows, err := db.Query(`SELECT child_id FROM ladder_links WHERE parent_id = 'parent' ORDER BY child_id`)
	require.NoError(t, err)
	defer rows.Close()
	var children []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		children = append(children, id)
	}
	assert.Equal(t, []string{"c1", "c2"}, children)

	// Re-running does not duplicate links.
	require.NoError(t, Migrate(db))
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ladder_links`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(errString("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsBusy(errString("no such table: goals")))
	assert.False(t, IsBusy(nil))
}

type errString string

func (e errString) Error() string { return string(e) }
