package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillLadderLinks(db); err != nil {
		return fmt.Errorf("backfilling ladder links: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS people (
		id          TEXT PRIMARY KEY,
		email       TEXT NOT NULL,
		name        TEXT NOT NULL,
		avatar_url  TEXT NOT NULL DEFAULT '',
		manager_id  TEXT REFERENCES people(id) ON DELETE SET NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_people_email ON people(email)`,
	`CREATE INDEX IF NOT EXISTS idx_people_manager ON people(manager_id)`,

	`CREATE TABLE IF NOT EXISTS goals (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'draft'
		             CHECK(status IN ('draft','awaiting_approval','approved','completed','archived')),
		goal_type    TEXT NOT NULL
		             CHECK(goal_type IN ('business','manager_effectiveness','personal_growth_and_development')),
		owner_id     TEXT NOT NULL,
		parent_id    TEXT,
		progress     INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		achievements TEXT NOT NULL DEFAULT '[]',
		actions      TEXT NOT NULL DEFAULT '[]',
		children     TEXT NOT NULL DEFAULT '[]',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_parent ON goals(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status)`,

	// Child -> parent index over the denormalized children lists.
	`CREATE TABLE IF NOT EXISTS ladder_links (
		child_id   TEXT NOT NULL,
		parent_id  TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
		PRIMARY KEY (child_id, parent_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ladder_links_parent ON ladder_links(parent_id)`,
}

// migrateBackfillLadderLinks indexes every summary already present in a
// goals.children list. Idempotent: existing links are left alone.
func migrateBackfillLadderLinks(db *sql.DB) error {
	ctx := context.Background()

	query := `INSERT OR IGNORE INTO ladder_links (child_id, parent_id)
		SELECT json_extract(j.value, '$.id'), g.id
		FROM goals g, json_each(g.children) j
		WHERE json_extract(j.value, '$.id') IS NOT NULL`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("inserting ladder links: %w", err)
	}
	return nil
}
