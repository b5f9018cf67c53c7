package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/ambitions/internal/db"
)

// SQLiteLadderIndexRepo implements LadderIndexRepo over the ladder_links table.
type SQLiteLadderIndexRepo struct {
	db db.DBTX
}

func NewSQLiteLadderIndexRepo(db db.DBTX) *SQLiteLadderIndexRepo {
	return &SQLiteLadderIndexRepo{db: db}
}

func (r *SQLiteLadderIndexRepo) Link(ctx context.Context, childID, parentID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ladder_links (child_id, parent_id) VALUES (?, ?)`, childID, parentID)
	if err != nil {
		return fmt.Errorf("linking %s under %s: %w", childID, parentID, err)
	}
	return nil
}

func (r *SQLiteLadderIndexRepo) ParentsOf(ctx context.Context, childID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT parent_id FROM ladder_links WHERE child_id = ? ORDER BY parent_id`, childID)
	if err != nil {
		return nil, fmt.Errorf("listing parents of %s: %w", childID, err)
	}
	defer rows.Close()

	var parents []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning ladder link: %w", err)
		}
		parents = append(parents, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ladder links: %w", err)
	}
	return parents, nil
}

func (r *SQLiteLadderIndexRepo) Unlink(ctx context.Context, childID, parentID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM ladder_links WHERE child_id = ? AND parent_id = ?`, childID, parentID)
	if err != nil {
		return fmt.Errorf("unlinking %s from %s: %w", childID, parentID, err)
	}
	return nil
}

// Replace rewrites the whole index. Run it inside a UnitOfWork so readers
// never observe the empty intermediate state.
func (r *SQLiteLadderIndexRepo) Replace(ctx context.Context, links []LadderLink) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ladder_links`); err != nil {
		return fmt.Errorf("clearing ladder links: %w", err)
	}
	for _, l := range links {
		if err := r.Link(ctx, l.ChildID, l.ParentID); err != nil {
			return err
		}
	}
	return nil
}
