package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/db"
	"github.com/alexanderramin/ambitions/internal/domain"
)

// goalColumns is the canonical SELECT column list for goals.
const goalColumns = `id, title, description, status, goal_type, owner_id, parent_id, progress,
		achievements, actions, children, created_at, updated_at`

// SQLiteGoalRepo implements GoalRepo using a SQLite database.
type SQLiteGoalRepo struct {
	db db.DBTX
}

// NewSQLiteGoalRepo creates a new SQLiteGoalRepo.
func NewSQLiteGoalRepo(db db.DBTX) *SQLiteGoalRepo {
	return &SQLiteGoalRepo{db: db}
}

type encodedGoal struct {
	achievements, actions, children string
}

func encodeGoal(g *domain.Goal) (encodedGoal, error) {
	var e encodedGoal
	var err error
	if e.achievements, err = encodeJSON("achievements", g.Achievements); err != nil {
		return e, err
	}
	if e.actions, err = encodeJSON("actions", g.Actions); err != nil {
		return e, err
	}
	if e.children, err = encodeJSON("children", g.Children); err != nil {
		return e, err
	}
	return e, nil
}

func (r *SQLiteGoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	enc, err := encodeGoal(g)
	if err != nil {
		return err
	}
	query := `INSERT INTO goals (id, title, description, status, goal_type, owner_id, parent_id, progress,
		achievements, actions, children, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		g.ID,
		g.Title,
		g.Description,
		string(g.Status),
		string(g.Type),
		g.OwnerID,
		nullableString(g.ParentID),
		g.Progress,
		enc.achievements,
		enc.actions,
		enc.children,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	return nil
}

func (r *SQLiteGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ?`
	g, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteGoalRepo) List(ctx context.Context, filter GoalFilter) ([]*domain.Goal, error) {
	var where []string
	var args []any
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ParentID != "" {
		where = append(where, "parent_id = ?")
		args = append(args, filter.ParentID)
	}

	query := `SELECT ` + goalColumns + ` FROM goals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal row: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteGoalRepo) Update(ctx context.Context, g *domain.Goal) error {
	enc, err := encodeGoal(g)
	if err != nil {
		return err
	}
	query := `UPDATE goals SET title = ?, description = ?, status = ?, goal_type = ?, owner_id = ?,
		parent_id = ?, progress = ?, achievements = ?, actions = ?, children = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		g.Title,
		g.Description,
		string(g.Status),
		string(g.Type),
		g.OwnerID,
		nullableString(g.ParentID),
		g.Progress,
		enc.achievements,
		enc.actions,
		enc.children,
		formatTime(g.UpdatedAt),
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("goal %s: %w", g.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteGoalRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var g domain.Goal
	var statusStr, typeStr, createdAtStr, updatedAtStr string
	var achievements, actions, children string
	var parentID sql.NullString

	err := row.Scan(
		&g.ID, &g.Title, &g.Description,
		&statusStr, &typeStr, &g.OwnerID, &parentID, &g.Progress,
		&achievements, &actions, &children,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	g.Status = domain.GoalStatus(statusStr)
	g.Type = domain.GoalType(typeStr)
	g.ParentID = stringPtr(parentID)

	if err := decodeJSON("achievements", achievements, &g.Achievements); err != nil {
		return nil, err
	}
	if err := decodeJSON("actions", actions, &g.Actions); err != nil {
		return nil, err
	}
	if err := decodeJSON("children", children, &g.Children); err != nil {
		return nil, err
	}

	if g.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &g, nil
}
