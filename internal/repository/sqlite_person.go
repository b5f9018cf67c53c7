package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/ambitions/internal/db"
	"github.com/alexanderramin/ambitions/internal/domain"
)

const personColumns = `id, email, name, avatar_url, manager_id, created_at`

// SQLitePersonRepo implements PersonRepo using a SQLite database.
type SQLitePersonRepo struct {
	db db.DBTX
}

func NewSQLitePersonRepo(db db.DBTX) *SQLitePersonRepo {
	return &SQLitePersonRepo{db: db}
}

func (r *SQLitePersonRepo) Create(ctx context.Context, p *domain.Person) error {
	query := `INSERT INTO people (id, email, name, avatar_url, manager_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		domain.NormalizeEmail(p.Email),
		p.Name,
		p.AvatarURL,
		nullableString(p.ManagerID),
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting person: %w", err)
	}
	return nil
}

func (r *SQLitePersonRepo) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning person: %w", err)
	}
	return p, nil
}

func (r *SQLitePersonRepo) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE email = ?`,
		domain.NormalizeEmail(email))
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning person: %w", err)
	}
	return p, nil
}

func (r *SQLitePersonRepo) List(ctx context.Context) ([]*domain.Person, error) {
	return r.list(ctx, `SELECT `+personColumns+` FROM people ORDER BY name, id`)
}

func (r *SQLitePersonRepo) ListReports(ctx context.Context, managerID string) ([]*domain.Person, error) {
	return r.list(ctx, `SELECT `+personColumns+` FROM people WHERE manager_id = ? ORDER BY name, id`, managerID)
}

func (r *SQLitePersonRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	defer rows.Close()

	var people []*domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person row: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating people: %w", err)
	}
	return people, nil
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var p domain.Person
	var managerID sql.NullString
	var createdAtStr string
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &p.AvatarURL, &managerID, &createdAtStr); err != nil {
		return nil, err
	}
	p.ManagerID = stringPtr(managerID)
	var err error
	if p.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}
