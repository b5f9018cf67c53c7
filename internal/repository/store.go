package repository

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/ambitions/internal/db"
)

// Repos bundles the repositories a use case works with.
type Repos struct {
	Goals  GoalRepo
	Ladder LadderIndexRepo
	People PersonRepo
}

// Store hands out repositories, either bound to the shared handle for plain
// reads and single writes, or bound to one transaction.
type Store interface {
	Repos() Repos
	// WithinTx runs fn with repositories scoped to a single transaction.
	// fn must only use the Repos it is given.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// SQLiteStore implements Store on a SQLite database and a UnitOfWork.
type SQLiteStore struct {
	db  *sql.DB
	uow db.UnitOfWork
}

// NewSQLiteStore builds a Store. uow is usually db.NewSQLiteUnitOfWork(database);
// tests substitute a fault-injecting implementation.
func NewSQLiteStore(database *sql.DB, uow db.UnitOfWork) *SQLiteStore {
	return &SQLiteStore{db: database, uow: uow}
}

func (s *SQLiteStore) Repos() Repos {
	return sqliteRepos(s.db)
}

func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, sqliteRepos(tx))
	})
}

func sqliteRepos(h db.DBTX) Repos {
	return Repos{
		Goals:  NewSQLiteGoalRepo(h),
		Ladder: NewSQLiteLadderIndexRepo(h),
		People: NewSQLitePersonRepo(h),
	}
}

var _ Store = (*SQLiteStore)(nil)
