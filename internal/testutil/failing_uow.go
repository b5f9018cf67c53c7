package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/ambitions/internal/db"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction. This enables partial-failure tests by
// simulating failures at precise points in multi-write operations.
//
// ExecContext calls are counted starting at 1. QueryContext and QueryRowContext
// are not counted (reads pass through normally). When FailTx is set, only the
// FailTx-th transaction (counted from 1 across the UoW's lifetime) is affected;
// earlier and later transactions commit normally.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	FailTx int32
	Err    error

	txCount atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	n := u.txCount.Add(1)

	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	failOn := u.FailOn
	if u.FailTx != 0 && n != u.FailTx {
		failOn = 0
	}
	wrapped := &failOnNthExec{DBTX: tx, failOn: failOn, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

// Transactions reports how many transactions have been started.
func (u *FailOnNthExecUoW) Transactions() int {
	return int(u.txCount.Load())
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.count.Add(1)
	if n == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
