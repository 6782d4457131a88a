package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/alexanderramin/taskdeck/internal/db"
)

// FailOnNthExecUoW wraps a real unit of work and makes its Nth write fail,
// so continuing a todo can be checked for rollback at each of its writes.
// Writes are counted from 1; reads are not counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	inner := db.NewSQLiteUnitOfWork(u.DB)
	return inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &nthWriteFails{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type nthWriteFails struct {
	db.DBTX
	writes atomic.Int32
	failOn int32
	err    error
}

func (f *nthWriteFails) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.writes.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
