// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// helpers to run functions inside a transaction, and a TxRunner that lets
// services stay agnostic of whether a real database sits underneath.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is a unit of work executed against a transactional handle.
type TxFunc func(ctx context.Context, tx DBTX) error

// TxRunner is the transactional data-access entry point used by services.
// Conn returns a non-transactional handle for plain reads.
type TxRunner interface {
	Conn() DBTX
	WithTx(ctx context.Context, fn TxFunc) error
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// SQLRunner runs units of work in database/sql transactions.
type SQLRunner struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLRunner returns a TxRunner bound to db. opts may be nil.
func NewSQLRunner(db *sql.DB, opts *sql.TxOptions) *SQLRunner {
	return &SQLRunner{db: db, opts: opts}
}

func (r *SQLRunner) Conn() DBTX { return r.db }

func (r *SQLRunner) WithTx(ctx context.Context, fn TxFunc) error {
	return WithTx(ctx, r.db, r.opts, fn)
}

// DirectRunner executes units of work without a transaction. It backs the
// in-memory repositories, whose own locking provides the atomicity they need,
// and passes a nil handle that those repositories ignore.
type DirectRunner struct{}

func (DirectRunner) Conn() DBTX { return nil }

func (DirectRunner) WithTx(ctx context.Context, fn TxFunc) error {
	return fn(ctx, nil)
}
