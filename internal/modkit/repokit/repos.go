// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"context"

	"reviewnexus/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction using the provided TxRunner
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// ExecOne runs a write and asserts exactly 1 row affected
func ExecOne(ctx context.Context, q Queryer, sql string, args ...any) error {
	return store.ExecOne(ctx, q, sql, args...)
}

// Scalar queries the first row, first column into T
func Scalar[T any](ctx context.Context, q Queryer, sql string, args ...any) (T, error) {
	return store.Scalar[T](ctx, q, sql, args...)
}

// One maps a single row into T via scan; no rows yields perr.ErrNotFound
func One[T any](ctx context.Context, q Queryer, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	return store.One(ctx, q, scan, sql, args...)
}

// Many maps every row into []T via scan
func Many[T any](ctx context.Context, q Queryer, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	return store.Many(ctx, q, scan, sql, args...)
}
