package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations the repositories need. It is
// satisfied by *pgxpool.Pool and by pgx.Tx, so a whole ingestion batch can
// run against one transaction while read paths use the pool directly.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type contextKey string

// querierKey is the context key for the active database querier.
const querierKey contextKey = "querier"

// GetQuerier retrieves the active querier from context.
// Returns nil and false if not present.
func GetQuerier(ctx context.Context) (Querier, bool) {
	q, ok := ctx.Value(querierKey).(Querier)
	return q, ok
}

// SetQuerier stores the querier in context. Repositories resolve their
// connection through this so callers decide the transaction boundary.
func SetQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey, q)
}
