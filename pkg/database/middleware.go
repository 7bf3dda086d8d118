package database

import (
	"net/http"
)

// WithPool creates middleware that attaches the connection pool to the
// request context so repositories can resolve it. Read handlers never open
// transactions; batch atomicity guarantees they only see committed snapshots.
func WithPool(db *DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := SetQuerier(r.Context(), db.Pool)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
