package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes explicit transaction control for repositories
// whose operations must span multiple statements atomically.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits the given transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback discards the given transaction. Rolling back an already
	// committed transaction is a no-op at the call sites.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
