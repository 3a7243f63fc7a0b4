package output

import (
	"context"
)

// TransactionManager runs lifecycle mutations atomically across stores.
// Repositories taking the context handed to fn join the transaction.
type TransactionManager interface {
	// InTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	InTransaction(ctx context.Context, fn func(txCtx context.Context) error) error

	// BeginTransaction starts a transaction the caller must finish
	BeginTransaction(ctx context.Context) (Transaction, error)
}

// Transaction represents an active transaction
type Transaction interface {
	Commit() error
	Rollback() error

	// Context returns the context repositories must use to join the transaction
	Context() context.Context
}
