package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles store transactions.
//
// Repositories called with the context passed to fn participate in the
// transaction. Stores without multi-document transactions run fn directly.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
