package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"devspace/internal/domain"
	"devspace/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	db     *DB
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *DB, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{db: db, logger: logger}
}

// ExecTx executes a function within a transaction. Cancelling ctx after the
// transaction starts does not abort it.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("begin transaction", err)
	}

	ctx = context.WithoutCancel(ctx)

	tx, err := tm.db.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin transaction", err)
	}

	// Safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			tm.logger.Error("rollback failed", "error", err)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit transaction", err)
	}
	return nil
}
