package postgres

import (
	"context"
	"errors"
	"log/slog"

	"devspace/internal/domain"
	"devspace/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxTxAttempts bounds how often a transaction is replayed after a
// serialization failure or deadlock
const maxTxAttempts = 3

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes fn in a SERIALIZABLE transaction. fn may run more than once,
// so it must not keep state across attempts outside what it returns.
//
// Once started, the transaction ignores cancellation of ctx so that a
// multi-step write is either committed or rolled back, never abandoned.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	// Already inside a transaction: join it
	if GetTx(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("begin transaction", err)
	}

	ctx = context.WithoutCancel(ctx)

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = tm.execOnce(ctx, fn)
		if err == nil || !IsPgRetryableTxError(err) {
			return err
		}
		tm.logger.Warn("retrying transaction", "attempt", attempt, "error", err)
	}
	return err
}

func (tm *TransactionManager) execOnce(ctx context.Context, fn repositories.TxFn) error {
	tx, err := tm.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return domain.NewStoreError("begin transaction", err)
	}

	// Safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Error("rollback failed", "error", err)
		}
	}()

	if err := fn(SetTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewStoreError("commit transaction", err)
	}

	return nil
}
