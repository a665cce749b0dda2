package mongodb

import (
	"context"
	"errors"
	"log/slog"

	"devspace/internal/domain"
	"devspace/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionManager wraps operations in a session transaction when the
// deployment supports it (replica set or sharded cluster). Otherwise fn runs
// directly and each write is atomic only on its own.
type TransactionManager struct {
	client  *mongo.Client
	enabled bool
	logger  *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(client *mongo.Client, enabled bool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{client: client, enabled: enabled, logger: logger}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("begin transaction", err)
	}

	ctx = context.WithoutCancel(ctx)

	if !tm.enabled {
		return fn(ctx)
	}

	session, err := tm.client.StartSession()
	if err != nil {
		return domain.NewStoreError("start session", err)
	}
	defer session.EndSession(ctx)

	var fnErr error
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		fnErr = fn(sc)
		return nil, fnErr
	})
	if err != nil {
		if fnErr != nil && errors.Is(err, fnErr) {
			return fnErr
		}
		return domain.NewStoreError("commit transaction", err)
	}
	return nil
}
