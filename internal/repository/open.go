// Package repository selects and opens the configured folder/resource store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"devspace/internal/config"
	"devspace/internal/domain/repositories"
	"devspace/internal/repository/memory"
	"devspace/internal/repository/mongodb"
	"devspace/internal/repository/postgres"
	"devspace/internal/repository/sqlite"
)

// Stores bundles the repositories of one backend
type Stores struct {
	Driver    string
	Folders   repositories.FolderRepository
	Resources repositories.ResourceRepository
	TxManager repositories.TransactionManager

	clear func(ctx context.Context) error
	close func(ctx context.Context) error
}

// ClearData removes every folder and resource
func (s *Stores) ClearData(ctx context.Context) error {
	return s.clear(ctx)
}

// Close releases connections held by the backend
func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the backend named by cfg.StoreDriver and makes sure its
// schema (tables or indexes) exists.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreDriverMongo:
		return openMongo(ctx, cfg, logger)
	case config.StoreDriverSQLite:
		return openSQLite(cfg, logger)
	default:
		return openMemory(logger), nil
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	if err := postgres.EnsureSchema(ctx, repoConfig); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database connected", "driver", cfg.StoreDriver, "table_prefix", cfg.TablePrefix)

	return &Stores{
		Driver:    cfg.StoreDriver,
		Folders:   postgres.NewFolderRepository(repoConfig),
		Resources: postgres.NewResourceRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(pool, logger),
		clear: func(ctx context.Context) error {
			return postgres.ClearData(ctx, repoConfig)
		},
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	repoConfig := &mongodb.RepositoryConfig{Client: client, Database: db, Logger: logger}
	if err := mongodb.EnsureIndexes(ctx, repoConfig); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("database connected",
		"driver", cfg.StoreDriver,
		"database", cfg.MongoDatabase,
		"transactions", cfg.MongoTransactions,
	)

	return &Stores{
		Driver:    cfg.StoreDriver,
		Folders:   mongodb.NewFolderRepository(repoConfig),
		Resources: mongodb.NewResourceRepository(repoConfig),
		TxManager: mongodb.NewTransactionManager(client, cfg.MongoTransactions, logger),
		clear: func(ctx context.Context) error {
			return mongodb.ClearData(ctx, repoConfig)
		},
		close: client.Disconnect,
	}, nil
}

func openSQLite(cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	logger.Info("database connected", "driver", cfg.StoreDriver, "path", db.Path())

	return &Stores{
		Driver:    cfg.StoreDriver,
		Folders:   sqlite.NewFolderRepository(db),
		Resources: sqlite.NewResourceRepository(db),
		TxManager: sqlite.NewTransactionManager(db, logger),
		clear:     db.ClearData,
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}

func openMemory(logger *slog.Logger) *Stores {
	store := memory.NewStore()

	logger.Warn("using in-memory store; data is lost on restart")

	return &Stores{
		Driver:    config.StoreDriverMemory,
		Folders:   memory.NewFolderRepository(store),
		Resources: memory.NewResourceRepository(store),
		TxManager: memory.NewTransactionManager(store),
		clear: func(context.Context) error {
			store.Reset()
			return nil
		},
		close: func(context.Context) error { return nil },
	}
}
