package postgres

import (
	"context"
	"fmt"
)

// Schema returns the idempotent DDL for the folder and resource tables
func Schema(tables *TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			parent_id TEXT NULL REFERENCES %[1]s(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			seq BIGSERIAL NOT NULL
		)`, tables.Folders),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			folder_id TEXT NULL REFERENCES %s(id),
			name VARCHAR(255) NOT NULL,
			description TEXT NULL,
			kind TEXT NOT NULL,
			code_language TEXT NULL,
			value TEXT NULL,
			favorite BOOLEAN NOT NULL DEFAULT false,
			created_on TIMESTAMPTZ NOT NULL DEFAULT now(),
			seq BIGSERIAL NOT NULL
		)`, tables.Resources, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_parent_id_idx ON %[1]s (parent_id)`, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_name_idx ON %[1]s (lower(name))`, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_folder_id_idx ON %[1]s (folder_id)`, tables.Resources),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_favorite_idx ON %[1]s (favorite) WHERE favorite`, tables.Resources),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_created_on_seq_idx ON %[1]s (created_on DESC, seq DESC)`, tables.Resources),
	}
}

// EnsureSchema creates tables and indexes if they do not exist
func EnsureSchema(ctx context.Context, config *RepositoryConfig) error {
	for _, stmt := range Schema(config.Tables) {
		if _, err := config.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	config.Logger.Info("schema ready", "folders", config.Tables.Folders, "resources", config.Tables.Resources)
	return nil
}

// ClearData removes every folder and resource
func ClearData(ctx context.Context, config *RepositoryConfig) error {
	query := fmt.Sprintf(`TRUNCATE %s, %s`, config.Tables.Resources, config.Tables.Folders)
	if _, err := config.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}
