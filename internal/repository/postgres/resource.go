package postgres

import (
	"context"
	"fmt"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resourceColumns = `id, folder_id, name, description, kind, code_language, value, favorite, created_on`

// PostgresResourceRepository implements the ResourceRepository interface
type PostgresResourceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(config *RepositoryConfig) repositories.ResourceRepository {
	return &PostgresResourceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new resource
func (r *PostgresResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Resources, resourceColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		res.ID,
		res.FolderID,
		res.Name,
		res.Description,
		res.Kind,
		res.CodeLanguage,
		res.Value,
		res.Favorite,
		res.CreatedOn,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("target folder %s: %w", *res.FolderID, domain.ErrFolderNotFound)
		}
		return domain.NewStoreError("create resource", err)
	}

	return nil
}

// GetByID retrieves a resource by ID
func (r *PostgresResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, resourceColumns, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	res, err := scanResource(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrResourceNotFound)
		}
		return nil, domain.NewStoreError("get resource", err)
	}

	return res, nil
}

// Update replaces every mutable column of the resource
func (r *PostgresResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, description = $3, kind = $4,
			code_language = $5, value = $6, favorite = $7
		WHERE id = $8
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		res.FolderID,
		res.Name,
		res.Description,
		res.Kind,
		res.CodeLanguage,
		res.Value,
		res.Favorite,
		res.ID,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("target folder %s: %w", *res.FolderID, domain.ErrFolderNotFound)
		}
		return domain.NewStoreError("update resource", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", res.ID, domain.ErrResourceNotFound)
	}

	return nil
}

// Delete deletes a resource. Deleting a missing id is not an error.
func (r *PostgresResourceRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return domain.NewStoreError("delete resource", err)
	}
	return nil
}

// DeleteByFolder deletes every resource attached to folderID (nil = root level)
func (r *PostgresResourceRepository) DeleteByFolder(ctx context.Context, folderID *string) (int, error) {
	var query string
	var args []interface{}
	if folderID == nil {
		query = fmt.Sprintf(`DELETE FROM %s WHERE folder_id IS NULL`, r.tables.Resources)
	} else {
		query = fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1`, r.tables.Resources)
		args = append(args, *folderID)
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return 0, domain.NewStoreError("delete resources by folder", err)
	}
	return int(result.RowsAffected()), nil
}

// ListAll retrieves every resource in creation order
func (r *PostgresResourceRepository) ListAll(ctx context.Context) ([]models.Resource, error) {
	return r.list(ctx, "list resources", `ORDER BY created_on, seq`)
}

// ListByFolder lists resources attached to folderID (nil = root level)
func (r *PostgresResourceRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.Resource, error) {
	if folderID == nil {
		return r.list(ctx, "list root resources", `WHERE folder_id IS NULL ORDER BY created_on, seq`)
	}
	return r.list(ctx, "list resources by folder", `WHERE folder_id = $1 ORDER BY created_on, seq`, *folderID)
}

// ListFavorites lists resources flagged as favorite
func (r *PostgresResourceRepository) ListFavorites(ctx context.Context) ([]models.Resource, error) {
	return r.list(ctx, "list favorite resources", `WHERE favorite ORDER BY created_on, seq`)
}

// SearchByName finds resources whose name contains query, ignoring case
func (r *PostgresResourceRepository) SearchByName(ctx context.Context, query string) ([]models.Resource, error) {
	return r.list(ctx, "search resources", `WHERE name ILIKE $1 ORDER BY created_on, seq`, containsPattern(query))
}

// ListRecent lists the most recently created resources, newest first.
// Resources sharing a created_on fall back to insertion order (seq).
func (r *PostgresResourceRepository) ListRecent(ctx context.Context, limit int) ([]models.Resource, error) {
	return r.list(ctx, "list recent resources", `ORDER BY created_on DESC, seq DESC LIMIT $1`, limit)
}

func (r *PostgresResourceRepository) list(ctx context.Context, op, clause string, args ...interface{}) ([]models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s %s`, resourceColumns, r.tables.Resources, clause)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	defer rows.Close()

	resources := make([]models.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	return resources, nil
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	err := row.Scan(
		&res.ID,
		&res.FolderID,
		&res.Name,
		&res.Description,
		&res.Kind,
		&res.CodeLanguage,
		&res.Value,
		&res.Favorite,
		&res.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	res.CreatedOn = res.CreatedOn.UTC()
	return &res, nil
}
