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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectColumns returns the folder columns plus the derived child id array
func (r *PostgresFolderRepository) selectColumns() string {
	return fmt.Sprintf(`
		SELECT f.id, f.name, f.parent_id,
			ARRAY(SELECT c.id FROM %[1]s c WHERE c.parent_id = f.id ORDER BY c.created_at, c.seq) AS child_ids
		FROM %[1]s f
	`, r.tables.Folders)
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id)
		VALUES ($1, $2, $3)
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folder.ID, folder.Name, folder.ParentID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrParentNotFound, *folder.ParentID)
		}
		return domain.NewStoreError("create folder", err)
	}

	folder.ChildIDs = []string{}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := r.selectColumns() + ` WHERE f.id = $1`

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
		}
		return nil, domain.NewStoreError("get folder", err)
	}

	return folder, nil
}

// Update replaces the folder's name and parent
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, updated_at = now()
		WHERE id = $3
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folder.Name, folder.ParentID, folder.ID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrParentNotFound, *folder.ParentID)
		}
		return domain.NewStoreError("update folder", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotFound)
	}

	return nil
}

// Delete deletes a single folder record. Children and resources must already be gone.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return domain.NewStoreError("delete folder", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}

	return nil
}

// ListAll retrieves every folder in creation order
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	return r.list(ctx, "list folders", r.selectColumns()+` ORDER BY f.created_at, f.seq`)
}

// ListChildren lists immediate child folders (nil = root level)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID == nil {
		return r.list(ctx, "list root folders", r.selectColumns()+` WHERE f.parent_id IS NULL ORDER BY f.created_at, f.seq`)
	}
	return r.list(ctx, "list child folders", r.selectColumns()+` WHERE f.parent_id = $1 ORDER BY f.created_at, f.seq`, *parentID)
}

// ListChildIDs lists the ids of immediate child folders
func (r *PostgresFolderRepository) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE parent_id = $1
		ORDER BY created_at, seq
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, domain.NewStoreError("list child ids", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, domain.NewStoreError("list child ids", err)
	}
	return ids, nil
}

// SearchByName finds folders whose name contains query, ignoring case
func (r *PostgresFolderRepository) SearchByName(ctx context.Context, query string) ([]models.Folder, error) {
	return r.list(ctx, "search folders",
		r.selectColumns()+` WHERE f.name ILIKE $1 ORDER BY f.created_at, f.seq`,
		containsPattern(query),
	)
}

func (r *PostgresFolderRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Folder, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	if err := row.Scan(&folder.ID, &folder.Name, &folder.ParentID, &folder.ChildIDs); err != nil {
		return nil, err
	}
	if folder.ChildIDs == nil {
		folder.ChildIDs = []string{}
	}
	return &folder, nil
}
