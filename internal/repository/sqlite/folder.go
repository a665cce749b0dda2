package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
)

// FolderRepository implements the FolderRepository interface
type FolderRepository struct {
	db *DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *DB) repositories.FolderRepository {
	return &FolderRepository{db: db}
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO folders (id, name, parent_id) VALUES (?, ?, ?)`,
		folder.ID, folder.Name, folder.ParentID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrParentNotFound, *folder.ParentID)
		}
		return domain.NewStoreError("create folder", err)
	}
	folder.ChildIDs = []string{}
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT id, name, parent_id FROM folders WHERE id = ?`, id,
	).Scan(&folder.ID, &folder.Name, &folder.ParentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
		}
		return nil, domain.NewStoreError("get folder", err)
	}

	folder.ChildIDs, err = r.ListChildIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Update replaces the folder's name and parent
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE folders SET name = ?, parent_id = ? WHERE id = ?`,
		folder.Name, folder.ParentID, folder.ID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrParentNotFound, *folder.ParentID)
		}
		return domain.NewStoreError("update folder", err)
	}
	return requireRow(result, "update folder", fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotFound))
}

// Delete deletes a single folder record
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return domain.NewStoreError("delete folder", err)
	}
	return requireRow(result, "delete folder", fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound))
}

// ListAll retrieves every folder in creation order
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	folders, err := r.scan(ctx, "list folders", `SELECT id, name, parent_id FROM folders ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	children, err := r.queryChildIDs(ctx, nil, `SELECT id, parent_id FROM folders WHERE parent_id IS NOT NULL ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		folders[i].ChildIDs = children[folders[i].ID]
		if folders[i].ChildIDs == nil {
			folders[i].ChildIDs = []string{}
		}
	}
	return folders, nil
}

// ListChildren lists immediate child folders (nil = root level)
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID == nil {
		return r.list(ctx, "list root folders", `SELECT id, name, parent_id FROM folders WHERE parent_id IS NULL ORDER BY rowid`)
	}
	return r.list(ctx, "list child folders", `SELECT id, name, parent_id FROM folders WHERE parent_id = ? ORDER BY rowid`, *parentID)
}

// ListChildIDs lists the ids of immediate child folders
func (r *FolderRepository) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	children, err := r.childIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return children[id], nil
}

// SearchByName finds folders whose name contains query, ignoring case
func (r *FolderRepository) SearchByName(ctx context.Context, query string) ([]models.Folder, error) {
	return r.list(ctx, "search folders",
		`SELECT id, name, parent_id FROM folders WHERE go_lower(name) LIKE ? ESCAPE '\' ORDER BY rowid`,
		containsPattern(query),
	)
}

// list runs query and fills in each folder's child ids
func (r *FolderRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Folder, error) {
	folders, err := r.scan(ctx, op, query, args...)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	children, err := r.childIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		folders[i].ChildIDs = children[folders[i].ID]
	}
	return folders, nil
}

func (r *FolderRepository) scan(ctx context.Context, op, query string, args ...any) ([]models.Folder, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	// Closed on return, before any child query: the pool holds a single connection
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.ParentID); err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return folders, nil
}

// childIDs maps each parent id to its children's ids in creation order.
// Every requested parent gets a non-nil slice. Parents are queried in
// batches of maxChildQueryArgs to stay under SQLite's bound variable limit.
func (r *FolderRepository) childIDs(ctx context.Context, parentIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(parentIDs))
	for _, id := range parentIDs {
		out[id] = []string{}
	}

	for start := 0; start < len(parentIDs); start += maxChildQueryArgs {
		batch := parentIDs[start:min(start+maxChildQueryArgs, len(parentIDs))]
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		query := fmt.Sprintf(`SELECT id, parent_id FROM folders WHERE parent_id IN (%s) ORDER BY rowid`, placeholders(len(batch)))
		if _, err := r.queryChildIDs(ctx, out, query, args...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// queryChildIDs appends each (id, parent_id) row of query to out, allocating out when nil
func (r *FolderRepository) queryChildIDs(ctx context.Context, out map[string][]string, query string, args ...any) (map[string][]string, error) {
	if out == nil {
		out = make(map[string][]string)
	}
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError("list child ids", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, parentID string
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, domain.NewStoreError("list child ids", err)
		}
		out[parentID] = append(out[parentID], id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list child ids", err)
	}
	return out, nil
}

// requireRow returns notFound when result reports no affected rows
func requireRow(result sql.Result, op string, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError(op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
