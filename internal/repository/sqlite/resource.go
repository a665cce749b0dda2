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

const resourceColumns = `id, folder_id, name, description, kind, code_language, value, favorite, created_on`

// ResourceRepository implements the ResourceRepository interface
type ResourceRepository struct {
	db *DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *DB) repositories.ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create creates a new resource
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO resources (`+resourceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.FolderID,
		res.Name,
		res.Description,
		string(res.Kind),
		codeLanguageArg(res.CodeLanguage),
		res.Value,
		res.Favorite,
		formatTime(res.CreatedOn),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("target folder %s: %w", *res.FolderID, domain.ErrFolderNotFound)
		}
		return domain.NewStoreError("create resource", err)
	}
	return nil
}

// GetByID retrieves a resource by ID
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrResourceNotFound)
		}
		return nil, domain.NewStoreError("get resource", err)
	}
	return res, nil
}

// Update replaces every mutable column of the resource
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE resources
		SET folder_id = ?, name = ?, description = ?, kind = ?, code_language = ?, value = ?, favorite = ?
		WHERE id = ?`,
		res.FolderID,
		res.Name,
		res.Description,
		string(res.Kind),
		codeLanguageArg(res.CodeLanguage),
		res.Value,
		res.Favorite,
		res.ID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("target folder %s: %w", *res.FolderID, domain.ErrFolderNotFound)
		}
		return domain.NewStoreError("update resource", err)
	}
	return requireRow(result, "update resource", fmt.Errorf("resource %s: %w", res.ID, domain.ErrResourceNotFound))
}

// Delete deletes a resource. Deleting a missing id is not an error.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id); err != nil {
		return domain.NewStoreError("delete resource", err)
	}
	return nil
}

// DeleteByFolder deletes every resource attached to folderID (nil = root level)
func (r *ResourceRepository) DeleteByFolder(ctx context.Context, folderID *string) (int, error) {
	var result sql.Result
	var err error
	if folderID == nil {
		result, err = r.db.conn(ctx).ExecContext(ctx, `DELETE FROM resources WHERE folder_id IS NULL`)
	} else {
		result, err = r.db.conn(ctx).ExecContext(ctx, `DELETE FROM resources WHERE folder_id = ?`, *folderID)
	}
	if err != nil {
		return 0, domain.NewStoreError("delete resources by folder", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, domain.NewStoreError("delete resources by folder", err)
	}
	return int(n), nil
}

// ListAll retrieves every resource in creation order
func (r *ResourceRepository) ListAll(ctx context.Context) ([]models.Resource, error) {
	return r.list(ctx, "list resources", `ORDER BY created_on, rowid`)
}

// ListByFolder lists resources attached to folderID (nil = root level)
func (r *ResourceRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.Resource, error) {
	if folderID == nil {
		return r.list(ctx, "list root resources", `WHERE folder_id IS NULL ORDER BY created_on, rowid`)
	}
	return r.list(ctx, "list resources by folder", `WHERE folder_id = ? ORDER BY created_on, rowid`, *folderID)
}

// ListFavorites lists resources flagged as favorite
func (r *ResourceRepository) ListFavorites(ctx context.Context) ([]models.Resource, error) {
	return r.list(ctx, "list favorite resources", `WHERE favorite = 1 ORDER BY created_on, rowid`)
}

// SearchByName finds resources whose name contains query, ignoring case
func (r *ResourceRepository) SearchByName(ctx context.Context, query string) ([]models.Resource, error) {
	return r.list(ctx, "search resources", `WHERE go_lower(name) LIKE ? ESCAPE '\' ORDER BY created_on, rowid`, containsPattern(query))
}

// ListRecent lists the most recently created resources, newest first
func (r *ResourceRepository) ListRecent(ctx context.Context, limit int) ([]models.Resource, error) {
	return r.list(ctx, "list recent resources", `ORDER BY created_on DESC, rowid DESC LIMIT ?`, limit)
}

func (r *ResourceRepository) list(ctx context.Context, op, clause string, args ...any) ([]models.Resource, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+resourceColumns+` FROM resources `+clause, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*models.Resource, error) {
	var (
		res          models.Resource
		kind         string
		codeLanguage sql.NullString
		createdOn    string
	)
	err := row.Scan(
		&res.ID,
		&res.FolderID,
		&res.Name,
		&res.Description,
		&kind,
		&codeLanguage,
		&res.Value,
		&res.Favorite,
		&createdOn,
	)
	if err != nil {
		return nil, err
	}

	res.Kind = models.ResourceKind(kind)
	if codeLanguage.Valid {
		lang := models.CodeLanguage(codeLanguage.String)
		res.CodeLanguage = &lang
	}
	if res.CreatedOn, err = parseTime(createdOn); err != nil {
		return nil, fmt.Errorf("parse created_on %q: %w", createdOn, err)
	}
	return &res, nil
}

func codeLanguageArg(lang *models.CodeLanguage) any {
	if lang == nil {
		return nil
	}
	return string(*lang)
}
