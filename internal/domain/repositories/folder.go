package repositories

import (
	"context"

	"devspace/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
//
// Every method that returns a Folder fills ChildIDs from the parent index.
type FolderRepository interface {
	// Create inserts a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update replaces the whole folder record (name and parent)
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a single folder record
	Delete(ctx context.Context, id string) error

	// ListAll retrieves every folder (flat list)
	ListAll(ctx context.Context) ([]models.Folder, error)

	// ListChildren lists immediate child folders (nil = root level)
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// ListChildIDs lists the ids of immediate child folders
	ListChildIDs(ctx context.Context, id string) ([]string, error)

	// SearchByName finds folders whose name contains query, ignoring case
	SearchByName(ctx context.Context, query string) ([]models.Folder, error)
}
