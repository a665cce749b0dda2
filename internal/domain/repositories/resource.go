package repositories

import (
	"context"

	"devspace/internal/domain/models"
)

// ResourceRepository defines data access operations for resources
type ResourceRepository interface {
	// Create inserts a new resource
	Create(ctx context.Context, resource *models.Resource) error

	// GetByID retrieves a resource by ID
	GetByID(ctx context.Context, id string) (*models.Resource, error)

	// Update replaces the whole resource record
	Update(ctx context.Context, resource *models.Resource) error

	// Delete deletes a resource. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByFolder deletes every resource attached to folderID (nil = root level)
	// and returns how many were removed
	DeleteByFolder(ctx context.Context, folderID *string) (int, error)

	// ListAll retrieves every resource
	ListAll(ctx context.Context) ([]models.Resource, error)

	// ListByFolder lists resources attached to folderID (nil = root level)
	ListByFolder(ctx context.Context, folderID *string) ([]models.Resource, error)

	// ListFavorites lists resources flagged as favorite
	ListFavorites(ctx context.Context) ([]models.Resource, error)

	// SearchByName finds resources whose name contains query, ignoring case
	SearchByName(ctx context.Context, query string) ([]models.Resource, error)

	// ListRecent lists the most recently created resources, newest first
	ListRecent(ctx context.Context, limit int) ([]models.Resource, error)
}
