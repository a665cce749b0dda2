package services

import (
	"context"

	"devspace/internal/domain/models"
)

// ResourceService keeps resources attached to existing folders
type ResourceService interface {
	// CreateResource creates a resource at the root or inside an existing folder
	CreateResource(ctx context.Context, req *CreateResourceRequest) (*models.Resource, error)

	// GetResource retrieves a resource by ID
	GetResource(ctx context.Context, id string) (*models.Resource, error)

	// ListResources lists every resource
	ListResources(ctx context.Context) ([]models.Resource, error)

	// ListResourcesByFolder lists resources in folderID (nil = root level)
	ListResourcesByFolder(ctx context.Context, folderID *string) ([]models.Resource, error)

	// ListFavoriteResources lists resources flagged as favorite
	ListFavoriteResources(ctx context.Context) ([]models.Resource, error)

	// ListRecentResources lists the most recently created resources, newest first
	ListRecentResources(ctx context.Context) ([]models.Resource, error)

	// SearchResources finds resources by case-insensitive name substring
	SearchResources(ctx context.Context, name string) ([]models.Resource, error)

	// FuzzySearchResources ranks resources by fuzzy name match, best first
	FuzzySearchResources(ctx context.Context, query string) ([]models.ResourceMatch, error)

	// UpdateResource replaces name, description and value (absent fields are cleared)
	UpdateResource(ctx context.Context, id string, req *UpdateResourceRequest) (*models.Resource, error)

	// PatchResource updates only the fields present in the request
	PatchResource(ctx context.Context, id string, req *PatchResourceRequest) (*models.Resource, error)

	// MoveResource re-attaches a resource to another folder or to the root
	MoveResource(ctx context.Context, id string, req *MoveResourceRequest) (*models.Resource, error)

	// ToggleFavorite flips the favorite flag
	ToggleFavorite(ctx context.Context, id string) (*models.Resource, error)

	// DeleteResource deletes a resource; a missing id is not an error
	DeleteResource(ctx context.Context, id string) error

	// DeleteResourcesByFolder empties a folder without deleting it (nil = root level)
	DeleteResourcesByFolder(ctx context.Context, folderID *string) (int, error)
}

// CreateResourceRequest represents a resource creation request
type CreateResourceRequest struct {
	FolderID     *string              `json:"folderId,omitempty"` // nil or "" = root
	Name         string               `json:"name"`
	Description  *string              `json:"description,omitempty"`
	Kind         models.ResourceKind  `json:"kind"`
	CodeLanguage *models.CodeLanguage `json:"codeLanguage,omitempty"`
	Value        *string              `json:"value,omitempty"`
}

// UpdateResourceRequest represents a full replace of the descriptive fields
type UpdateResourceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Value       *string `json:"value"`
}

// PatchResourceRequest represents a partial update; nil fields are left unchanged
type PatchResourceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Value       *string `json:"value,omitempty"`
}

// MoveResourceRequest represents a folder re-attachment.
// Transport-agnostic: the handler decides how an absent field is reported.
type MoveResourceRequest struct {
	FolderID *string // nil = root level
}
