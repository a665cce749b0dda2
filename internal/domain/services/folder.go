package services

import (
	"context"

	"devspace/internal/domain/models"
)

// FolderService owns the folder hierarchy: every tree-shape rule is enforced here
type FolderService interface {
	// CreateFolder creates a folder at the root or under an existing parent
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder by ID
	GetFolder(ctx context.Context, id string) (*models.Folder, error)

	// ListFolders lists every folder
	ListFolders(ctx context.Context) ([]models.Folder, error)

	// ListFoldersByParent lists the direct children of parentID (nil = root folders)
	ListFoldersByParent(ctx context.Context, parentID *string) ([]models.Folder, error)

	// GetChildIDs lists the ids of a folder's direct children
	GetChildIDs(ctx context.Context, id string) ([]string, error)

	// SearchFolders finds folders by case-insensitive name substring
	SearchFolders(ctx context.Context, name string) ([]models.Folder, error)

	// RenameFolder replaces a folder's name
	RenameFolder(ctx context.Context, id string, req *RenameFolderRequest) (*models.Folder, error)

	// MoveFolder re-parents a folder
	MoveFolder(ctx context.Context, id string, req *MoveFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder, its whole subtree and every attached resource
	DeleteFolder(ctx context.Context, id string) (*models.DeleteSummary, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"` // nil or "" = root
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// MoveFolderRequest represents a re-parent request.
// Transport-agnostic: the handler decides how an absent field is reported.
type MoveFolderRequest struct {
	ParentID *string // nil = move to root
}
