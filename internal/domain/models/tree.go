package models

import "time"

// TreeNode represents the root of the folder tree
type TreeNode struct {
	Folders   []*FolderTreeNode  `json:"folders"`
	Resources []ResourceTreeNode `json:"resources"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	ParentID  *string            `json:"parentId"`
	Folders   []*FolderTreeNode  `json:"folders"` // Pointers for proper nesting
	Resources []ResourceTreeNode `json:"resources"`
}

// ResourceTreeNode represents a resource in the tree (metadata only, no value)
type ResourceTreeNode struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	FolderID  *string      `json:"folderId"`
	Kind      ResourceKind `json:"kind"`
	Favorite  bool         `json:"favorite"`
	CreatedOn time.Time    `json:"createdOn"`
}
