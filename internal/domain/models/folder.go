package models

// Folder is a named node in the hierarchy.
//
// ChildIDs is a derived view: stores persist only ParentID and fill ChildIDs
// from the parent index whenever a folder is read.
type Folder struct {
	ID       string   `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	ParentID *string  `json:"parentId" db:"parent_id"` // nil = root level
	ChildIDs []string `json:"childIds" db:"-"`
}

// IsRoot returns true if the folder is at the root level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// HasParent reports whether the folder's parent is the given id (nil = root).
func (f *Folder) HasParent(parentID *string) bool {
	return SameRef(f.ParentID, parentID)
}

// SameRef compares two optional ids for equality.
func SameRef(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// DeleteSummary reports what a cascading folder delete removed.
type DeleteSummary struct {
	Folders   int `json:"folders"`
	Resources int `json:"resources"`
}
