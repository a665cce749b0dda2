package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
)

// FolderRepository implements repositories.FolderRepository on a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository backed by store
func NewFolderRepository(store *Store) repositories.FolderRepository {
	return &FolderRepository{store: store}
}

// Create inserts a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	var err error
	r.store.write(ctx, func() {
		if _, exists := r.store.folders[folder.ID]; exists {
			err = domain.NewStoreError("create folder", fmt.Errorf("duplicate id %s", folder.ID))
			return
		}
		r.store.folders[folder.ID] = folderRecord{folder: copyFolder(folder), seq: r.store.nextSeq()}
	})
	if err != nil {
		return err
	}
	folder.ChildIDs = []string{}
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var folder *models.Folder
	r.store.read(ctx, func() {
		rec, ok := r.store.folders[id]
		if !ok {
			return
		}
		f := r.hydrate(rec)
		folder = &f
	})
	if folder == nil {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}
	return folder, nil
}

// Update replaces the whole folder record
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	var found bool
	r.store.write(ctx, func() {
		rec, ok := r.store.folders[folder.ID]
		if !ok {
			return
		}
		found = true
		rec.folder = copyFolder(folder)
		r.store.folders[folder.ID] = rec
	})
	if !found {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotFound)
	}
	return nil
}

// Delete deletes a single folder record
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	var found bool
	r.store.write(ctx, func() {
		if _, found = r.store.folders[id]; found {
			delete(r.store.folders, id)
		}
	})
	if !found {
		return fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}
	return nil
}

// ListAll retrieves every folder in creation order
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	return r.list(ctx, func(models.Folder) bool { return true }), nil
}

// ListChildren lists immediate child folders (nil = root level)
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	return r.list(ctx, func(f models.Folder) bool { return models.SameRef(f.ParentID, parentID) }), nil
}

// ListChildIDs lists the ids of immediate child folders
func (r *FolderRepository) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	var ids []string
	r.store.read(ctx, func() {
		ids = r.childIDs(id)
	})
	return ids, nil
}

// SearchByName finds folders whose name contains query, ignoring case
func (r *FolderRepository) SearchByName(ctx context.Context, query string) ([]models.Folder, error) {
	needle := strings.ToLower(query)
	return r.list(ctx, func(f models.Folder) bool {
		return strings.Contains(strings.ToLower(f.Name), needle)
	}), nil
}

func (r *FolderRepository) list(ctx context.Context, keep func(models.Folder) bool) []models.Folder {
	folders := make([]models.Folder, 0)
	r.store.read(ctx, func() {
		recs := make([]folderRecord, 0, len(r.store.folders))
		for _, rec := range r.store.folders {
			if keep(rec.folder) {
				recs = append(recs, rec)
			}
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
		for _, rec := range recs {
			folders = append(folders, r.hydrate(rec))
		}
	})
	return folders
}

// hydrate copies a record and fills the derived child list. Caller holds the lock.
func (r *FolderRepository) hydrate(rec folderRecord) models.Folder {
	f := copyFolder(&rec.folder)
	f.ChildIDs = r.childIDs(f.ID)
	return f
}

// childIDs lists children in creation order. Caller holds the lock.
func (r *FolderRepository) childIDs(id string) []string {
	recs := make([]folderRecord, 0)
	for _, rec := range r.store.folders {
		if rec.folder.ParentID != nil && *rec.folder.ParentID == id {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.folder.ID
	}
	return ids
}

func copyFolder(f *models.Folder) models.Folder {
	return models.Folder{
		ID:       f.ID,
		Name:     f.Name,
		ParentID: cloneRef(f.ParentID),
	}
}
