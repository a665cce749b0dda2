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

// ResourceRepository implements repositories.ResourceRepository on a Store
type ResourceRepository struct {
	store *Store
}

// NewResourceRepository creates a resource repository backed by store
func NewResourceRepository(store *Store) repositories.ResourceRepository {
	return &ResourceRepository{store: store}
}

// Create inserts a new resource
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	var err error
	r.store.write(ctx, func() {
		if _, exists := r.store.resources[resource.ID]; exists {
			err = domain.NewStoreError("create resource", fmt.Errorf("duplicate id %s", resource.ID))
			return
		}
		r.store.resources[resource.ID] = resourceRecord{resource: copyResource(resource), seq: r.store.nextSeq()}
	})
	return err
}

// GetByID retrieves a resource by ID
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var resource *models.Resource
	r.store.read(ctx, func() {
		if rec, ok := r.store.resources[id]; ok {
			res := copyResource(&rec.resource)
			resource = &res
		}
	})
	if resource == nil {
		return nil, fmt.Errorf("resource %s: %w", id, domain.ErrResourceNotFound)
	}
	return resource, nil
}

// Update replaces the whole resource record
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	var found bool
	r.store.write(ctx, func() {
		rec, ok := r.store.resources[resource.ID]
		if !ok {
			return
		}
		found = true
		rec.resource = copyResource(resource)
		r.store.resources[resource.ID] = rec
	})
	if !found {
		return fmt.Errorf("resource %s: %w", resource.ID, domain.ErrResourceNotFound)
	}
	return nil
}

// Delete deletes a resource. Deleting a missing id is not an error.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	r.store.write(ctx, func() {
		delete(r.store.resources, id)
	})
	return nil
}

// DeleteByFolder deletes every resource attached to folderID (nil = root level)
func (r *ResourceRepository) DeleteByFolder(ctx context.Context, folderID *string) (int, error) {
	var n int
	r.store.write(ctx, func() {
		for id, rec := range r.store.resources {
			if models.SameRef(rec.resource.FolderID, folderID) {
				delete(r.store.resources, id)
				n++
			}
		}
	})
	return n, nil
}

// ListAll retrieves every resource in creation order
func (r *ResourceRepository) ListAll(ctx context.Context) ([]models.Resource, error) {
	return r.list(ctx, func(models.Resource) bool { return true }), nil
}

// ListByFolder lists resources attached to folderID (nil = root level)
func (r *ResourceRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.Resource, error) {
	return r.list(ctx, func(res models.Resource) bool { return models.SameRef(res.FolderID, folderID) }), nil
}

// ListFavorites lists resources flagged as favorite
func (r *ResourceRepository) ListFavorites(ctx context.Context) ([]models.Resource, error) {
	return r.list(ctx, func(res models.Resource) bool { return res.Favorite }), nil
}

// SearchByName finds resources whose name contains query, ignoring case
func (r *ResourceRepository) SearchByName(ctx context.Context, query string) ([]models.Resource, error) {
	needle := strings.ToLower(query)
	return r.list(ctx, func(res models.Resource) bool {
		return strings.Contains(strings.ToLower(res.Name), needle)
	}), nil
}

// ListRecent lists the most recently created resources, newest first
func (r *ResourceRepository) ListRecent(ctx context.Context, limit int) ([]models.Resource, error) {
	var recent []models.Resource
	r.store.read(ctx, func() {
		recs := r.records(func(models.Resource) bool { return true })
		sort.Slice(recs, func(i, j int) bool {
			a, b := recs[i], recs[j]
			if !a.resource.CreatedOn.Equal(b.resource.CreatedOn) {
				return a.resource.CreatedOn.After(b.resource.CreatedOn)
			}
			return a.seq > b.seq
		})
		if limit > 0 && len(recs) > limit {
			recs = recs[:limit]
		}
		recent = make([]models.Resource, len(recs))
		for i, rec := range recs {
			recent[i] = copyResource(&rec.resource)
		}
	})
	return recent, nil
}

func (r *ResourceRepository) list(ctx context.Context, keep func(models.Resource) bool) []models.Resource {
	var out []models.Resource
	r.store.read(ctx, func() {
		recs := r.records(keep)
		sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
		out = make([]models.Resource, len(recs))
		for i, rec := range recs {
			out[i] = copyResource(&rec.resource)
		}
	})
	return out
}

// records filters resources. Caller holds the lock.
func (r *ResourceRepository) records(keep func(models.Resource) bool) []resourceRecord {
	recs := make([]resourceRecord, 0, len(r.store.resources))
	for _, rec := range r.store.resources {
		if keep(rec.resource) {
			recs = append(recs, rec)
		}
	}
	return recs
}

func copyResource(res *models.Resource) models.Resource {
	out := *res
	out.FolderID = cloneRef(res.FolderID)
	out.Description = cloneRef(res.Description)
	out.Value = cloneRef(res.Value)
	if res.CodeLanguage != nil {
		lang := *res.CodeLanguage
		out.CodeLanguage = &lang
	}
	return out
}
