package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
	"devspace/internal/domain/services"
	"devspace/internal/repository/memory"

	"gotest.tools/v3/assert"
)

type testEnv struct {
	folders   services.FolderService
	resources services.ResourceService
	tree      services.TreeService

	folderRepo   repositories.FolderRepository
	resourceRepo repositories.ResourceRepository
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	folderRepo := memory.NewFolderRepository(store)
	resourceRepo := memory.NewResourceRepository(store)
	txManager := memory.NewTransactionManager(store)
	logger := discardLogger()

	return &testEnv{
		folders:      NewFolderService(folderRepo, resourceRepo, txManager, logger),
		resources:    NewResourceService(resourceRepo, folderRepo, txManager, logger),
		tree:         NewTreeService(folderRepo, resourceRepo, txManager, logger),
		folderRepo:   folderRepo,
		resourceRepo: resourceRepo,
	}
}

func strPtr(s string) *string { return &s }

func (e *testEnv) mustCreateFolder(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := e.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: name, ParentID: parentID})
	assert.NilError(t, err)
	return folder
}

func (e *testEnv) mustCreateResource(t *testing.T, name string, folderID *string) *models.Resource {
	t.Helper()
	resource, err := e.resources.CreateResource(context.Background(), &services.CreateResourceRequest{
		Name:     name,
		FolderID: folderID,
		Kind:     models.ResourceKindText,
		Value:    strPtr("hello"),
	})
	assert.NilError(t, err)
	return resource
}

// assertWellFormed checks that parent links and derived child lists agree and
// that the parent graph has no cycles.
func assertWellFormed(t *testing.T, repo repositories.FolderRepository) {
	t.Helper()
	ctx := context.Background()

	all, err := repo.ListAll(ctx)
	assert.NilError(t, err)

	byID := make(map[string]models.Folder, len(all))
	for _, f := range all {
		byID[f.ID] = f
	}

	for _, f := range all {
		if f.ParentID != nil {
			parent, ok := byID[*f.ParentID]
			assert.Assert(t, ok, "folder %s has missing parent %s", f.ID, *f.ParentID)
			assert.Assert(t, contains(parent.ChildIDs, f.ID), "parent %s does not list child %s", parent.ID, f.ID)
		}
		for _, childID := range f.ChildIDs {
			child, ok := byID[childID]
			assert.Assert(t, ok, "folder %s lists missing child %s", f.ID, childID)
			assert.Assert(t, child.ParentID != nil && *child.ParentID == f.ID, "child %s does not point back to %s", childID, f.ID)
		}

		seen := map[string]bool{}
		for cur := f; cur.ParentID != nil; cur = byID[*cur.ParentID] {
			assert.Assert(t, !seen[cur.ID], "cycle through folder %s", cur.ID)
			seen[cur.ID] = true
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// failingResourceRepo fails DeleteByFolder for one folder id
type failingResourceRepo struct {
	repositories.ResourceRepository
	failFolder string
}

func (r *failingResourceRepo) DeleteByFolder(ctx context.Context, folderID *string) (int, error) {
	if folderID != nil && *folderID == r.failFolder {
		return 0, domain.NewStoreError("delete resources by folder", errors.New("disk on fire"))
	}
	return r.ResourceRepository.DeleteByFolder(ctx, folderID)
}
