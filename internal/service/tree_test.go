package service

import (
	"context"
	"testing"

	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
	"devspace/internal/repository/memory"

	"gotest.tools/v3/assert"
)

func TestGetTree(t *testing.T) {
	env := newTestEnv(t)
	docs := env.mustCreateFolder(t, "Docs", nil)
	specs := env.mustCreateFolder(t, "Specs", &docs.ID)
	env.mustCreateFolder(t, "Other", nil)
	env.mustCreateResource(t, "hello", &specs.ID)
	env.mustCreateResource(t, "loose", nil)

	tree, err := env.tree.GetTree(context.Background())
	assert.NilError(t, err)

	assert.Equal(t, len(tree.Folders), 2)
	assert.Equal(t, len(tree.Resources), 1)
	assert.Equal(t, tree.Resources[0].Name, "loose")

	docsNode := tree.Folders[0]
	assert.Equal(t, docsNode.ID, docs.ID)
	assert.Equal(t, len(docsNode.Folders), 1)
	assert.Equal(t, len(docsNode.Resources), 0)

	specsNode := docsNode.Folders[0]
	assert.Equal(t, specsNode.ID, specs.ID)
	assert.Equal(t, len(specsNode.Resources), 1)
	assert.Equal(t, specsNode.Resources[0].Name, "hello")
}

func TestGetTree_Empty(t *testing.T) {
	env := newTestEnv(t)

	tree, err := env.tree.GetTree(context.Background())
	assert.NilError(t, err)
	assert.Assert(t, tree.Folders != nil)
	assert.Assert(t, tree.Resources != nil)
	assert.Equal(t, len(tree.Folders), 0)
}

type txMarkerKey struct{}

// markingTxManager tags the transaction context so repositories can tell
// whether they were called inside ExecTx
type markingTxManager struct {
	repositories.TransactionManager
	calls int
}

func (m *markingTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return m.TransactionManager.ExecTx(ctx, func(ctx context.Context) error {
		return fn(context.WithValue(ctx, txMarkerKey{}, true))
	})
}

func inMarkedTx(ctx context.Context) bool {
	marked, _ := ctx.Value(txMarkerKey{}).(bool)
	return marked
}

type txCheckingFolderRepo struct {
	repositories.FolderRepository
	listedInTx bool
}

func (r *txCheckingFolderRepo) ListAll(ctx context.Context) ([]models.Folder, error) {
	r.listedInTx = inMarkedTx(ctx)
	return r.FolderRepository.ListAll(ctx)
}

type txCheckingResourceRepo struct {
	repositories.ResourceRepository
	listedInTx bool
}

func (r *txCheckingResourceRepo) ListAll(ctx context.Context) ([]models.Resource, error) {
	r.listedInTx = inMarkedTx(ctx)
	return r.ResourceRepository.ListAll(ctx)
}

func TestGetTree_ReadsInOneTransaction(t *testing.T) {
	store := memory.NewStore()
	folderRepo := &txCheckingFolderRepo{FolderRepository: memory.NewFolderRepository(store)}
	resourceRepo := &txCheckingResourceRepo{ResourceRepository: memory.NewResourceRepository(store)}
	txManager := &markingTxManager{TransactionManager: memory.NewTransactionManager(store)}
	tree := NewTreeService(folderRepo, resourceRepo, txManager, discardLogger())

	_, err := tree.GetTree(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, txManager.calls, 1)
	assert.Assert(t, folderRepo.listedInTx, "folders were read outside the transaction")
	assert.Assert(t, resourceRepo.listedInTx, "resources were read outside the transaction")
}
