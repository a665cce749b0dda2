package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"devspace/internal/domain"
	"devspace/internal/domain/models"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

// ============================================================================
// UNIT TESTS
// ============================================================================

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"notes", "%notes%"},
		{"100%", `%100\%%`},
		{"snake_case", `%snake\_case%`},
		{`back\slash`, `%back\\slash%`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, containsPattern(tt.input), tt.expected)
		})
	}
}

func TestSchema_UsesPrefixedTables(t *testing.T) {
	stmts := Schema(NewTableNames("test_"))
	assert.Assert(t, len(stmts) > 2)
	assert.Assert(t, strings.Contains(stmts[0], "test_folders"))
	assert.Assert(t, strings.Contains(stmts[1], "REFERENCES test_folders(id)"))
	assert.Assert(t, strings.Contains(stmts[0], "seq BIGSERIAL"))
	assert.Assert(t, strings.Contains(stmts[1], "seq BIGSERIAL"))
}

// ============================================================================
// INTEGRATION TESTS - require TEST_DATABASE_URL
// ============================================================================

func setupIntegration(t *testing.T) *RepositoryConfig {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := CreateConnectionPool(ctx, url)
	assert.NilError(t, err)

	prefix := fmt.Sprintf("itest_%s_", uuid.NewString()[:8])
	config := &RepositoryConfig{
		Pool:   pool,
		Tables: NewTableNames(prefix),
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	assert.NilError(t, EnsureSchema(ctx, config))

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s, %s", config.Tables.Resources, config.Tables.Folders))
		pool.Close()
	})
	return config
}

func TestIntegration_FolderChildIDs(t *testing.T) {
	config := setupIntegration(t)
	ctx := context.Background()
	folders := NewFolderRepository(config)

	parent := &models.Folder{ID: uuid.NewString(), Name: "Docs"}
	assert.NilError(t, folders.Create(ctx, parent))
	child := &models.Folder{ID: uuid.NewString(), Name: "Specs", ParentID: &parent.ID}
	assert.NilError(t, folders.Create(ctx, child))

	got, err := folders.GetByID(ctx, parent.ID)
	assert.NilError(t, err)
	assert.DeepEqual(t, got.ChildIDs, []string{child.ID})

	orphan := &models.Folder{ID: uuid.NewString(), Name: "Orphan", ParentID: strPtr("missing")}
	err = folders.Create(ctx, orphan)
	assert.Assert(t, errors.Is(err, domain.ErrParentNotFound))

	_, err = folders.GetByID(ctx, "missing")
	assert.Assert(t, errors.Is(err, domain.ErrFolderNotFound))

	found, err := folders.SearchByName(ctx, "SPEC")
	assert.NilError(t, err)
	assert.Equal(t, len(found), 1)
}

func TestIntegration_FolderOrderWithinTransaction(t *testing.T) {
	config := setupIntegration(t)
	ctx := context.Background()
	folders := NewFolderRepository(config)
	tm := NewTransactionManager(config.Pool, config.Logger)

	// now() is fixed for the whole transaction, so every row shares created_at
	parent := &models.Folder{ID: "zz-parent", Name: "Parent"}
	want := []string{"m-child", "a-child", "z-child", "b-child"}
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		if err := folders.Create(ctx, parent); err != nil {
			return err
		}
		for _, id := range want {
			if err := folders.Create(ctx, &models.Folder{ID: id, Name: id, ParentID: &parent.ID}); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NilError(t, err)

	got, err := folders.GetByID(ctx, parent.ID)
	assert.NilError(t, err)
	assert.DeepEqual(t, got.ChildIDs, want)

	children, err := folders.ListChildren(ctx, &parent.ID)
	assert.NilError(t, err)
	assert.Equal(t, len(children), len(want))
	for i, child := range children {
		assert.Equal(t, child.ID, want[i])
	}
}

func TestIntegration_TransactionRollback(t *testing.T) {
	config := setupIntegration(t)
	ctx := context.Background()
	folders := NewFolderRepository(config)
	resources := NewResourceRepository(config)
	tm := NewTransactionManager(config.Pool, config.Logger)

	folder := &models.Folder{ID: uuid.NewString(), Name: "Keep"}
	assert.NilError(t, folders.Create(ctx, folder))
	res := &models.Resource{
		ID:        uuid.NewString(),
		FolderID:  &folder.ID,
		Name:      "note",
		Kind:      models.ResourceKindText,
		CreatedOn: time.Now().UTC().Truncate(time.Millisecond),
	}
	assert.NilError(t, resources.Create(ctx, res))

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := resources.DeleteByFolder(ctx, &folder.ID); err != nil {
			return err
		}
		if err := folders.Delete(ctx, folder.ID); err != nil {
			return err
		}
		return boom
	})
	assert.Assert(t, errors.Is(err, boom))

	_, err = folders.GetByID(ctx, folder.ID)
	assert.NilError(t, err)
	got, err := resources.GetByID(ctx, res.ID)
	assert.NilError(t, err)
	assert.Assert(t, got.CreatedOn.Equal(res.CreatedOn))
}

func TestIntegration_ListRecent(t *testing.T) {
	config := setupIntegration(t)
	ctx := context.Background()
	resources := NewResourceRepository(config)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		assert.NilError(t, resources.Create(ctx, &models.Resource{
			ID:        fmt.Sprintf("r%02d", i),
			Name:      "r",
			Kind:      models.ResourceKindText,
			CreatedOn: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := resources.ListRecent(ctx, 12)
	assert.NilError(t, err)
	assert.Equal(t, len(recent), 12)
	assert.Equal(t, recent[0].ID, "r14")
	assert.Equal(t, recent[11].ID, "r03")
}

func TestIntegration_ListRecentSameInstant(t *testing.T) {
	config := setupIntegration(t)
	ctx := context.Background()
	resources := NewResourceRepository(config)

	// ids sort opposite to creation order so an id tie-break would show up
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		assert.NilError(t, resources.Create(ctx, &models.Resource{
			ID:        fmt.Sprintf("r%02d", 14-i),
			Name:      "r",
			Kind:      models.ResourceKindText,
			CreatedOn: now,
		}))
	}

	recent, err := resources.ListRecent(ctx, 12)
	assert.NilError(t, err)
	assert.Equal(t, len(recent), 12)
	for i, res := range recent {
		assert.Equal(t, res.ID, fmt.Sprintf("r%02d", i))
	}

	all, err := resources.ListAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, all[0].ID, "r14")
	assert.Equal(t, all[14].ID, "r00")
}

func strPtr(s string) *string { return &s }
