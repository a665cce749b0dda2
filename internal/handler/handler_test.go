package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/services"
	"devspace/internal/repository/memory"
	"devspace/internal/service"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memory.NewStore()
	folderRepo := memory.NewFolderRepository(store)
	resourceRepo := memory.NewResourceRepository(store)
	txManager := memory.NewTransactionManager(store)

	mux := NewRouter(Services{
		Folders:   service.NewFolderService(folderRepo, resourceRepo, txManager, logger),
		Resources: service.NewResourceService(resourceRepo, folderRepo, txManager, logger),
		Tree:      service.NewTreeService(folderRepo, resourceRepo, txManager, logger),
	}, logger)

	return &testServer{t: t, handler: mux}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) createFolder(name string, parentID *string) models.Folder {
	s.t.Helper()
	body, err := json.Marshal(services.CreateFolderRequest{Name: name, ParentID: parentID})
	assert.NilError(s.t, err)
	w := s.do(http.MethodPost, "/api/folders", string(body))
	assert.Equal(s.t, w.Code, http.StatusCreated, w.Body.String())
	return decode[models.Folder](s.t, w)
}

func (s *testServer) createResource(name string, folderID *string) models.Resource {
	s.t.Helper()
	value := "https://go.dev"
	body, err := json.Marshal(services.CreateResourceRequest{
		Name:     name,
		FolderID: folderID,
		Kind:     models.ResourceKindURL,
		Value:    &value,
	})
	assert.NilError(s.t, err)
	w := s.do(http.MethodPost, "/api/resources", string(body))
	assert.Equal(s.t, w.Code, http.StatusCreated, w.Body.String())
	return decode[models.Resource](s.t, w)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do(http.MethodGet, "/health", "")
	assert.Equal(t, w.Code, http.StatusOK)
	body := decode[map[string]string](t, w)
	assert.Equal(t, body["status"], "ok")
	assert.Assert(t, body["time"] != "")
}

func TestFolderLifecycle(t *testing.T) {
	srv := newTestServer(t)

	docs := srv.createFolder("Docs", nil)
	specs := srv.createFolder("Specs", &docs.ID)
	srv.createResource("Go site", &specs.ID)
	srv.createResource("Loose", nil)

	t.Run("get includes derived children", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/api/folders/"+docs.ID, "")
		assert.Equal(t, w.Code, http.StatusOK)
		got := decode[models.Folder](t, w)
		assert.DeepEqual(t, got.ChildIDs, []string{specs.ID})
		assert.Assert(t, got.ParentID == nil)
	})

	t.Run("list root and by parent", func(t *testing.T) {
		roots := decode[[]models.Folder](t, srv.do(http.MethodGet, "/api/folders/parent", ""))
		assert.Equal(t, len(roots), 1)
		assert.Equal(t, roots[0].ID, docs.ID)

		children := decode[[]models.Folder](t, srv.do(http.MethodGet, "/api/folders/parent/"+docs.ID, ""))
		assert.Equal(t, len(children), 1)
		assert.Equal(t, children[0].Name, "Specs")
	})

	t.Run("subfolders and search", func(t *testing.T) {
		ids := decode[[]string](t, srv.do(http.MethodGet, "/api/folders/subfolders/"+docs.ID, ""))
		assert.DeepEqual(t, ids, []string{specs.ID})

		found := decode[[]models.Folder](t, srv.do(http.MethodGet, "/api/folders/name/spe", ""))
		assert.Equal(t, len(found), 1)
		assert.Equal(t, found[0].ID, specs.ID)
	})

	t.Run("tree", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/api/folders/tree", "")
		assert.Equal(t, w.Code, http.StatusOK)
		tree := decode[models.TreeNode](t, w)
		assert.Equal(t, len(tree.Folders), 1)
		assert.Equal(t, len(tree.Folders[0].Folders), 1)
		assert.Equal(t, len(tree.Folders[0].Folders[0].Resources), 1)
		assert.Equal(t, len(tree.Resources), 1)
	})

	t.Run("rename", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/api/folders/"+specs.ID, `{"name":"Designs"}`)
		assert.Equal(t, w.Code, http.StatusOK)
		assert.Equal(t, decode[models.Folder](t, w).Name, "Designs")
	})

	t.Run("move to root then back", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/api/folders/parent/"+specs.ID, `{"parentId":null}`)
		assert.Equal(t, w.Code, http.StatusOK, w.Body.String())
		assert.Assert(t, decode[models.Folder](t, w).ParentID == nil)

		w = srv.do(http.MethodPut, "/api/folders/parent/"+specs.ID, `{"parentId":"`+docs.ID+`"}`)
		assert.Equal(t, w.Code, http.StatusOK, w.Body.String())
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := srv.do(http.MethodDelete, "/api/folders/"+docs.ID, "")
		assert.Equal(t, w.Code, http.StatusOK)
		assert.DeepEqual(t, decode[models.DeleteSummary](t, w), models.DeleteSummary{Folders: 2, Resources: 1})

		w = srv.do(http.MethodGet, "/api/folders/"+specs.ID, "")
		assert.Equal(t, w.Code, http.StatusNotFound)

		remaining := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources", ""))
		assert.Equal(t, len(remaining), 1)
		assert.Equal(t, remaining[0].Name, "Loose")
	})
}

func TestFolderErrors(t *testing.T) {
	srv := newTestServer(t)
	a := srv.createFolder("A", nil)
	b := srv.createFolder("B", &a.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"missing folder", http.MethodGet, "/api/folders/nope", "", http.StatusNotFound, "not found"},
		{"blank name", http.MethodPost, "/api/folders", `{"name":"   "}`, http.StatusBadRequest, "name"},
		{"unknown parent", http.MethodPost, "/api/folders", `{"name":"X","parentId":"ghost"}`, http.StatusBadRequest, "parent folder does not exist"},
		{"malformed body", http.MethodPost, "/api/folders", `{"name":`, http.StatusBadRequest, "invalid JSON"},
		{"empty body", http.MethodPost, "/api/folders", "", http.StatusBadRequest, "request body is required"},
		{"move without field", http.MethodPut, "/api/folders/parent/" + b.ID, `{}`, http.StatusBadRequest, "parentId is required"},
		{"move to same parent", http.MethodPut, "/api/folders/parent/" + b.ID, `{"parentId":"` + a.ID + `"}`, http.StatusConflict, "already has the requested parent"},
		{"root to root", http.MethodPut, "/api/folders/parent/" + a.ID, `{"parentId":null}`, http.StatusConflict, "already has the requested parent"},
		{"move under descendant", http.MethodPut, "/api/folders/parent/" + a.ID, `{"parentId":"` + b.ID + `"}`, http.StatusBadRequest, "descendants"},
		{"move under itself", http.MethodPut, "/api/folders/parent/" + a.ID, `{"parentId":"` + a.ID + `"}`, http.StatusBadRequest, "descendants"},
		{"move missing folder", http.MethodPut, "/api/folders/parent/nope", `{"parentId":null}`, http.StatusNotFound, "not found"},
		{"delete missing folder", http.MethodDelete, "/api/folders/nope", "", http.StatusNotFound, "not found"},
		{"rename missing folder with empty name", http.MethodPut, "/api/folders/nope", `{"name":""}`, http.StatusNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(tt.method, tt.path, tt.body)
			assert.Equal(t, w.Code, tt.wantStatus, w.Body.String())
			assert.Equal(t, w.Header().Get("Content-Type"), "application/problem+json")
			problem := decode[map[string]any](t, w)
			assert.Check(t, is.Contains(problem["detail"].(string), tt.wantDetail))
		})
	}
}

func TestResourceLifecycle(t *testing.T) {
	srv := newTestServer(t)
	folder := srv.createFolder("Links", nil)
	other := srv.createFolder("Other", nil)
	res := srv.createResource("Go site", &folder.ID)

	t.Run("get", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/api/resources/"+res.ID, "")
		assert.Equal(t, w.Code, http.StatusOK)
		got := decode[models.Resource](t, w)
		assert.Equal(t, got.Name, "Go site")
		assert.Equal(t, *got.FolderID, folder.ID)
	})

	t.Run("list by folder and root", func(t *testing.T) {
		inFolder := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources/folder/"+folder.ID, ""))
		assert.Equal(t, len(inFolder), 1)
		atRoot := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources/root", ""))
		assert.Equal(t, len(atRoot), 0)
	})

	t.Run("patch keeps absent fields", func(t *testing.T) {
		w := srv.do(http.MethodPatch, "/api/resources/"+res.ID, `{"description":"docs"}`)
		assert.Equal(t, w.Code, http.StatusOK, w.Body.String())
		got := decode[models.Resource](t, w)
		assert.Equal(t, got.Name, "Go site")
		assert.Equal(t, *got.Description, "docs")
		assert.Equal(t, *got.Value, "https://go.dev")
	})

	t.Run("put clears absent fields", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/api/resources/"+res.ID, `{"name":"Go"}`)
		assert.Equal(t, w.Code, http.StatusOK, w.Body.String())
		got := decode[models.Resource](t, w)
		assert.Equal(t, got.Name, "Go")
		assert.Assert(t, got.Description == nil)
		assert.Assert(t, got.Value == nil)
	})

	t.Run("favorite toggles", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/api/resources/"+res.ID+"/favorite", "")
		assert.Equal(t, w.Code, http.StatusOK)
		assert.Assert(t, decode[models.Resource](t, w).Favorite)

		favs := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources/favorites", ""))
		assert.Equal(t, len(favs), 1)
	})

	t.Run("reattach", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/api/resources/"+res.ID+"/folder", `{"folderId":"`+other.ID+`"}`)
		assert.Equal(t, w.Code, http.StatusOK, w.Body.String())
		assert.Equal(t, *decode[models.Resource](t, w).FolderID, other.ID)

		w = srv.do(http.MethodPut, "/api/resources/"+res.ID+"/folder", `{"folderId":null}`)
		assert.Equal(t, w.Code, http.StatusOK, w.Body.String())
		assert.Assert(t, decode[models.Resource](t, w).FolderID == nil)
	})

	t.Run("search", func(t *testing.T) {
		byName := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources/name/go", ""))
		assert.Equal(t, len(byName), 1)

		matches := decode[[]models.ResourceMatch](t, srv.do(http.MethodGet, "/api/resources/search?q=go", ""))
		assert.Equal(t, len(matches), 1)
		assert.Equal(t, matches[0].Resource.ID, res.ID)

		recents := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources/recents", ""))
		assert.Equal(t, len(recents), 1)
	})

	t.Run("delete", func(t *testing.T) {
		w := srv.do(http.MethodDelete, "/api/resources/"+res.ID, "")
		assert.Equal(t, w.Code, http.StatusNoContent)
		assert.Equal(t, w.Body.Len(), 0)

		w = srv.do(http.MethodGet, "/api/resources/"+res.ID, "")
		assert.Equal(t, w.Code, http.StatusNotFound)

		// deleting again is not an error
		w = srv.do(http.MethodDelete, "/api/resources/"+res.ID, "")
		assert.Equal(t, w.Code, http.StatusNoContent)
	})
}

func TestDeleteResourcesByFolder(t *testing.T) {
	srv := newTestServer(t)
	folder := srv.createFolder("Bulk", nil)
	for _, name := range []string{"a", "b", "c"} {
		srv.createResource(name, &folder.ID)
	}
	srv.createResource("kept", nil)

	w := srv.do(http.MethodDelete, "/api/resources/folder/"+folder.ID, "")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, decode[deletedResponse](t, w).Deleted, 3)

	w = srv.do(http.MethodGet, "/api/folders/"+folder.ID, "")
	assert.Equal(t, w.Code, http.StatusOK)

	all := decode[[]models.Resource](t, srv.do(http.MethodGet, "/api/resources", ""))
	assert.Equal(t, len(all), 1)
}

func TestResourceErrors(t *testing.T) {
	srv := newTestServer(t)
	res := srv.createResource("r", nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"missing resource", http.MethodGet, "/api/resources/nope", "", http.StatusNotFound, "not found"},
		{"bad kind", http.MethodPost, "/api/resources", `{"name":"x","kind":"Binary"}`, http.StatusBadRequest, "kind"},
		{"language on url", http.MethodPost, "/api/resources", `{"name":"x","kind":"Url","codeLanguage":"Go"}`, http.StatusBadRequest, "codeLanguage"},
		{"unknown folder", http.MethodPost, "/api/resources", `{"name":"x","kind":"Text","folderId":"ghost"}`, http.StatusNotFound, "target folder"},
		{"empty patch", http.MethodPatch, "/api/resources/" + res.ID, `{}`, http.StatusBadRequest, "at least one field"},
		{"reattach without field", http.MethodPut, "/api/resources/" + res.ID + "/folder", `{}`, http.StatusBadRequest, "folderId is required"},
		{"reattach to missing folder", http.MethodPut, "/api/resources/" + res.ID + "/folder", `{"folderId":"ghost"}`, http.StatusNotFound, "not found"},
		{"toggle missing", http.MethodPut, "/api/resources/nope/favorite", "", http.StatusNotFound, "not found"},
		{"patch missing with empty body", http.MethodPatch, "/api/resources/nope", `{}`, http.StatusNotFound, "not found"},
		{"fuzzy without query", http.MethodGet, "/api/resources/search", "", http.StatusBadRequest, "'q' is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(tt.method, tt.path, tt.body)
			assert.Equal(t, w.Code, tt.wantStatus, w.Body.String())
			problem := decode[map[string]any](t, w)
			assert.Check(t, is.Contains(problem["detail"].(string), tt.wantDetail))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
		wantField  string
	}{
		{"folder not found", domain.ErrFolderNotFound, http.StatusNotFound, "folder not found", ""},
		{"resource not found", domain.ErrResourceNotFound, http.StatusNotFound, "resource not found", ""},
		{"parent not found", domain.ErrParentNotFound, http.StatusBadRequest, "parent folder", ""},
		{"cyclic move", domain.ErrCyclicMove, http.StatusBadRequest, "descendants", ""},
		{"no change", domain.ErrNoChange, http.StatusConflict, "requested parent", ""},
		{"field error", &domain.ValidationError{Field: "name", Message: "too long"}, http.StatusBadRequest, "name: too long", "name"},
		{"store failure", domain.NewStoreError("get folder", errors.New("connection reset")), http.StatusInternalServerError, "internal server error", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/folders/x", nil)

			handleError(logger, w, r, tt.err)

			assert.Equal(t, w.Code, tt.wantStatus)
			problem := decode[map[string]any](t, w)
			assert.Check(t, is.Contains(problem["detail"].(string), tt.wantDetail))
			if tt.wantField != "" {
				assert.Equal(t, problem["field"], tt.wantField)
			}
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Check(t, is.Contains(logs.String(), tt.err.Error()))
				assert.Check(t, !strings.Contains(w.Body.String(), "connection reset"))
			} else {
				assert.Equal(t, logs.Len(), 0)
			}
		})
	}
}

type failingFolderService struct {
	services.FolderService
}

func (failingFolderService) ListFolders(context.Context) ([]models.Folder, error) {
	return nil, domain.NewStoreError("list folders", errors.New("disk on fire"))
}

func TestStoreFailureIsOpaque(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := NewFolderHandler(failingFolderService{}, logger)

	w := httptest.NewRecorder()
	h.ListFolders(w, httptest.NewRequest(http.MethodGet, "/api/folders", nil))

	assert.Equal(t, w.Code, http.StatusInternalServerError)
	assert.Check(t, !strings.Contains(w.Body.String(), "disk on fire"))
}
