package handler

import (
	"log/slog"
	"net/http"

	"devspace/internal/domain/services"
)

// Services bundles what the router needs.
type Services struct {
	Folders   services.FolderService
	Resources services.ResourceService
	Tree      services.TreeService
}

// NewRouter registers every route on a Go 1.22 pattern mux.
// Literal segments such as /tree and /root win over {id} wildcards.
func NewRouter(svc Services, logger *slog.Logger) *http.ServeMux {
	folders := NewFolderHandler(svc.Folders, logger)
	resources := NewResourceHandler(svc.Resources, logger)
	tree := NewTreeHandler(svc.Tree, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)

	// Folder routes
	mux.HandleFunc("GET /api/folders", folders.ListFolders)
	mux.HandleFunc("POST /api/folders", folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", tree.GetTree)
	mux.HandleFunc("GET /api/folders/parent", folders.ListFoldersByParent)
	mux.HandleFunc("GET /api/folders/parent/{parentId}", folders.ListFoldersByParent)
	mux.HandleFunc("PUT /api/folders/parent/{id}", folders.MoveFolder)
	mux.HandleFunc("GET /api/folders/subfolders/{id}", folders.GetChildIDs)
	mux.HandleFunc("GET /api/folders/name/{name}", folders.SearchFolders)
	mux.HandleFunc("GET /api/folders/{id}", folders.GetFolder)
	mux.HandleFunc("PUT /api/folders/{id}", folders.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folders.DeleteFolder)

	// Resource routes
	mux.HandleFunc("GET /api/resources", resources.ListResources)
	mux.HandleFunc("POST /api/resources", resources.CreateResource)
	mux.HandleFunc("GET /api/resources/root", resources.ListResourcesByFolder)
	mux.HandleFunc("GET /api/resources/folder/{folderId}", resources.ListResourcesByFolder)
	mux.HandleFunc("DELETE /api/resources/folder/{folderId}", resources.DeleteResourcesByFolder)
	mux.HandleFunc("GET /api/resources/favorites", resources.ListFavoriteResources)
	mux.HandleFunc("GET /api/resources/recents", resources.ListRecentResources)
	mux.HandleFunc("GET /api/resources/name/{name}", resources.SearchResources)
	mux.HandleFunc("GET /api/resources/search", resources.FuzzySearchResources)
	mux.HandleFunc("GET /api/resources/{id}", resources.GetResource)
	mux.HandleFunc("PUT /api/resources/{id}", resources.UpdateResource)
	mux.HandleFunc("PATCH /api/resources/{id}", resources.PatchResource)
	mux.HandleFunc("DELETE /api/resources/{id}", resources.DeleteResource)
	mux.HandleFunc("PUT /api/resources/{id}/folder", resources.MoveResource)
	mux.HandleFunc("PUT /api/resources/{id}/favorite", resources.ToggleFavorite)

	return mux
}
