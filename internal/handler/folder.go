package handler

import (
	"log/slog"
	"net/http"

	"devspace/internal/domain/services"
	"devspace/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// moveFolderBody keeps absent and null apart: only the latter means root.
type moveFolderBody struct {
	ParentID httputil.OptionalString `json:"parentId"`
}

// ListFolders lists every folder
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListFolders(r.Context())
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folderService.GetFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListFoldersByParent lists the direct children of a folder, or the root
// folders when no parent is given
// GET /api/folders/parent
// GET /api/folders/parent/{parentId}
func (h *FolderHandler) ListFoldersByParent(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if id := r.PathValue("parentId"); id != "" {
		parentID = &id
	}

	folders, err := h.folderService.ListFoldersByParent(r.Context(), parentID)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetChildIDs lists the ids of a folder's direct children
// GET /api/folders/subfolders/{id}
func (h *FolderHandler) GetChildIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.folderService.GetChildIDs(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ids)
}

// SearchFolders finds folders by name substring
// GET /api/folders/name/{name}
func (h *FolderHandler) SearchFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.SearchFolders(r.Context(), r.PathValue("name"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RenameFolder replaces a folder's name
// PUT /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req services.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder re-parents a folder; {"parentId": null} moves it to the root
// PUT /api/folders/parent/{id}
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	var body moveFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondBadBody(w, err)
		return
	}
	if !body.ParentID.Present {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "parentId is required (use null for root)", map[string]any{
			"field": "parentId",
		})
		return
	}

	folder, err := h.folderService.MoveFolder(r.Context(), r.PathValue("id"), &services.MoveFolderRequest{
		ParentID: body.ParentID.Ref(),
	})
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with its subtree and attached resources
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	summary, err := h.folderService.DeleteFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}
