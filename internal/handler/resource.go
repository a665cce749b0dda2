package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"devspace/internal/domain/services"
	"devspace/internal/httputil"
)

// ResourceHandler handles resource HTTP requests
type ResourceHandler struct {
	resourceService services.ResourceService
	logger          *slog.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceService services.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		logger:          logger,
	}
}

type moveResourceBody struct {
	FolderID httputil.OptionalString `json:"folderId"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

// ListResources lists every resource
// GET /api/resources
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.ListResources(r.Context())
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resources)
}

// GetResource retrieves a resource by ID
// GET /api/resources/{id}
func (h *ResourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	resource, err := h.resourceService.GetResource(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// ListResourcesByFolder lists the resources of one folder, or the root-level
// ones when no folder is given
// GET /api/resources/root
// GET /api/resources/folder/{folderId}
func (h *ResourceHandler) ListResourcesByFolder(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.ListResourcesByFolder(r.Context(), folderParam(r))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resources)
}

// ListFavoriteResources lists favorite resources
// GET /api/resources/favorites
func (h *ResourceHandler) ListFavoriteResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.ListFavoriteResources(r.Context())
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resources)
}

// ListRecentResources lists the newest resources
// GET /api/resources/recents
func (h *ResourceHandler) ListRecentResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.ListRecentResources(r.Context())
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resources)
}

// SearchResources finds resources by name substring
// GET /api/resources/name/{name}
func (h *ResourceHandler) SearchResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.SearchResources(r.Context(), r.PathValue("name"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resources)
}

// FuzzySearchResources ranks resources against ?q=
// GET /api/resources/search?q=
func (h *ResourceHandler) FuzzySearchResources(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	matches, err := h.resourceService.FuzzySearchResources(r.Context(), query)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, matches)
}

// CreateResource creates a new resource
// POST /api/resources
func (h *ResourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req services.CreateResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	resource, err := h.resourceService.CreateResource(r.Context(), &req)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// UpdateResource replaces name, description and value
// PUT /api/resources/{id}
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	resource, err := h.resourceService.UpdateResource(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// PatchResource updates the fields present in the body
// PATCH /api/resources/{id}
func (h *ResourceHandler) PatchResource(w http.ResponseWriter, r *http.Request) {
	var req services.PatchResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	resource, err := h.resourceService.PatchResource(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// MoveResource re-attaches a resource; {"folderId": null} moves it to the root
// PUT /api/resources/{id}/folder
func (h *ResourceHandler) MoveResource(w http.ResponseWriter, r *http.Request) {
	var body moveResourceBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondBadBody(w, err)
		return
	}
	if !body.FolderID.Present {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "folderId is required (use null for root)", map[string]any{
			"field": "folderId",
		})
		return
	}

	resource, err := h.resourceService.MoveResource(r.Context(), r.PathValue("id"), &services.MoveResourceRequest{
		FolderID: body.FolderID.Ref(),
	})
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// ToggleFavorite flips the favorite flag
// PUT /api/resources/{id}/favorite
func (h *ResourceHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	resource, err := h.resourceService.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// DeleteResource deletes a resource
// DELETE /api/resources/{id}
func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.resourceService.DeleteResource(r.Context(), r.PathValue("id")); err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondNoContent(w)
}

// DeleteResourcesByFolder empties a folder without deleting it
// DELETE /api/resources/folder/{folderId}
func (h *ResourceHandler) DeleteResourcesByFolder(w http.ResponseWriter, r *http.Request) {
	n, err := h.resourceService.DeleteResourcesByFolder(r.Context(), folderParam(r))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func folderParam(r *http.Request) *string {
	if id := r.PathValue("folderId"); id != "" {
		return &id
	}
	return nil
}
