package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devspace/internal/config"
	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
	"devspace/internal/domain/services"
	"devspace/internal/search"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type resourceService struct {
	resourceRepo repositories.ResourceRepository
	folderRepo   repositories.FolderRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
	now          func() time.Time
}

// NewResourceService creates a new resource service
func NewResourceService(
	resourceRepo repositories.ResourceRepository,
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ResourceService {
	return &resourceService{
		resourceRepo: resourceRepo,
		folderRepo:   folderRepo,
		txManager:    txManager,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateResource creates a resource at the root or inside an existing folder
func (s *resourceService) CreateResource(ctx context.Context, req *services.CreateResourceRequest) (*models.Resource, error) {
	req.FolderID = normalizeRef(req.FolderID)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, invalidArgument(err)
	}

	resource := &models.Resource{
		ID:           uuid.NewString(),
		FolderID:     req.FolderID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Kind:         req.Kind,
		CodeLanguage: req.CodeLanguage,
		Value:        req.Value,
		Favorite:     false,
		// Millisecond precision is what every store can round-trip
		CreatedOn: s.now().UTC().Truncate(time.Millisecond),
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if resource.FolderID != nil {
			if err := s.requireFolder(ctx, *resource.FolderID); err != nil {
				return err
			}
		}
		return s.resourceRepo.Create(ctx, resource)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource created",
		"id", resource.ID,
		"name", resource.Name,
		"kind", resource.Kind,
		"folder_id", resource.FolderID,
	)

	return resource, nil
}

// GetResource retrieves a resource by ID
func (s *resourceService) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

// ListResources lists every resource
func (s *resourceService) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.resourceRepo.ListAll(ctx)
}

// ListResourcesByFolder lists resources in folderID (nil = root level)
func (s *resourceService) ListResourcesByFolder(ctx context.Context, folderID *string) ([]models.Resource, error) {
	return s.resourceRepo.ListByFolder(ctx, normalizeRef(folderID))
}

// ListFavoriteResources lists resources flagged as favorite
func (s *resourceService) ListFavoriteResources(ctx context.Context) ([]models.Resource, error) {
	return s.resourceRepo.ListFavorites(ctx)
}

// ListRecentResources lists the most recently created resources, newest first
func (s *resourceService) ListRecentResources(ctx context.Context) ([]models.Resource, error) {
	return s.resourceRepo.ListRecent(ctx, config.RecentResourcesLimit)
}

// SearchResources finds resources whose name contains the query, ignoring case
func (s *resourceService) SearchResources(ctx context.Context, name string) ([]models.Resource, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "search query must not be empty"}
	}
	return s.resourceRepo.SearchByName(ctx, query)
}

// FuzzySearchResources ranks every resource by fuzzy name match
func (s *resourceService) FuzzySearchResources(ctx context.Context, query string) ([]models.ResourceMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Field: "q", Message: "search query must not be empty"}
	}

	all, err := s.resourceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := search.FuzzySearchResources(all, query, config.MaxFuzzyResults)
	if matches == nil {
		matches = []models.ResourceMatch{}
	}

	s.logger.Debug("fuzzy resource search", "query", query, "candidates", len(all), "matches", len(matches))

	return matches, nil
}

// UpdateResource replaces name, description and value. A nil description or
// value clears the stored one. A missing resource is reported before any
// validation failure.
func (s *resourceService) UpdateResource(ctx context.Context, id string, req *services.UpdateResourceRequest) (*models.Resource, error) {
	updated, err := s.modify(ctx, id, func(r *models.Resource) error {
		if err := validation.ValidateStruct(req,
			validation.Field(&req.Name, resourceNameRules()...),
			validation.Field(&req.Description, descriptionRules()...),
			validation.Field(&req.Value, printable),
		); err != nil {
			return invalidArgument(err)
		}
		r.Name = strings.TrimSpace(req.Name)
		r.Description = req.Description
		r.Value = req.Value
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource updated", "id", updated.ID, "name", updated.Name)

	return updated, nil
}

// PatchResource updates only the fields present in the request. A missing
// resource is reported before any validation failure.
func (s *resourceService) PatchResource(ctx context.Context, id string, req *services.PatchResourceRequest) (*models.Resource, error) {
	updated, err := s.modify(ctx, id, func(r *models.Resource) error {
		if err := s.validatePatchRequest(req); err != nil {
			return invalidArgument(err)
		}
		if req.Name != nil {
			r.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			r.Description = req.Description
		}
		if req.Value != nil {
			r.Value = req.Value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource patched", "id", updated.ID, "name", updated.Name)

	return updated, nil
}

// MoveResource re-attaches a resource to another folder or to the root.
// Re-attaching to the current folder is allowed and rewrites the same value.
func (s *resourceService) MoveResource(ctx context.Context, id string, req *services.MoveResourceRequest) (*models.Resource, error) {
	folderID := normalizeRef(req.FolderID)

	var moved *models.Resource
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		resource, err := s.resourceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if folderID != nil {
			if err := s.requireFolder(ctx, *folderID); err != nil {
				return err
			}
		}
		resource.FolderID = folderID
		if err := s.resourceRepo.Update(ctx, resource); err != nil {
			return err
		}
		moved = resource
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource moved", "id", moved.ID, "folder_id", moved.FolderID)

	return moved, nil
}

// ToggleFavorite flips the favorite flag
func (s *resourceService) ToggleFavorite(ctx context.Context, id string) (*models.Resource, error) {
	updated, err := s.modify(ctx, id, func(r *models.Resource) error {
		r.Favorite = !r.Favorite
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource favorite toggled", "id", updated.ID, "favorite", updated.Favorite)

	return updated, nil
}

// DeleteResource deletes a resource; a missing id is not an error
func (s *resourceService) DeleteResource(ctx context.Context, id string) error {
	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("resource deleted", "id", id)
	return nil
}

// DeleteResourcesByFolder empties a folder (nil = root level) without touching folders
func (s *resourceService) DeleteResourcesByFolder(ctx context.Context, folderID *string) (int, error) {
	folderID = normalizeRef(folderID)

	n, err := s.resourceRepo.DeleteByFolder(ctx, folderID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("resources deleted by folder", "folder_id", folderID, "count", n)

	return n, nil
}

// modify runs a read-modify-write on one resource inside a transaction.
// An error from apply aborts the write.
func (s *resourceService) modify(ctx context.Context, id string, apply func(*models.Resource) error) (*models.Resource, error) {
	var result *models.Resource
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		resource, err := s.resourceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(resource); err != nil {
			return err
		}
		if err := s.resourceRepo.Update(ctx, resource); err != nil {
			return err
		}
		result = resource
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// requireFolder fails with ErrFolderNotFound if the target folder is missing
func (s *resourceService) requireFolder(ctx context.Context, folderID string) error {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return fmt.Errorf("target folder: %w", err)
	}
	return nil
}

// validateCreateRequest validates a resource creation request
func (s *resourceService) validateCreateRequest(req *services.CreateResourceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, resourceNameRules()...),
		validation.Field(&req.Description, descriptionRules()...),
		validation.Field(&req.Kind, validation.Required, validation.In(kindValues()...)),
		validation.Field(&req.CodeLanguage,
			validation.When(req.Kind != models.ResourceKindCode,
				validation.Nil.Error("only allowed for Code resources"),
			),
			validation.In(codeLanguageValues()...),
		),
		validation.Field(&req.Value, printable),
	)
}

// validatePatchRequest validates a partial update request
func (s *resourceService) validatePatchRequest(req *services.PatchResourceRequest) error {
	// At least one field must be provided
	if req.Name == nil && req.Description == nil && req.Value == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.Description, descriptionRules()...),
		validation.Field(&req.Value, printable),
	}

	if req.Name != nil {
		rules = append(rules, validation.Field(&req.Name, resourceNameRules()...))
	}

	return validation.ValidateStruct(req, rules...)
}
