package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
	"devspace/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type folderService struct {
	folderRepo   repositories.FolderRepository
	resourceRepo repositories.ResourceRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	resourceRepo repositories.ResourceRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:   folderRepo,
		resourceRepo: resourceRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateFolder creates a new folder at the root or under an existing parent
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.ParentID = normalizeRef(req.ParentID)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, invalidArgument(err)
	}

	folder := &models.Folder{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		ParentID: req.ParentID,
		ChildIDs: []string{},
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if folder.ParentID != nil {
			if err := s.requireParent(ctx, *folder.ParentID); err != nil {
				return err
			}
		}
		return s.folderRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// ListFolders lists every folder
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return s.folderRepo.ListAll(ctx)
}

// ListFoldersByParent lists the direct children of parentID (nil = root folders)
func (s *folderService) ListFoldersByParent(ctx context.Context, parentID *string) ([]models.Folder, error) {
	return s.folderRepo.ListChildren(ctx, normalizeRef(parentID))
}

// GetChildIDs lists the ids of a folder's direct children
func (s *folderService) GetChildIDs(ctx context.Context, id string) ([]string, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return folder.ChildIDs, nil
}

// SearchFolders finds folders whose name contains the query, ignoring case
func (s *folderService) SearchFolders(ctx context.Context, name string) ([]models.Folder, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "search query must not be empty"}
	}
	return s.folderRepo.SearchByName(ctx, query)
}

// RenameFolder replaces a folder's name. The hierarchy is untouched.
// A missing folder is reported before an invalid name.
func (s *folderService) RenameFolder(ctx context.Context, id string, req *services.RenameFolderRequest) (*models.Folder, error) {
	var renamed *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := validation.ValidateStruct(req, validation.Field(&req.Name, folderNameRules()...)); err != nil {
			return invalidArgument(err)
		}
		folder.Name = strings.TrimSpace(req.Name)
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}
		renamed = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", renamed.ID, "name", renamed.Name)

	return renamed, nil
}

// MoveFolder re-parents a folder.
//
// Moving to the parent the folder already has (including root to root) is
// rejected with ErrNoChange. Moving under the folder itself or any of its
// descendants is rejected with ErrCyclicMove.
func (s *folderService) MoveFolder(ctx context.Context, id string, req *services.MoveFolderRequest) (*models.Folder, error) {
	newParentID := normalizeRef(req.ParentID)

	var moved *models.Folder
	var oldParentID *string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if folder.HasParent(newParentID) {
			return domain.ErrNoChange
		}

		if newParentID != nil {
			if err := s.requireParent(ctx, *newParentID); err != nil {
				return err
			}
			if err := s.validateNoCircularReference(ctx, folder.ID, *newParentID); err != nil {
				return err
			}
			s.logger.Debug("moving folder to new parent", "folder_id", folder.ID, "new_parent_id", *newParentID)
		} else {
			s.logger.Debug("moving folder to root", "folder_id", folder.ID)
		}

		oldParentID = folder.ParentID
		folder.ParentID = newParentID
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}
		moved = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", moved.ID,
		"old_parent_id", oldParentID,
		"parent_id", moved.ParentID,
	)

	return moved, nil
}

// DeleteFolder deletes a folder, every descendant folder, and every resource
// attached anywhere in that subtree.
func (s *folderService) DeleteFolder(ctx context.Context, id string) (*models.DeleteSummary, error) {
	var summary *models.DeleteSummary
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		root, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		subtree, err := s.collectSubtree(ctx, root.ID)
		if err != nil {
			return err
		}

		// Deepest folders first: a folder's resources go before the folder itself,
		// and every descendant goes before its ancestor.
		removed := &models.DeleteSummary{}
		for i := len(subtree) - 1; i >= 0; i-- {
			folderID := subtree[i]

			n, err := s.resourceRepo.DeleteByFolder(ctx, &folderID)
			if err != nil {
				return fmt.Errorf("failed to delete resources of folder %s: %w", folderID, err)
			}
			removed.Resources += n

			if err := s.folderRepo.Delete(ctx, folderID); err != nil {
				return fmt.Errorf("failed to delete folder %s: %w", folderID, err)
			}
			removed.Folders++

			s.logger.Debug("deleted folder", "id", folderID, "resources", n)
		}

		summary = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder deleted",
		"id", id,
		"folders", summary.Folders,
		"resources", summary.Resources,
	)

	return summary, nil
}

// collectSubtree returns rootID followed by all of its descendants in
// breadth-first order, so reversing the slice yields children before parents.
func (s *folderService) collectSubtree(ctx context.Context, rootID string) ([]string, error) {
	order := []string{rootID}
	seen := map[string]bool{rootID: true}

	for next := 0; next < len(order); next++ {
		childIDs, err := s.folderRepo.ListChildIDs(ctx, order[next])
		if err != nil {
			return nil, fmt.Errorf("failed to list child folders: %w", err)
		}
		for _, childID := range childIDs {
			if seen[childID] {
				continue
			}
			seen[childID] = true
			order = append(order, childID)
		}
	}

	return order, nil
}

// requireParent maps a missing parent to ErrParentNotFound
func (s *folderService) requireParent(ctx context.Context, parentID string) error {
	if _, err := s.folderRepo.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrParentNotFound, parentID)
		}
		return err
	}
	return nil
}

// validateNoCircularReference walks the ancestor chain of newParentID up to the
// root and fails if folderID is on it (which includes newParentID == folderID).
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID, newParentID string) error {
	visited := make(map[string]bool)
	currentID := newParentID
	for {
		if currentID == folderID {
			return domain.ErrCyclicMove
		}
		if visited[currentID] {
			// Existing data already loops; refuse to extend it
			return fmt.Errorf("%w: ancestor chain of %s loops", domain.ErrCyclicMove, newParentID)
		}
		visited[currentID] = true

		ancestor, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Dangling parent reference: the chain ends here
				return nil
			}
			return err
		}
		if ancestor.ParentID == nil {
			return nil
		}
		currentID = *ancestor.ParentID
	}
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, folderNameRules()...),
	)
}
