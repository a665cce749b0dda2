package service

import (
	"context"
	"log/slog"

	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
	"devspace/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo   repositories.FolderRepository
	resourceRepo repositories.ResourceRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo repositories.FolderRepository,
	resourceRepo repositories.ResourceRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo:   folderRepo,
		resourceRepo: resourceRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetTree builds the nested folder/resource tree. Folders and resources are
// read in one transaction so a concurrent move or delete cannot split them.
func (s *treeService) GetTree(ctx context.Context) (*models.TreeNode, error) {
	var (
		allFolders   []models.Folder
		allResources []models.Resource
	)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		if allFolders, err = s.folderRepo.ListAll(ctx); err != nil {
			return err
		}
		allResources, err = s.resourceRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Folders:   []*models.FolderTreeNode{},
			Resources: []models.ResourceTreeNode{},
		}
	}

	// Second pass: nest folders under their parents
	rootFolders := make([]*models.FolderTreeNode, 0)
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			rootFolders = append(rootFolders, node)
			continue
		}
		if parent, exists := folderMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: attach resources to their folders
	rootResources := make([]models.ResourceTreeNode, 0)
	for _, res := range allResources {
		node := models.ResourceTreeNode{
			ID:        res.ID,
			Name:      res.Name,
			FolderID:  res.FolderID,
			Kind:      res.Kind,
			Favorite:  res.Favorite,
			CreatedOn: res.CreatedOn,
		}
		if res.FolderID == nil {
			rootResources = append(rootResources, node)
			continue
		}
		if parent, exists := folderMap[*res.FolderID]; exists {
			parent.Resources = append(parent.Resources, node)
		}
	}

	s.logger.Debug("tree built",
		"folder_count", len(allFolders),
		"resource_count", len(allResources),
	)

	return &models.TreeNode{
		Folders:   rootFolders,
		Resources: rootResources,
	}, nil
}
