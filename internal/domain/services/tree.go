package services

import (
	"context"

	"devspace/internal/domain/models"
)

// TreeService builds the nested folder/resource view
type TreeService interface {
	GetTree(ctx context.Context) (*models.TreeNode, error)
}
