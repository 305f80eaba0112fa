// Package statuses persists task Status reference data.
package statuses

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Status) (*models.Status, error)
	GetByID(ctx context.Context, id string) (*models.Status, error)
	GetByName(ctx context.Context, name string) (*models.Status, error)
	List(ctx context.Context) ([]models.Status, error)
}
