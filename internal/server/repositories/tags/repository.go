// Package tags persists Tag reference data. Labels are unique per type,
// case-insensitively.
package tags

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Tag) (*models.Tag, error)
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	// FindByLabel returns the tag whose label equals label ignoring case,
	// across all types.
	FindByLabel(ctx context.Context, label string) (*models.Tag, error)
	FindByLabelAndType(ctx context.Context, label string, typ models.TagType) (*models.Tag, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
	List(ctx context.Context, typ models.TagType) ([]models.Tag, error)
}
