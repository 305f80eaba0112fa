// Package selftasks persists SelfTaskMarker rows, the derived index of tasks
// an account created for itself.
package selftasks

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.SelfTaskMarker) error
	Exists(ctx context.Context, accountID, taskID string) (bool, error)
	CountByAccount(ctx context.Context, accountID string) (int, error)
}
