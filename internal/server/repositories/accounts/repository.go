// Package accounts persists Account identity records.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByMobile(ctx context.Context, mobile string) (*models.Account, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Account, error)
	ListByCreator(ctx context.Context, creatorID string, role models.Role, limit, offset int) ([]models.Account, int, error)
	Count(ctx context.Context) (int, error)
}
