// Package presence persists the account -> notification connection registry
// so it is shared across server instances and survives restarts.
package presence

import (
	"context"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Register(ctx context.Context, accountID, connectionID string) error
	Unregister(ctx context.Context, accountID string) error
	Lookup(ctx context.Context, accountID string) (*models.Presence, error)
}
