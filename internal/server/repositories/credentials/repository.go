// Package credentials persists the secret-bearing Credential paired with each
// account. Token writes are single conditional UPDATEs so the "is there an
// active token" check and the write happen atomically per row.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.Credential, error)

	// StoreToken writes digest/expiresAt only if the account has no token
	// that is still valid at now. It reports whether the write happened.
	StoreToken(ctx context.Context, accountID, digest string, expiresAt, now time.Time) (bool, error)

	// Redeem consumes an unexpired token: it sets passwordHash, clears the
	// token columns and promotes pending to active. Returns the account id and
	// the credential status before the update, or common.ErrorNotFound when no
	// live token matches.
	Redeem(ctx context.Context, digest, passwordHash string, now time.Time) (string, models.CredentialStatus, error)

	RecordLogin(ctx context.Context, accountID string, at time.Time) error
	RecordFailedLogin(ctx context.Context, accountID string) error

	// PurgeExpired clears token columns whose expiry has passed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
