// Package services contains the server-side business logic: the credential
// token lifecycle, authentication, account creation, task lifecycle and
// reference data. Services return *common.Error values whose Kind maps to a
// response code and whose Message is safe to show to the caller. Storage
// failures are logged and surfaced as common.ErrorInternal.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/policy"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/accounts"
	"github.com/google/uuid"
)

// internal logs cause and returns a generic INTERNAL error carrying msg.
func internal(ctx context.Context, log logging.Logger, msg string, cause error) error {
	log.Error(ctx, msg, "error", cause)
	return common.NewError(common.ErrorInternal, "%s", msg)
}

// isUserError reports whether err already carries a user-facing kind and may
// be returned unchanged.
func isUserError(err error) bool {
	var e *common.Error
	var rl *common.RateLimitError
	return errors.As(err, &e) || errors.As(err, &rl)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// loadActor resolves an account into a policy actor. A missing account is
// reported with notFoundMsg.
func loadActor(ctx context.Context, repo accounts.Repository, id, notFoundMsg string) (*models.Account, policy.Actor, error) {
	acc, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, policy.Actor{}, common.NewError(common.ErrorNotFound, "%s", notFoundMsg)
		}
		return nil, policy.Actor{}, err
	}
	return acc, policy.Actor{ID: acc.ID, Name: acc.Name, Role: acc.Role}, nil
}
