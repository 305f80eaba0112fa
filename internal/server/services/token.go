package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/cryptox"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/mailer"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
)

// Purpose selects the lifetime of an issued token.
type Purpose int

const (
	PurposeReset Purpose = iota
	PurposeActivation
)

func (p Purpose) String() string {
	if p == PurposeActivation {
		return "activation"
	}
	return "reset"
}

// IssuedToken is returned exactly once; only its digest is persisted.
type IssuedToken struct {
	Plain     string
	ExpiresAt time.Time
}

// TokenService manages single-use reset/activation tokens. At most one
// unexpired token exists per account: issuing while one is live fails with
// *common.RateLimitError.
type TokenService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	mailer        mailer.Mailer
	log           logging.Logger
	resetTTL      time.Duration
	activationTTL time.Duration
	bcryptCost    int
	frontendURL   string
	now           func() time.Time
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, ml mailer.Mailer, log logging.Logger) *TokenService {
	return &TokenService{
		db:            db,
		repomanager:   m,
		mailer:        ml,
		log:           log.With("module", "token"),
		resetTTL:      cfg.ResetTokenTTL,
		activationTTL: cfg.ActivationTokenTTL,
		bcryptCost:    cfg.BcryptCost,
		frontendURL:   cfg.FrontendURL,
		now:           time.Now,
	}
}

func (s *TokenService) ttl(p Purpose) time.Duration {
	if p == PurposeActivation {
		return s.activationTTL
	}
	return s.resetTTL
}

// IssueToken stores a fresh token digest for the account and returns the
// plaintext for out-of-band delivery.
func (s *TokenService) IssueToken(ctx context.Context, accountID string, p Purpose) (*IssuedToken, error) {
	tok, err := s.issue(ctx, s.db, accountID, p)
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "User not found")
		}
		return nil, internal(ctx, s.log, "Error issuing token", err)
	}
	return tok, nil
}

// issue runs on db, which may be a transaction owned by the caller. The
// conditional write makes check and store a single statement; when it
// writes nothing the live token's expiry yields the wait. A token that
// expired between the two statements gets one more attempt.
func (s *TokenService) issue(ctx context.Context, db dbx.DBTX, accountID string, p Purpose) (*IssuedToken, error) {
	plain, digest, err := cryptox.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	repo := s.repomanager.Credentials(db)

	for attempt := 0; attempt < 2; attempt++ {
		now := s.now()
		expiresAt := now.Add(s.ttl(p))

		stored, err := repo.StoreToken(ctx, accountID, digest, expiresAt, now)
		if err != nil {
			return nil, err
		}
		if stored {
			s.log.Info(ctx, "token issued", "account_id", accountID, "purpose", p.String(), "expires_at", expiresAt)
			return &IssuedToken{Plain: plain, ExpiresAt: expiresAt}, nil
		}

		cred, err := repo.GetByAccountID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if exp := cred.ResetTokenExpiration; exp != nil && exp.After(now) {
			s.log.Warn(ctx, "active token available", "account_id", accountID, "expires_at", *exp)
			return nil, &common.RateLimitError{Wait: exp.Sub(now)}
		}
	}

	return nil, fmt.Errorf("token for account %s was not stored", accountID)
}

// RedeemToken consumes a live token and sets the new password in the same
// update. Unknown and expired tokens are reported identically.
func (s *TokenService) RedeemToken(ctx context.Context, plain, newPassword string) (string, error) {
	start := time.Now()
	plain = strings.TrimSpace(plain)
	if plain == "" || newPassword == "" {
		return "", common.NewError(common.ErrorValidation, "All inputs are required")
	}
	if err := cryptox.CheckPasswordStrength(newPassword); err != nil {
		return "", common.NewError(common.ErrorValidation, "Password must be at least 8 characters and include uppercase, lowercase, number and special character")
	}

	hash, err := cryptox.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return "", internal(ctx, s.log, "Error resetting password", err)
	}

	var accountID string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, prev, err := s.repomanager.Credentials(tx).Redeem(ctx, cryptox.DigestToken(plain), hash, s.now())
		if err != nil {
			return err
		}
		// Only activation turns the account on; a reset keeps an admin's deactivation.
		if prev == models.CredentialPending {
			if _, err := s.repomanager.Accounts(tx).SetActive(ctx, id, true); err != nil {
				return err
			}
		}
		accountID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "invalid or expired token")
			return "", common.NewError(common.ErrExpiredOrInvalid, "Invalid or expired page")
		}
		return "", internal(ctx, s.log, "Error resetting password", err)
	}

	s.log.Info(ctx, "password updated", "account_id", accountID, "processing_time_ms", elapsedMs(start))
	return accountID, nil
}

// RequestReset issues a reset token for the account behind email and mails
// the link. Delivery is best effort: once the token is stored a mail
// failure is logged and the call still succeeds.
func (s *TokenService) RequestReset(ctx context.Context, email string) error {
	start := time.Now()
	email = normalizeEmail(email)
	if email == "" {
		return common.NewError(common.ErrorValidation, "Email is required.")
	}

	acc, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "reset requested for unknown email", "email", email)
			return common.NewError(common.ErrorNotFound, "User not found")
		}
		return internal(ctx, s.log, "Something went wrong while sending the reset link. Please try again later", err)
	}
	if !acc.IsActive {
		s.log.Warn(ctx, "reset requested for inactive account", "account_id", acc.ID)
		return common.NewError(common.ErrorUnauthorized, "User not active")
	}

	tok, err := s.issue(ctx, s.db, acc.ID, PurposeReset)
	if err != nil {
		if isUserError(err) {
			return err
		}
		return internal(ctx, s.log, "Something went wrong while sending the reset link. Please try again later", err)
	}

	link := mailer.Link(s.frontendURL, "reset-password", tok.Plain)
	msg := mailer.ResetMessage(acc.Email, acc.Name, link, int(s.resetTTL.Minutes()))
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "error sending password reset email", "account_id", acc.ID, "error", err)
	} else {
		s.log.Info(ctx, "password reset email sent", "account_id", acc.ID)
	}

	s.log.Info(ctx, "password reset link generated", "account_id", acc.ID, "expires_at", tok.ExpiresAt, "processing_time_ms", elapsedMs(start))
	return nil
}

// PurgeExpired clears token digests whose expiry has passed and returns how
// many credentials were touched.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Credentials(s.db).PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, internal(ctx, s.log, "Error purging tokens", err)
	}
	s.log.Info(ctx, "expired tokens purged", "count", n)
	return n, nil
}
