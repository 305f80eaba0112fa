package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (account_id, password_hash, status, reset_token_hash, reset_token_expiration)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.AccountID, c.PasswordHash, string(c.Status), dbx.NullString(c.ResetTokenHash), dbx.NullTime(c.ResetTokenExpiration),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorConflict, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Credential, error) {
	query :=
		`SELECT id, account_id, password_hash, status, last_login, reset_token_hash,
		        reset_token_expiration, login_attempts, created_at, updated_at
		 FROM credentials
		 WHERE account_id = $1`

	c := &models.Credential{}
	var status string
	var lastLogin, expiration sql.NullTime
	var tokenHash sql.NullString

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&c.ID, &c.AccountID, &c.PasswordHash, &status, &lastLogin, &tokenHash,
		&expiration, &c.LoginAttempts, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.Status = models.CredentialStatus(status)
	c.LastLogin = dbx.TimePtr(lastLogin)
	c.ResetTokenHash = tokenHash.String
	c.ResetTokenExpiration = dbx.TimePtr(expiration)
	return c, nil
}

func (r *PostgresRepository) StoreToken(ctx context.Context, accountID, digest string, expiresAt, now time.Time) (bool, error) {
	query :=
		`UPDATE credentials
		 SET reset_token_hash = $2, reset_token_expiration = $3, updated_at = $4
		 WHERE account_id = $1
		   AND (reset_token_expiration IS NULL OR reset_token_expiration <= $4)`

	res, err := r.db.ExecContext(ctx, query, accountID, digest, expiresAt, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Redeem(ctx context.Context, digest, passwordHash string, now time.Time) (string, models.CredentialStatus, error) {
	query :=
		`WITH prev AS (
		     SELECT id, status FROM credentials
		     WHERE reset_token_hash = $1 AND reset_token_expiration > $3
		     FOR UPDATE
		 )
		 UPDATE credentials c
		 SET password_hash = $2,
		     reset_token_hash = NULL,
		     reset_token_expiration = NULL,
		     status = CASE WHEN prev.status = 'pending' THEN 'active' ELSE prev.status END,
		     updated_at = $3
		 FROM prev
		 WHERE c.id = prev.id
		 RETURNING c.account_id, prev.status`

	var accountID, prevStatus string
	err := r.db.QueryRowContext(ctx, query, digest, passwordHash, now).Scan(&accountID, &prevStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", common.ErrorNotFound
		}
		return "", "", fmt.Errorf("db error: %w", err)
	}
	return accountID, models.CredentialStatus(prevStatus), nil
}

func (r *PostgresRepository) RecordLogin(ctx context.Context, accountID string, at time.Time) error {
	query :=
		`UPDATE credentials SET last_login = $2, login_attempts = 0, updated_at = $2
		 WHERE account_id = $1`

	if _, err := r.db.ExecContext(ctx, query, accountID, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecordFailedLogin(ctx context.Context, accountID string) error {
	query :=
		`UPDATE credentials SET login_attempts = login_attempts + 1
		 WHERE account_id = $1`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	query :=
		`UPDATE credentials SET reset_token_hash = NULL, reset_token_expiration = NULL
		 WHERE reset_token_expiration IS NOT NULL AND reset_token_expiration <= $1`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
