package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

const (
	EmailConstraint  = "accounts_email_key"
	MobileConstraint = "accounts_mobile_key"
)

const columns = `id, name, email, mobile, role, is_active, created_by, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	a := &models.Account{}
	var role string
	var createdBy sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Mobile, &role, &a.IsActive, &createdBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	a.CreatedBy = createdBy.String
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (name, email, mobile, role, is_active, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.Email, account.Mobile, string(account.Role), account.IsActive, dbx.NullString(account.CreatedBy),
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorConflict, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM accounts WHERE id = $1`, id)
}

// GetByEmail matches case-insensitively, mirroring the unique index.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM accounts WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) GetByMobile(ctx context.Context, mobile string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM accounts WHERE mobile = $1`, mobile)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	query :=
		`UPDATE accounts SET is_active = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + columns

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id, active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// ListByCreator returns one page of accounts created by creatorID with the
// given role, newest first, plus the unpaged total.
func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID string, role models.Role, limit, offset int) ([]models.Account, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM accounts WHERE created_by = $1 AND role = $2`,
		creatorID, string(role)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM accounts
		 WHERE created_by = $1 AND role = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		creatorID, string(role), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
