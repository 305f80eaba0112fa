package presence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Register(ctx context.Context, accountID, connectionID string) error {
	query :=
		`INSERT INTO presence (account_id, connection_id) VALUES ($1, $2)
		 ON CONFLICT (account_id) DO UPDATE SET connection_id = EXCLUDED.connection_id, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, accountID, connectionID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Unregister(ctx context.Context, accountID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM presence WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Lookup(ctx context.Context, accountID string) (*models.Presence, error) {
	p := &models.Presence{}
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id, connection_id, updated_at FROM presence WHERE account_id = $1`,
		accountID).Scan(&p.AccountID, &p.ConnectionID, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
