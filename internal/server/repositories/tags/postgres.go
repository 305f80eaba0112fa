package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

const columns = `id, label, color, type, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTag(row scanner) (*models.Tag, error) {
	t := &models.Tag{}
	var typ string
	if err := row.Scan(&t.ID, &t.Label, &t.Color, &typ, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Type = models.TagType(typ)
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	query :=
		`INSERT INTO tags (label, color, type)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, t.Label, t.Color, string(t.Type)).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorConflict, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...any) (*models.Tag, error) {
	t, err := scanTag(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	return r.get(ctx, `SELECT `+columns+` FROM tags WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByLabel(ctx context.Context, label string) (*models.Tag, error) {
	return r.get(ctx, `SELECT `+columns+` FROM tags WHERE lower(label) = lower($1) ORDER BY created_at LIMIT 1`, label)
}

func (r *PostgresRepository) FindByLabelAndType(ctx context.Context, label string, typ models.TagType) (*models.Tag, error) {
	return r.get(ctx, `SELECT `+columns+` FROM tags WHERE lower(label) = lower($1) AND type = $2`, label, string(typ))
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	return r.list(ctx, `SELECT `+columns+` FROM tags WHERE id = ANY($1) ORDER BY label`, ids)
}

// List returns all tags, or only those of typ when it is non-empty.
func (r *PostgresRepository) List(ctx context.Context, typ models.TagType) ([]models.Tag, error) {
	return r.list(ctx, `SELECT `+columns+` FROM tags WHERE ($1 = '' OR type = $1) ORDER BY label`, string(typ))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
