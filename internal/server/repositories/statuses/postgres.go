package statuses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

const columns = `id, name, color, created_by, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStatus(row scanner) (*models.Status, error) {
	s := &models.Status{}
	var createdBy sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.Color, &createdBy, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.CreatedBy = createdBy.String
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Status) (*models.Status, error) {
	query :=
		`INSERT INTO statuses (name, color, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, s.Name, s.Color, dbx.NullString(s.CreatedBy)).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorConflict, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*models.Status, error) {
	s, err := scanStatus(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Status, error) {
	return r.get(ctx, `SELECT `+columns+` FROM statuses WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Status, error) {
	return r.get(ctx, `SELECT `+columns+` FROM statuses WHERE name = $1`, name)
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Status, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM statuses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Status, 0)
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
