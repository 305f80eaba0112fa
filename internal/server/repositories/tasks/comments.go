package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

func (r *PostgresRepository) AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO task_comments (task_id, author_id, text)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, c.TaskID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetComment(ctx context.Context, taskID, commentID string) (*models.Comment, error) {
	query :=
		`SELECT id, task_id, author_id, text, created_at FROM task_comments
		 WHERE task_id = $1 AND id = $2`

	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, taskID, commentID).Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteComment(ctx context.Context, taskID, commentID string) error {
	n, err := r.exec(ctx, `DELETE FROM task_comments WHERE task_id = $1 AND id = $2`, taskID, commentID)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListComments returns a task's comments oldest first.
func (r *PostgresRepository) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, author_id, text, created_at FROM task_comments
		 WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
