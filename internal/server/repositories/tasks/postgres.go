package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

// UniqueConstraint guards (title, created_by, is_self).
const UniqueConstraint = "tasks_title_creator_self_key"

const selectTask = `SELECT t.id, t.title, t.description, t.priority, t.status_id, t.assigned_to, t.due_date,
       t.created_by, t.updated_by, t.is_active, t.is_deleted, t.is_self, t.completed_at,
       t.created_at, t.updated_at,
       COALESCE((SELECT string_agg(tt.tag_id::text, ',' ORDER BY tt.tag_id) FROM task_tags tt WHERE tt.task_id = t.id), '')
FROM tasks t`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	var priority, tagIDs string
	var assignedTo, updatedBy sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.StatusID, &assignedTo, &t.DueDate,
		&t.CreatedBy, &updatedBy, &t.IsActive, &t.IsDeleted, &t.IsSelf, &completedAt,
		&t.CreatedAt, &t.UpdatedAt, &tagIDs)
	if err != nil {
		return nil, err
	}

	t.Priority = models.Priority(priority)
	t.AssignedTo = assignedTo.String
	t.UpdatedBy = updatedBy.String
	t.CompletedAt = dbx.TimePtr(completedAt)
	t.TagIDs = []string{}
	if tagIDs != "" {
		t.TagIDs = strings.Split(tagIDs, ",")
	}
	return t, nil
}

// Create inserts the task and its tag links. It must run inside a
// transaction when the caller needs both to land together.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (title, description, priority, status_id, assigned_to, due_date,
		                    created_by, is_active, is_deleted, is_self)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, FALSE, $8)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, string(task.Priority), task.StatusID, dbx.NullString(task.AssignedTo),
		task.DueDate, task.CreatedBy, task.IsSelf,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, UniqueConstraint) {
			return nil, fmt.Errorf("%w: %v", common.ErrorConflict, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, tagID := range task.TagIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			task.ID, tagID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	task.IsActive = true
	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, selectTask+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ExistsDuplicate(ctx context.Context, title, createdBy string, isSelf bool) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM tasks
		   WHERE title = $1 AND created_by = $2 AND is_self = $3 AND NOT is_deleted
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title, createdBy, isSelf).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) HasTagLabel(ctx context.Context, taskID, label string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
		   WHERE tt.task_id = $1 AND lower(g.label) = lower($2)
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, taskID, label).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateAssignee(ctx context.Context, id, assigneeID, updatedBy string, now time.Time) error {
	n, err := r.exec(ctx,
		`UPDATE tasks SET assigned_to = $2, updated_by = $3, updated_at = $4
		 WHERE id = $1`,
		id, assigneeID, dbx.NullString(updatedBy), now)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, statusID, updatedBy string, completedAt *time.Time, now time.Time) error {
	n, err := r.exec(ctx,
		`UPDATE tasks SET status_id = $2, updated_by = $3, completed_at = $4, updated_at = $5
		 WHERE id = $1 AND status_id <> $2`,
		id, statusID, dbx.NullString(updatedBy), dbx.NullTime(completedAt), now)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorStateInvalid
	}
	return nil
}

func (r *PostgresRepository) AddTag(ctx context.Context, taskID, tagID string) (bool, error) {
	n, err := r.exec(ctx,
		`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		taskID, tagID)
	return n == 1, err
}

func (r *PostgresRepository) RemoveTag(ctx context.Context, taskID, tagID string) (bool, error) {
	n, err := r.exec(ctx,
		`DELETE FROM task_tags WHERE task_id = $1 AND tag_id = $2`,
		taskID, tagID)
	return n == 1, err
}

// buildWhere turns a filter into a WHERE clause with positional args.
// Deleted tasks are not excluded.
func buildWhere(f models.TaskFilter) (string, []any) {
	conds := []string{"t.is_self = $1"}
	args := []any{f.IsSelf}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CreatedBy != "" {
		add("t.created_by = $%d", f.CreatedBy)
	}
	if f.AssignedTo != "" {
		add("t.assigned_to = $%d", f.AssignedTo)
	}
	if f.TagLabel != "" {
		add(`EXISTS (SELECT 1 FROM task_tags x JOIN tags g ON g.id = x.tag_id
		             WHERE x.task_id = t.id AND lower(g.label) = lower($%d))`, f.TagLabel)
	}
	if f.SelfOwner != "" {
		add("EXISTS (SELECT 1 FROM self_tasks s WHERE s.task_id = t.id AND s.account_id = $%d)", f.SelfOwner)
	}
	if f.Title != "" {
		add("strpos(lower(t.title), lower($%d)) > 0", f.Title)
	}
	if f.Priority != "" {
		add("t.priority = $%d", string(f.Priority))
	}
	if f.StatusID != "" {
		add("t.status_id = $%d", f.StatusID)
	}
	if f.DueBefore != nil {
		add("t.due_date <= $%d", *f.DueBefore)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, f models.TaskFilter) ([]models.Task, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tasks t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := selectTask + where +
		fmt.Sprintf(" ORDER BY t.due_date, t.created_at LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}
