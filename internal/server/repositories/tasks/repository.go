// Package tasks persists tasks with their tag links and comments.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)

	// ExistsDuplicate reports a live (not deleted) task with the same title,
	// creator and self flag.
	ExistsDuplicate(ctx context.Context, title, createdBy string, isSelf bool) (bool, error)
	HasTagLabel(ctx context.Context, taskID, label string) (bool, error)

	UpdateAssignee(ctx context.Context, id, assigneeID, updatedBy string, now time.Time) error
	// UpdateStatus only writes when statusID differs from the current one;
	// otherwise it returns common.ErrorStateInvalid and leaves updated_at alone.
	UpdateStatus(ctx context.Context, id, statusID, updatedBy string, completedAt *time.Time, now time.Time) error

	AddTag(ctx context.Context, taskID, tagID string) (bool, error)
	RemoveTag(ctx context.Context, taskID, tagID string) (bool, error)

	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)

	AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetComment(ctx context.Context, taskID, commentID string) (*models.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID string) error
	ListComments(ctx context.Context, taskID string) ([]models.Comment, error)
}
