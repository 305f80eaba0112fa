package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/notify"
	"github.com/dmitrijs2005/tasktracker/internal/server/policy"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

var errDuplicateTask = errors.New("duplicate task")

// CreateTaskInput is the payload of task creation. Tags are tag labels.
// AssignedTo is required unless IsSelf is set.
type CreateTaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     time.Time       `json:"dueDate"`
	Tags        []string        `json:"tags"`
	CreatedBy   string          `json:"createdBy"`
	IsSelf      bool            `json:"isSelf"`
	AssignedTo  string          `json:"assignedTo"`
}

func (in *CreateTaskInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Priority = models.Priority(strings.ToLower(strings.TrimSpace(string(in.Priority))))
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
}

func (in *CreateTaskInput) missing() []string {
	var fields []string
	err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Priority, validation.Required),
		validation.Field(&in.DueDate, validation.Required),
		validation.Field(&in.CreatedBy, validation.Required),
	)
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, f := range []string{"title", "description", "priority", "dueDate", "createdBy"} {
			if _, ok := errs[f]; ok {
				fields = append(fields, f)
			}
		}
	}
	if !in.IsSelf && in.AssignedTo == "" {
		fields = append(fields, "assignedTo")
	}
	return fields
}

// TaskQuery narrows a scoped fetch. Zero values do not constrain.
type TaskQuery struct {
	Title     string
	Priority  models.Priority
	StatusID  string
	DueBefore *time.Time
	Limit     int
	Offset    int
}

type TaskPage struct {
	Tasks  []models.Task
	Total  int
	Limit  int
	Offset int
}

// TaskService runs the task lifecycle. Every mutation is checked by the
// policy engine before anything is written.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	log         logging.Logger
	now         func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, n notify.Notifier, log logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		notifier:    n,
		log:         log.With("module", "tasks"),
		now:         time.Now,
	}
}

// CreateTask validates the payload, resolves tags and roles, consults the
// policy and then inserts the task and, for self tasks, its marker in one
// serializable transaction.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.TaskDetails, error) {
	start := time.Now()
	in.normalize()

	if missing := in.missing(); len(missing) > 0 {
		return nil, common.NewError(common.ErrorValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}
	if !in.Priority.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Invalid priority")
	}
	if !validID(in.CreatedBy) {
		return nil, common.NewError(common.ErrorValidation, "Invalid id format for createdBy")
	}
	if in.AssignedTo != "" && !validID(in.AssignedTo) {
		return nil, common.NewError(common.ErrorValidation, "Invalid id format for assignedTo")
	}
	if len(in.Tags) < 1 {
		return nil, common.NewError(common.ErrorValidation, "At least one tag is required")
	}

	status, err := s.repomanager.Statuses(s.db).GetByName(ctx, common.DefaultStatusName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "default status missing", "status", common.DefaultStatusName)
			return nil, common.NewError(common.ErrorValidation, "Default status '%s' not found", common.DefaultStatusName)
		}
		return nil, internal(ctx, s.log, "Error creating task", err)
	}

	tagIDs, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error creating task", err)
	}

	accounts := s.repomanager.Accounts(s.db)

	_, actor, err := loadActor(ctx, accounts, in.CreatedBy, "User doesn't exists to create task")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error creating task", err)
	}

	target := policy.Target{IsSelf: in.IsSelf, CreatorID: in.CreatedBy, AssigneeID: in.AssignedTo}
	if in.AssignedTo != "" {
		assignee, err := accounts.GetByID(ctx, in.AssignedTo)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NewError(common.ErrorNotFound, "User doesn't exists to assign task")
			}
			return nil, internal(ctx, s.log, "Error creating task", err)
		}
		target.AssigneeRole = assignee.Role
	}

	action := policy.ActionCreateTask
	if in.IsSelf {
		action = policy.ActionCreateSelfTask
	}
	if d := policy.Authorize(policy.Request{Actor: actor, Action: action, Target: target}); !d.Allowed {
		s.log.Warn(ctx, "task creation denied", "actor_id", actor.ID, "action", string(action), "reason", d.Reason)
		return nil, d.Err()
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		StatusID:    status.ID,
		TagIDs:      tagIDs,
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate,
		CreatedBy:   in.CreatedBy,
		IsSelf:      in.IsSelf,
	}

	err = dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		dup, err := repo.ExistsDuplicate(ctx, task.Title, task.CreatedBy, task.IsSelf)
		if err != nil {
			return err
		}
		if dup {
			return errDuplicateTask
		}

		if task, err = repo.Create(ctx, task); err != nil {
			return err
		}

		if task.IsSelf {
			return s.repomanager.SelfTasks(tx).Create(ctx, &models.SelfTaskMarker{AccountID: task.CreatedBy, TaskID: task.ID})
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errDuplicateTask):
			s.log.Warn(ctx, "duplicate task", "title", in.Title, "created_by", in.CreatedBy, "is_self", in.IsSelf)
			return nil, common.NewError(common.ErrorConflict, "You already have a task with this title")
		case errors.Is(err, common.ErrorConflict):
			s.log.Warn(ctx, "task unique violation", "title", in.Title, "created_by", in.CreatedBy, "error", err)
			return nil, common.NewError(common.ErrorConflict, "Task with same title already exists")
		}
		return nil, internal(ctx, s.log, "Error creating task", err)
	}

	s.log.Info(ctx, "task created", "task_id", task.ID, "is_self", task.IsSelf, "processing_time_ms", elapsedMs(start))
	if task.AssignedTo != "" {
		s.notifier.Notify(ctx, task.AssignedTo, notify.Event{Type: notify.EventTaskAssigned, TaskID: task.ID, Message: task.Title})
	}
	return s.detailsOrTask(ctx, task), nil
}

// resolveTags maps labels to tag ids. Every label must resolve; duplicates
// collapse to one id.
func (s *TaskService) resolveTags(ctx context.Context, labels []string) ([]string, error) {
	repo := s.repomanager.Tags(s.db)

	seen := make(map[string]bool, len(labels))
	ids := make([]string, 0, len(labels))
	for _, l := range labels {
		tag, err := repo.FindByLabel(ctx, l)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NewError(common.ErrorValidation, "One or more tag names are invalid")
			}
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}

// taskFor loads the task and the policy facts about it for actor.
func (s *TaskService) taskFor(ctx context.Context, actor policy.Actor, taskID, notFoundMsg string) (*models.Task, policy.Target, error) {
	repo := s.repomanager.Tasks(s.db)

	task, err := repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, policy.Target{}, common.NewError(common.ErrorNotFound, "%s", notFoundMsg)
		}
		return nil, policy.Target{}, err
	}

	target := policy.Target{
		IsSelf:            task.IsSelf,
		CreatorID:         task.CreatedBy,
		CurrentAssigneeID: task.AssignedTo,
		CurrentStatusID:   task.StatusID,
	}
	if actor.Role == models.RoleManager {
		if target.TaggedWithActorName, err = repo.HasTagLabel(ctx, task.ID, actor.Name); err != nil {
			return nil, policy.Target{}, err
		}
	}
	return task, target, nil
}

// AssignTask moves a task to a new assignee.
func (s *TaskService) AssignTask(ctx context.Context, actorID, taskID, assigneeID string) (*models.TaskDetails, error) {
	start := time.Now()
	if !validID(taskID) {
		return nil, common.NewError(common.ErrorValidation, "Invalid task ID")
	}
	if !validID(assigneeID) {
		return nil, common.NewError(common.ErrorValidation, "Invalid user ID")
	}

	accounts := s.repomanager.Accounts(s.db)

	_, actor, err := loadActor(ctx, accounts, actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error assigning task", err)
	}

	assignee, err := accounts.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "No such user found to assign task")
		}
		return nil, internal(ctx, s.log, "Error assigning task", err)
	}

	task, target, err := s.taskFor(ctx, actor, taskID, "Task not found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error assigning task", err)
	}
	target.AssigneeID = assignee.ID
	target.AssigneeRole = assignee.Role

	if d := policy.Authorize(policy.Request{Actor: actor, Action: policy.ActionAssignTask, Target: target}); !d.Allowed {
		s.log.Warn(ctx, "assignment denied", "actor_id", actor.ID, "task_id", task.ID, "assignee_id", assignee.ID, "reason", d.Reason)
		return nil, d.Err()
	}

	now := s.now()
	if err := s.repomanager.Tasks(s.db).UpdateAssignee(ctx, task.ID, assignee.ID, actor.ID, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "Task not found")
		}
		return nil, internal(ctx, s.log, "Error assigning task", err)
	}
	task.AssignedTo = assignee.ID
	task.UpdatedBy = actor.ID
	task.UpdatedAt = now

	s.log.Info(ctx, "task assigned", "task_id", task.ID, "assignee_id", assignee.ID, "processing_time_ms", elapsedMs(start))
	s.notifier.Notify(ctx, assignee.ID, notify.Event{Type: notify.EventTaskAssigned, TaskID: task.ID, Message: task.Title})
	return s.detailsOrTask(ctx, task), nil
}

// ChangeStatus moves a task to another status. Moving into the completed
// status stamps completed_at; moving out of it clears it.
func (s *TaskService) ChangeStatus(ctx context.Context, actorID, taskID, statusID string) (*models.TaskDetails, error) {
	start := time.Now()
	if !validID(taskID) {
		return nil, common.NewError(common.ErrorValidation, "Invalid task ID")
	}
	if !validID(statusID) {
		return nil, common.NewError(common.ErrorValidation, "Invalid status ID")
	}

	_, actor, err := loadActor(ctx, s.repomanager.Accounts(s.db), actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error changing task status", err)
	}

	task, target, err := s.taskFor(ctx, actor, taskID, "No such task found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error changing task status", err)
	}
	target.NewStatusID = statusID

	if d := policy.Authorize(policy.Request{Actor: actor, Action: policy.ActionChangeStatus, Target: target}); !d.Allowed {
		s.log.Warn(ctx, "status change denied", "actor_id", actor.ID, "task_id", task.ID, "status_id", statusID, "reason", d.Reason)
		return nil, d.Err()
	}

	status, err := s.repomanager.Statuses(s.db).GetByID(ctx, statusID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "No such status found")
		}
		return nil, internal(ctx, s.log, "Error changing task status", err)
	}

	now := s.now()
	var completedAt *time.Time
	if strings.EqualFold(status.Name, common.CompletedStatusName) {
		completedAt = &now
	}

	if err := s.repomanager.Tasks(s.db).UpdateStatus(ctx, task.ID, status.ID, actor.ID, completedAt, now); err != nil {
		switch {
		case errors.Is(err, common.ErrorStateInvalid):
			return nil, common.NewError(common.ErrorStateInvalid, "Cannot update with same status")
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.NewError(common.ErrorNotFound, "No such task found")
		}
		return nil, internal(ctx, s.log, "Error changing task status", err)
	}
	task.StatusID = status.ID
	task.CompletedAt = completedAt
	task.UpdatedBy = actor.ID
	task.UpdatedAt = now

	s.log.Info(ctx, "task status changed", "task_id", task.ID, "status", status.Name, "processing_time_ms", elapsedMs(start))

	ev := notify.Event{Type: notify.EventTaskStatusChanged, TaskID: task.ID, Message: fmt.Sprintf("%s: %s", task.Title, status.Name)}
	for _, id := range []string{task.CreatedBy, task.AssignedTo} {
		if id != "" && id != actor.ID {
			s.notifier.Notify(ctx, id, ev)
		}
	}
	return s.detailsOrTask(ctx, task), nil
}

// FetchScoped lists the non-self tasks visible to the actor's role.
// Soft-deleted tasks are included.
func (s *TaskService) FetchScoped(ctx context.Context, actorID string, q TaskQuery) (*TaskPage, error) {
	_, actor, err := loadActor(ctx, s.repomanager.Accounts(s.db), actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error fetching tasks", err)
	}

	if d := policy.Authorize(policy.Request{Actor: actor, Action: policy.ActionViewTaskScope}); !d.Allowed {
		return nil, d.Err()
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Invalid priority")
	}
	if q.StatusID != "" && !validID(q.StatusID) {
		return nil, common.NewError(common.ErrorValidation, "Invalid status ID")
	}

	limit, offset := page(q.Limit, q.Offset)
	filter := policy.Scope(actor).Apply(models.TaskFilter{
		Title:     strings.TrimSpace(q.Title),
		Priority:  q.Priority,
		StatusID:  q.StatusID,
		DueBefore: q.DueBefore,
		Limit:     limit,
		Offset:    offset,
	})

	tasks, total, err := s.repomanager.Tasks(s.db).List(ctx, filter)
	if err != nil {
		return nil, internal(ctx, s.log, "Error fetching tasks", err)
	}
	return &TaskPage{Tasks: tasks, Total: total, Limit: limit, Offset: offset}, nil
}

// FetchSelfTasks lists the actor's own self tasks through the marker index.
func (s *TaskService) FetchSelfTasks(ctx context.Context, actorID string, limit, offset int) (*TaskPage, error) {
	if !validID(actorID) {
		return nil, common.NewError(common.ErrorUnauthorized, "Missing or invalid user identity")
	}

	limit, offset = page(limit, offset)
	tasks, total, err := s.repomanager.Tasks(s.db).List(ctx, models.TaskFilter{
		IsSelf:    true,
		SelfOwner: actorID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, internal(ctx, s.log, "Something went wrong while fetching the self tasks", err)
	}
	return &TaskPage{Tasks: tasks, Total: total, Limit: limit, Offset: offset}, nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// editable loads actor and task and checks that actor participates in it.
func (s *TaskService) editable(ctx context.Context, actorID, taskID string) (policy.Actor, *models.Task, error) {
	if !validID(taskID) {
		return policy.Actor{}, nil, common.NewError(common.ErrorValidation, "Invalid task ID")
	}

	_, actor, err := loadActor(ctx, s.repomanager.Accounts(s.db), actorID, "No such user found")
	if err != nil {
		return policy.Actor{}, nil, err
	}

	task, target, err := s.taskFor(ctx, actor, taskID, "No such task found")
	if err != nil {
		return policy.Actor{}, nil, err
	}

	if d := policy.Authorize(policy.Request{Actor: actor, Action: policy.ActionEditTask, Target: target}); !d.Allowed {
		return policy.Actor{}, nil, d.Err()
	}
	return actor, task, nil
}

// AddTag links an existing tag to the task; CONFLICT if already linked.
func (s *TaskService) AddTag(ctx context.Context, actorID, taskID, tagID string) error {
	return s.changeTag(ctx, actorID, taskID, tagID, true)
}

// RemoveTag unlinks a tag from the task; CONFLICT if it was not linked.
func (s *TaskService) RemoveTag(ctx context.Context, actorID, taskID, tagID string) error {
	return s.changeTag(ctx, actorID, taskID, tagID, false)
}

func (s *TaskService) changeTag(ctx context.Context, actorID, taskID, tagID string, add bool) error {
	verb := "removing"
	if add {
		verb = "adding"
	}
	failMsg := fmt.Sprintf("Something went wrong while %s the tag", verb)

	if !validID(tagID) {
		return common.NewError(common.ErrorValidation, "Invalid tag ID")
	}

	_, task, err := s.editable(ctx, actorID, taskID)
	if err != nil {
		if isUserError(err) {
			return err
		}
		return internal(ctx, s.log, failMsg, err)
	}

	if _, err := s.repomanager.Tags(s.db).GetByID(ctx, tagID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "No such tag found")
		}
		return internal(ctx, s.log, failMsg, err)
	}

	repo := s.repomanager.Tasks(s.db)
	if add {
		ok, err := repo.AddTag(ctx, task.ID, tagID)
		if err != nil {
			return internal(ctx, s.log, failMsg, err)
		}
		if !ok {
			return common.NewError(common.ErrorConflict, "Tag already exists in the task")
		}
	} else {
		ok, err := repo.RemoveTag(ctx, task.ID, tagID)
		if err != nil {
			return internal(ctx, s.log, failMsg, err)
		}
		if !ok {
			return common.NewError(common.ErrorConflict, "Tag does not exist in the task")
		}
	}

	s.log.Info(ctx, "task tags changed", "task_id", task.ID, "tag_id", tagID, "add", add)
	return nil
}

// AddComment appends a comment by the actor.
func (s *TaskService) AddComment(ctx context.Context, actorID, taskID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if err := validation.Validate(text, validation.Required, validation.Length(1, 1000)); err != nil {
		return nil, common.NewError(common.ErrorValidation, "comment: %s", err.Error())
	}

	actor, task, err := s.editable(ctx, actorID, taskID)
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Something went wrong while adding the comment", err)
	}

	c, err := s.repomanager.Tasks(s.db).AddComment(ctx, &models.Comment{TaskID: task.ID, AuthorID: actor.ID, Text: text})
	if err != nil {
		return nil, internal(ctx, s.log, "Something went wrong while adding the comment", err)
	}

	s.log.Info(ctx, "comment added", "task_id", task.ID, "comment_id", c.ID)
	return c, nil
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (s *TaskService) DeleteComment(ctx context.Context, actorID, taskID, commentID string) error {
	if !validID(taskID) || !validID(commentID) {
		return common.NewError(common.ErrorValidation, "Invalid task or comment ID")
	}

	_, actor, err := loadActor(ctx, s.repomanager.Accounts(s.db), actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return err
		}
		return internal(ctx, s.log, "Something went wrong while deleting the comment", err)
	}

	repo := s.repomanager.Tasks(s.db)
	if _, err := repo.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "No such task found")
		}
		return internal(ctx, s.log, "Something went wrong while deleting the comment", err)
	}

	c, err := repo.GetComment(ctx, taskID, commentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "No such comment found in the task")
		}
		return internal(ctx, s.log, "Something went wrong while deleting the comment", err)
	}
	if c.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
		return common.NewError(common.ErrorAuthorization, "You can only delete your own comments")
	}

	if err := repo.DeleteComment(ctx, taskID, commentID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "No such comment found in the task")
		}
		return internal(ctx, s.log, "Something went wrong while deleting the comment", err)
	}

	s.log.Info(ctx, "comment deleted", "task_id", taskID, "comment_id", commentID)
	return nil
}

// detailsOrTask resolves display references after a committed write. A
// failure here does not undo the write, so the bare task is returned.
func (s *TaskService) detailsOrTask(ctx context.Context, task *models.Task) *models.TaskDetails {
	d, err := s.details(ctx, task)
	if err != nil {
		s.log.Warn(ctx, "error resolving task details", "task_id", task.ID, "error", err)
		return &models.TaskDetails{Task: *task}
	}
	return d
}

func (s *TaskService) details(ctx context.Context, task *models.Task) (*models.TaskDetails, error) {
	d := &models.TaskDetails{Task: *task}

	status, err := s.repomanager.Statuses(s.db).GetByID(ctx, task.StatusID)
	if err != nil {
		return nil, err
	}
	d.Status = status

	if d.Tags, err = s.repomanager.Tags(s.db).ListByIDs(ctx, task.TagIDs); err != nil {
		return nil, err
	}

	accounts := s.repomanager.Accounts(s.db)
	creator, err := accounts.GetByID(ctx, task.CreatedBy)
	if err != nil {
		return nil, err
	}
	d.Creator = creator.Ref()

	if task.AssignedTo != "" {
		assignee, err := accounts.GetByID(ctx, task.AssignedTo)
		if err != nil {
			return nil, err
		}
		d.Assignee = assignee.Ref()
	}

	if d.Comments, err = s.repomanager.Tasks(s.db).ListComments(ctx, task.ID); err != nil {
		return nil, err
	}
	return d, nil
}
