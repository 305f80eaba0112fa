package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type createTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     string          `json:"dueDate"`
	Tags        []string        `json:"tags"`
	IsSelf      bool            `json:"isSelf"`
	AssignedTo  string          `json:"assignedTo"`
}

func (s *Server) createTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
		CreatedBy:   actorID(c),
		IsSelf:      req.IsSelf,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != "" {
		due, ok := parseDate(req.DueDate)
		if !ok {
			return badRequest(c, "Invalid due date")
		}
		in.DueDate = due
	}

	d, err := s.svc.Tasks.CreateTask(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, CodeCreated, "Task created successfully", toTaskDetails(d))
}

func (s *Server) fetchTasks(c *fiber.Ctx) error {
	q := services.TaskQuery{
		Title:    c.Query("title"),
		Priority: models.Priority(strings.ToLower(c.Query("priority"))),
		StatusID: c.Query("status"),
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}
	if v := c.Query("dueBefore"); v != "" {
		due, ok := parseDate(v)
		if !ok {
			return badRequest(c, "Invalid due date")
		}
		q.DueBefore = &due
	}

	page, err := s.svc.Tasks.FetchScoped(c.UserContext(), actorID(c), q)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Tasks fetched successfully", toTaskPage(page))
}

func (s *Server) fetchSelfTasks(c *fiber.Ctx) error {
	page, err := s.svc.Tasks.FetchSelfTasks(c.UserContext(), actorID(c), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Self tasks fetched successfully", toTaskPage(page))
}

type assignTaskRequest struct {
	TaskID string `json:"taskId"`
	UserID string `json:"userId"`
}

func (s *Server) assignTask(c *fiber.Ctx) error {
	var req assignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.svc.Tasks.AssignTask(c.UserContext(), actorID(c), req.TaskID, req.UserID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Task assigned successfully", toTaskDetails(d))
}

type changeStatusRequest struct {
	TaskID   string `json:"taskId"`
	StatusID string `json:"statusId"`
}

func (s *Server) changeStatus(c *fiber.Ctx) error {
	var req changeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.svc.Tasks.ChangeStatus(c.UserContext(), actorID(c), req.TaskID, req.StatusID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Task status updated successfully", toTaskDetails(d))
}

type taskTagRequest struct {
	TaskID    string `json:"taskId"`
	TagID     string `json:"tagId"`
	Operation string `json:"operation"`
}

func (s *Server) changeTaskTag(c *fiber.Ctx) error {
	var req taskTagRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var err error
	switch strings.ToLower(req.Operation) {
	case "add":
		err = s.svc.Tasks.AddTag(c.UserContext(), actorID(c), req.TaskID, req.TagID)
	case "remove":
		err = s.svc.Tasks.RemoveTag(c.UserContext(), actorID(c), req.TaskID, req.TagID)
	default:
		return badRequest(c, "Invalid operation")
	}
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Task tags updated successfully", nil)
}

type addCommentRequest struct {
	TaskID string `json:"taskId"`
	Text   string `json:"text"`
}

func (s *Server) addComment(c *fiber.Ctx) error {
	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cm, err := s.svc.Tasks.AddComment(c.UserContext(), actorID(c), req.TaskID, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, CodeCreated, "Comment added successfully", toComment(cm))
}

func (s *Server) deleteComment(c *fiber.Ctx) error {
	err := s.svc.Tasks.DeleteComment(c.UserContext(), actorID(c), c.Params("taskId"), c.Params("commentId"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Comment deleted successfully", nil)
}
