package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type createStatusRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) createStatus(c *fiber.Ctx) error {
	var req createStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "All fields are required")
	}

	st, err := s.svc.Reference.CreateStatus(c.UserContext(), actorID(c), req.Name, req.Color)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, CodeCreated, "Status created successfully", toStatus(st))
}

func (s *Server) listStatuses(c *fiber.Ctx) error {
	list, err := s.svc.Reference.ListStatuses(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	out := make([]*statusJSON, 0, len(list))
	for i := range list {
		out = append(out, toStatus(&list[i]))
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Statuses fetched", out)
}

func (s *Server) createTag(c *fiber.Ctx) error {
	var in services.TagInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tag, err := s.svc.Reference.CreateTag(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, CodeCreated, "Tag created successfully", toTags([]models.Tag{*tag})[0])
}

func (s *Server) listTags(c *fiber.Ctx) error {
	typ := models.TagType(strings.ToLower(c.Query("type")))
	list, err := s.svc.Reference.ListTags(c.UserContext(), typ)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Tags fetched", toTags(list))
}

type presenceRequest struct {
	ConnectionID string `json:"connectionId"`
}

// registerPresence records the caller's notification connection.
func (s *Server) registerPresence(c *fiber.Ctx) error {
	var req presenceRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.ConnectionID) == "" {
		return badRequest(c, "Connection ID is required")
	}
	if err := s.svc.Presence.Register(c.UserContext(), actorID(c), strings.TrimSpace(req.ConnectionID)); err != nil {
		s.log.Error(c.UserContext(), "presence register failed", "actor_id", actorID(c), "error", err)
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Connected", nil)
}

func (s *Server) unregisterPresence(c *fiber.Ctx) error {
	if err := s.svc.Presence.Unregister(c.UserContext(), actorID(c)); err != nil {
		s.log.Error(c.UserContext(), "presence unregister failed", "actor_id", actorID(c), "error", err)
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Disconnected", nil)
}
