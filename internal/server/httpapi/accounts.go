package httpapi

import (
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// createAccount takes the creator from the session when one is present;
// otherwise from the body, which is how the first admin is created.
func (s *Server) createAccount(c *fiber.Ctx) error {
	var in services.CreateAccountInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if id := actorID(c); id != "" {
		in.CreatedBy = id
	}

	acc, err := s.svc.Accounts.CreateAccount(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, CodeCreated, "User created successfully", toAccount(acc))
}

type accountStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (s *Server) setAccountStatus(c *fiber.Ctx) error {
	var req accountStatusRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "User ID and status are required")
	}

	acc, err := s.svc.Accounts.SetActive(c.UserContext(), actorID(c), c.Params("id"), *req.IsActive)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "User status updated", toAccount(acc))
}

func (s *Server) listByManager(c *fiber.Ctx) error {
	list, total, err := s.svc.Accounts.ListByManager(c.UserContext(), actorID(c), c.Params("id"),
		c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return fail(c, err)
	}

	items := make([]accountJSON, 0, len(list))
	for i := range list {
		items = append(items, toAccount(&list[i]))
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Users fetched", pageJSON{
		Items:      items,
		TotalCount: total,
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
	})
}
