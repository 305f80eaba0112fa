package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookie = "token"
	claimsKey     = "claims"
)

// sessionToken reads the session cookie, falling back to a bearer header.
func sessionToken(c *fiber.Ctx) string {
	if tok := c.Cookies(sessionCookie); tok != "" {
		return tok
	}
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) requireSession(c *fiber.Ctx) error {
	tok := sessionToken(c)
	if tok == "" {
		return respond(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated", nil)
	}
	claims, err := s.svc.Auth.ParseSession(tok)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(claimsKey, claims)
	return c.Next()
}

// optionalSession attaches the session when a valid one is presented and
// otherwise lets the request through anonymously.
func (s *Server) optionalSession(c *fiber.Ctx) error {
	if tok := sessionToken(c); tok != "" {
		if claims, err := s.svc.Auth.ParseSession(tok); err == nil {
			c.Locals(claimsKey, claims)
		}
	}
	return c.Next()
}

// session returns the claims attached by the middleware, or nil.
func session(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}

func actorID(c *fiber.Ctx) string {
	if claims := session(c); claims != nil {
		return claims.AccountID
	}
	return ""
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Render now so the logged status is the one sent.
		if herr := errorHandler(c, err); herr != nil {
			return herr
		}
	}
	s.log.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"actor_id", actorID(c),
		"processing_time_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
