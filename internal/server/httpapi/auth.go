package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Account   accountJSON `json:"user"`
	ExpiresIn int         `json:"expiresIn"`
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, CodeNoCredentials, "Email and password are required", nil)
	}

	sess, err := s.svc.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		e := resolveError(err)
		if e.Code == CodeInternalServerError {
			e.Code = CodeServerError
		}
		return respond(c, e.Status, e.Code, e.Message, nil)
	}

	s.setSessionCookie(c, sess.Token, s.svc.Auth.SessionTTL())
	return respond(c, fiber.StatusOK, CodeLoginSuccess, "Login successful", loginResponse{
		Account:   toAccount(sess.Account),
		ExpiresIn: int(sess.ExpiresIn.Seconds()),
	})
}

func (s *Server) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return respond(c, fiber.StatusOK, CodeSuccess, "Logged out", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) forgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Email is required.")
	}
	if err := s.svc.Tokens.RequestReset(c.UserContext(), req.Email); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Password reset link sent to your email", nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "All inputs are required")
	}
	if _, err := s.svc.Tokens.RedeemToken(c.UserContext(), req.Token, req.Password); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "Password updated successfully", nil)
}
