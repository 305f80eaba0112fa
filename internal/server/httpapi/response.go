package httpapi

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/gofiber/fiber/v2"
)

// Response codes carried in the envelope.
const (
	CodeLoginSuccess        = "LOGIN_SUCCESS"
	CodeSuccess             = "SUCCESS"
	CodeCreated             = "CREATED"
	CodeNoCredentials       = "NO_CREDENTIALS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInactive            = "INACTIVE"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	CodeServerError         = "SERVER_ERROR"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

const genericFailure = "Something went wrong. Please try again later"

// Envelope is the body of every API response.
type Envelope struct {
	Code    string `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// apiError is a service error resolved to its HTTP form.
type apiError struct {
	Status  int
	Code    string
	Message string
}

// resolveError maps the service error taxonomy onto status codes. Anything
// unrecognized is an internal error and its text is never exposed.
func resolveError(err error) apiError {
	switch {
	case errors.Is(err, common.ErrNoCredentials):
		return apiError{fiber.StatusBadRequest, CodeNoCredentials, "Email and password are required"}
	case errors.Is(err, common.ErrInvalidCredentials):
		return apiError{fiber.StatusBadRequest, CodeInvalidCredentials, "Incorrect email or password"}
	case errors.Is(err, common.ErrInactive):
		return apiError{fiber.StatusForbidden, CodeInactive, "Your account is not active"}
	case errors.Is(err, common.ErrInvalidToken):
		return apiError{fiber.StatusUnauthorized, CodeUnauthorized, "Session expired or invalid"}
	}

	var rl *common.RateLimitError
	if errors.As(err, &rl) {
		return apiError{fiber.StatusTooManyRequests, CodeTooManyRequests,
			fmt.Sprintf("You already have an active link. Try after %d minutes", rl.WaitMinutes())}
	}

	var e *common.Error
	if !errors.As(err, &e) {
		return apiError{fiber.StatusInternalServerError, CodeInternalServerError, genericFailure}
	}

	switch {
	case errors.Is(e, common.ErrorValidation):
		return apiError{fiber.StatusBadRequest, CodeBadRequest, e.Message}
	case errors.Is(e, common.ErrorNotFound):
		return apiError{fiber.StatusNotFound, CodeNotFound, e.Message}
	case errors.Is(e, common.ErrorAuthorization):
		return apiError{fiber.StatusForbidden, CodeForbidden, e.Message}
	case errors.Is(e, common.ErrorUnauthorized):
		return apiError{fiber.StatusUnauthorized, CodeUnauthorized, e.Message}
	case errors.Is(e, common.ErrorConflict):
		return apiError{fiber.StatusConflict, CodeConflict, e.Message}
	case errors.Is(e, common.ErrorStateInvalid):
		return apiError{fiber.StatusUnprocessableEntity, CodeUnprocessableEntity, e.Message}
	case errors.Is(e, common.ErrorInternal):
		return apiError{fiber.StatusInternalServerError, CodeInternalServerError, e.Message}
	}
	return apiError{fiber.StatusInternalServerError, CodeInternalServerError, genericFailure}
}

func respond(c *fiber.Ctx, status int, code, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Code:    code,
		Success: status < fiber.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

func fail(c *fiber.Ctx, err error) error {
	e := resolveError(err)
	return respond(c, e.Status, e.Code, e.Message, nil)
}

func badRequest(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusBadRequest, CodeBadRequest, message, nil)
}

// errorHandler renders errors that escape handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeBadRequest
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusUnauthorized:
			code = CodeUnauthorized
		default:
			if fe.Code >= fiber.StatusInternalServerError {
				code = CodeInternalServerError
			}
		}
		return respond(c, fe.Code, code, fe.Message, nil)
	}
	return fail(c, err)
}
