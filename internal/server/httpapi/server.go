// Package httpapi is the fiber adapter in front of the services. It decodes
// requests, resolves the session, calls a service and renders the uniform
// {code, success, message, data} envelope.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/auth"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.Session, error)
	ParseSession(token string) (*auth.Claims, error)
	SessionTTL() time.Duration
}

type TokenService interface {
	RequestReset(ctx context.Context, email string) error
	RedeemToken(ctx context.Context, plain, newPassword string) (string, error)
}

type AccountService interface {
	CreateAccount(ctx context.Context, in services.CreateAccountInput) (*models.Account, error)
	SetActive(ctx context.Context, actorID, accountID string, active bool) (*models.Account, error)
	ListByManager(ctx context.Context, actorID, managerID string, limit, offset int) ([]models.Account, int, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, in services.CreateTaskInput) (*models.TaskDetails, error)
	AssignTask(ctx context.Context, actorID, taskID, assigneeID string) (*models.TaskDetails, error)
	ChangeStatus(ctx context.Context, actorID, taskID, statusID string) (*models.TaskDetails, error)
	FetchScoped(ctx context.Context, actorID string, q services.TaskQuery) (*services.TaskPage, error)
	FetchSelfTasks(ctx context.Context, actorID string, limit, offset int) (*services.TaskPage, error)
	AddTag(ctx context.Context, actorID, taskID, tagID string) error
	RemoveTag(ctx context.Context, actorID, taskID, tagID string) error
	AddComment(ctx context.Context, actorID, taskID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actorID, taskID, commentID string) error
}

type ReferenceService interface {
	CreateStatus(ctx context.Context, actorID, name, color string) (*models.Status, error)
	ListStatuses(ctx context.Context) ([]models.Status, error)
	CreateTag(ctx context.Context, in services.TagInput) (*models.Tag, error)
	ListTags(ctx context.Context, typ models.TagType) ([]models.Tag, error)
}

// PresenceRegistry records where an account receives notifications.
type PresenceRegistry interface {
	Register(ctx context.Context, accountID, connectionID string) error
	Unregister(ctx context.Context, accountID string) error
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles the collaborators the handlers call.
type Services struct {
	Auth      AuthService
	Tokens    TokenService
	Accounts  AccountService
	Tasks     TaskService
	Reference ReferenceService
	Presence  PresenceRegistry
	DB        Pinger
}

type Server struct {
	address      string
	app          *fiber.App
	svc          Services
	log          logging.Logger
	cookieSecure bool
}

func NewServer(address string, svc Services, cookieSecure bool, log logging.Logger) *Server {
	s := &Server{
		address:      address,
		svc:          svc,
		log:          log.With("module", "http_server"),
		cookieSecure: cookieSecure,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "tasktracker",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})
	s.routes()
	return s
}

// App exposes the fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger)
	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api/v1")

	a := api.Group("/auth")
	a.Post("/login", s.login)
	a.Post("/logout", s.logout)
	a.Post("/forgot-password", s.forgotPassword)
	a.Post("/reset-password", s.resetPassword)

	api.Post("/users", s.optionalSession, s.createAccount)
	api.Patch("/users/:id/status", s.requireSession, s.setAccountStatus)
	api.Get("/users/by-manager/:id", s.requireSession, s.listByManager)

	t := api.Group("/tasks", s.requireSession)
	t.Post("/", s.createTask)
	t.Get("/", s.fetchTasks)
	t.Get("/self", s.fetchSelfTasks)
	t.Post("/assign", s.assignTask)
	t.Post("/status", s.changeStatus)
	t.Post("/tags", s.changeTaskTag)
	t.Post("/comments", s.addComment)
	t.Delete("/:taskId/comments/:commentId", s.deleteComment)

	api.Post("/statuses", s.requireSession, s.createStatus)
	api.Get("/statuses", s.requireSession, s.listStatuses)
	api.Post("/tags", s.requireSession, s.createTag)
	api.Get("/tags", s.requireSession, s.listTags)

	api.Put("/presence", s.requireSession, s.registerPresence)
	api.Delete("/presence", s.requireSession, s.unregisterPresence)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "Starting HTTP server", "address", s.address)
		errc <- s.app.Listen(s.address)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.svc.DB != nil {
		if err := s.svc.DB.PingContext(c.UserContext()); err != nil {
			s.log.Warn(c.UserContext(), "health check failed", "error", err)
			return respond(c, fiber.StatusServiceUnavailable, CodeInternalServerError, "Database unavailable", nil)
		}
	}
	return respond(c, fiber.StatusOK, CodeSuccess, "OK", nil)
}
