package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/auth"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	adminToken = "admin-session"
	execToken  = "exec-session"
	adminID    = "5b3a3d52-7a0f-4d8e-9a57-2f3f3c1b6a01"
	execID     = "5b3a3d52-7a0f-4d8e-9a57-2f3f3c1b6a02"
)

type fakeAuth struct {
	login func(email, password string) (*services.Session, error)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.Session, error) {
	return f.login(email, password)
}

func (f *fakeAuth) ParseSession(token string) (*auth.Claims, error) {
	switch token {
	case adminToken:
		return &auth.Claims{AccountID: adminID, Role: models.RoleAdmin}, nil
	case execToken:
		return &auth.Claims{AccountID: execID, Role: models.RoleExecutor}, nil
	}
	return nil, common.ErrInvalidToken
}

func (f *fakeAuth) SessionTTL() time.Duration { return time.Hour }

type fakeTokens struct {
	resetErr  error
	redeemErr error
	email     string
}

func (f *fakeTokens) RequestReset(ctx context.Context, email string) error {
	f.email = email
	return f.resetErr
}

func (f *fakeTokens) RedeemToken(ctx context.Context, plain, newPassword string) (string, error) {
	return execID, f.redeemErr
}

type fakeAccounts struct {
	in  services.CreateAccountInput
	err error
}

func (f *fakeAccounts) CreateAccount(ctx context.Context, in services.CreateAccountInput) (*models.Account, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Account{ID: "new", Name: in.Name, Email: in.Email, Role: in.Role, IsActive: true, CreatedBy: in.CreatedBy}, nil
}

func (f *fakeAccounts) SetActive(ctx context.Context, actorID, accountID string, active bool) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Account{ID: accountID, IsActive: active}, nil
}

func (f *fakeAccounts) ListByManager(ctx context.Context, actorID, managerID string, limit, offset int) ([]models.Account, int, error) {
	return []models.Account{{ID: "e1", CreatedBy: managerID}}, 1, f.err
}

type fakeTasks struct {
	in      services.CreateTaskInput
	query   services.TaskQuery
	actor   string
	tagOp   string
	err     error
	details *models.TaskDetails
}

func (f *fakeTasks) result() (*models.TaskDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.details != nil {
		return f.details, nil
	}
	return &models.TaskDetails{Task: models.Task{ID: "t1", Title: "T"}}, nil
}

func (f *fakeTasks) CreateTask(ctx context.Context, in services.CreateTaskInput) (*models.TaskDetails, error) {
	f.in = in
	return f.result()
}

func (f *fakeTasks) AssignTask(ctx context.Context, actorID, taskID, assigneeID string) (*models.TaskDetails, error) {
	f.actor = actorID
	return f.result()
}

func (f *fakeTasks) ChangeStatus(ctx context.Context, actorID, taskID, statusID string) (*models.TaskDetails, error) {
	f.actor = actorID
	return f.result()
}

func (f *fakeTasks) FetchScoped(ctx context.Context, actorID string, q services.TaskQuery) (*services.TaskPage, error) {
	f.actor, f.query = actorID, q
	if f.err != nil {
		return nil, f.err
	}
	return &services.TaskPage{Tasks: []models.Task{{ID: "t1"}}, Total: 1, Limit: 20}, nil
}

func (f *fakeTasks) FetchSelfTasks(ctx context.Context, actorID string, limit, offset int) (*services.TaskPage, error) {
	f.actor = actorID
	return &services.TaskPage{Limit: limit, Offset: offset}, f.err
}

func (f *fakeTasks) AddTag(ctx context.Context, actorID, taskID, tagID string) error {
	f.tagOp = "add"
	return f.err
}

func (f *fakeTasks) RemoveTag(ctx context.Context, actorID, taskID, tagID string) error {
	f.tagOp = "remove"
	return f.err
}

func (f *fakeTasks) AddComment(ctx context.Context, actorID, taskID, text string) (*models.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: "c1", TaskID: taskID, AuthorID: actorID, Text: text}, nil
}

func (f *fakeTasks) DeleteComment(ctx context.Context, actorID, taskID, commentID string) error {
	f.actor = actorID
	return f.err
}

type fakeReference struct {
	err error
}

func (f *fakeReference) CreateStatus(ctx context.Context, actorID, name, color string) (*models.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Status{ID: "s1", Name: name, Color: color}, nil
}

func (f *fakeReference) ListStatuses(ctx context.Context) ([]models.Status, error) {
	return []models.Status{{ID: "s1", Name: "New"}}, f.err
}

func (f *fakeReference) CreateTag(ctx context.Context, in services.TagInput) (*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Tag{ID: "g1", Label: in.Label, Type: in.Type}, nil
}

func (f *fakeReference) ListTags(ctx context.Context, typ models.TagType) ([]models.Tag, error) {
	return []models.Tag{}, f.err
}

type fakePresence struct {
	registered map[string]string
}

func (f *fakePresence) Register(ctx context.Context, accountID, connectionID string) error {
	f.registered[accountID] = connectionID
	return nil
}

func (f *fakePresence) Unregister(ctx context.Context, accountID string) error {
	delete(f.registered, accountID)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type testEnv struct {
	srv       *Server
	auth      *fakeAuth
	tokens    *fakeTokens
	accounts  *fakeAccounts
	tasks     *fakeTasks
	reference *fakeReference
	presence  *fakePresence
}

func newTestEnv() *testEnv {
	e := &testEnv{
		auth:      &fakeAuth{},
		tokens:    &fakeTokens{},
		accounts:  &fakeAccounts{},
		tasks:     &fakeTasks{},
		reference: &fakeReference{},
		presence:  &fakePresence{registered: map[string]string{}},
	}
	e.srv = NewServer("127.0.0.1:0", Services{
		Auth:      e.auth,
		Tokens:    e.tokens,
		Accounts:  e.accounts,
		Tasks:     e.tasks,
		Reference: e.reference,
		Presence:  e.presence,
		DB:        fakePinger{},
	}, true, logging.Nop())
	return e
}

// do sends a request with an optional JSON body and session cookie.
func (e *testEnv) do(t *testing.T, method, path, body, token string) (*http.Response, Envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}

	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}
