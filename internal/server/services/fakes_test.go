package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/mailer"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/notify"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/presence"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/selftasks"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/statuses"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/tags"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// --- accounts ---

type fakeAccounts struct {
	mu     sync.Mutex
	byID   map[string]*models.Account
	getErr error
}

func (f *fakeAccounts) add(a *models.Account) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.byID[a.ID] = a
	return a
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if strings.EqualFold(x.Email, a.Email) || x.Mobile == a.Mobile {
			return nil, common.ErrorConflict
		}
	}
	cp := *a
	cp.ID = uuid.NewString()
	cp.CreatedAt = testNow
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) find(match func(*models.Account) bool) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byID {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (f *fakeAccounts) GetByMobile(ctx context.Context, mobile string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.Mobile == mobile })
}

func (f *fakeAccounts) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.IsActive = active
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) ListByCreator(ctx context.Context, creatorID string, role models.Role, limit, offset int) ([]models.Account, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Account{}
	for _, a := range f.byID {
		if a.CreatedBy == creatorID && a.Role == role {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeAccounts) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

// --- credentials ---

type fakeCredentials struct {
	mu        sync.Mutex
	byAccount map[string]*models.Credential
	storeErr  error
}

func (f *fakeCredentials) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byAccount[c.AccountID]; ok {
		return nil, common.ErrorConflict
	}
	cp := *c
	cp.ID = uuid.NewString()
	f.byAccount[c.AccountID] = &cp
	return &cp, nil
}

func (f *fakeCredentials) GetByAccountID(ctx context.Context, accountID string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byAccount[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCredentials) StoreToken(ctx context.Context, accountID, digest string, expiresAt, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return false, f.storeErr
	}
	c, ok := f.byAccount[accountID]
	if !ok {
		return false, nil
	}
	if c.ResetTokenExpiration != nil && c.ResetTokenExpiration.After(now) {
		return false, nil
	}
	c.ResetTokenHash = digest
	exp := expiresAt
	c.ResetTokenExpiration = &exp
	return true, nil
}

func (f *fakeCredentials) Redeem(ctx context.Context, digest, passwordHash string, now time.Time) (string, models.CredentialStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byAccount {
		if c.ResetTokenHash == digest && c.ResetTokenExpiration != nil && c.ResetTokenExpiration.After(now) {
			prev := c.Status
			c.PasswordHash = passwordHash
			c.ResetTokenHash = ""
			c.ResetTokenExpiration = nil
			if c.Status == models.CredentialPending {
				c.Status = models.CredentialActive
			}
			return c.AccountID, prev, nil
		}
	}
	return "", "", common.ErrorNotFound
}

func (f *fakeCredentials) RecordLogin(ctx context.Context, accountID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.byAccount[accountID]
	t := at
	c.LastLogin = &t
	c.LoginAttempts = 0
	return nil
}

func (f *fakeCredentials) RecordFailedLogin(ctx context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byAccount[accountID].LoginAttempts++
	return nil
}

func (f *fakeCredentials) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.byAccount {
		if c.ResetTokenExpiration != nil && !c.ResetTokenExpiration.After(now) {
			c.ResetTokenHash = ""
			c.ResetTokenExpiration = nil
			n++
		}
	}
	return n, nil
}

// --- tasks ---

type fakeTasks struct {
	mu         sync.Mutex
	byID       map[string]*models.Task
	comments   map[string]*models.Comment
	labels     map[string][]string // task id -> tag labels
	createErr  error
	lastFilter models.TaskFilter
}

func (f *fakeTasks) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *t
	cp.ID = uuid.NewString()
	cp.IsActive = true
	cp.CreatedAt = testNow
	cp.UpdatedAt = testNow
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeTasks) GetByID(ctx context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) ExistsDuplicate(ctx context.Context, title, createdBy string, isSelf bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if t.Title == title && t.CreatedBy == createdBy && t.IsSelf == isSelf && !t.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTasks) HasTagLabel(ctx context.Context, taskID, label string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.labels[taskID] {
		if strings.EqualFold(l, label) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTasks) UpdateAssignee(ctx context.Context, id, assigneeID, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	t.AssignedTo, t.UpdatedBy, t.UpdatedAt = assigneeID, updatedBy, now
	return nil
}

func (f *fakeTasks) UpdateStatus(ctx context.Context, id, statusID, updatedBy string, completedAt *time.Time, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if t.StatusID == statusID {
		return common.ErrorStateInvalid
	}
	t.StatusID, t.UpdatedBy, t.UpdatedAt, t.CompletedAt = statusID, updatedBy, now, completedAt
	return nil
}

func (f *fakeTasks) AddTag(ctx context.Context, taskID, tagID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.byID[taskID]
	for _, id := range t.TagIDs {
		if id == tagID {
			return false, nil
		}
	}
	t.TagIDs = append(t.TagIDs, tagID)
	return true, nil
}

func (f *fakeTasks) RemoveTag(ctx context.Context, taskID, tagID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.byID[taskID]
	for i, id := range t.TagIDs {
		if id == tagID {
			t.TagIDs = append(t.TagIDs[:i], t.TagIDs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTasks) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := []models.Task{}
	for _, t := range f.byID {
		if t.IsSelf == filter.IsSelf {
			out = append(out, *t)
		}
	}
	return out, len(out), nil
}

func (f *fakeTasks) AddComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	cp.ID = uuid.NewString()
	cp.CreatedAt = testNow
	f.comments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeTasks) GetComment(ctx context.Context, taskID, commentID string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[commentID]
	if !ok || c.TaskID != taskID {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeTasks) DeleteComment(ctx context.Context, taskID, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[commentID]
	if !ok || c.TaskID != taskID {
		return common.ErrorNotFound
	}
	delete(f.comments, commentID)
	return nil
}

func (f *fakeTasks) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// --- self tasks ---

type fakeSelfTasks struct {
	mu        sync.Mutex
	markers   []models.SelfTaskMarker
	createErr error
}

func (f *fakeSelfTasks) Create(ctx context.Context, m *models.SelfTaskMarker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.markers = append(f.markers, *m)
	return nil
}

func (f *fakeSelfTasks) Exists(ctx context.Context, accountID, taskID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.markers {
		if m.AccountID == accountID && m.TaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSelfTasks) CountByAccount(ctx context.Context, accountID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.markers {
		if m.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// --- tags ---

type fakeTags struct {
	mu   sync.Mutex
	byID map[string]*models.Tag
}

func (f *fakeTags) add(label string, typ models.TagType) *models.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &models.Tag{ID: uuid.NewString(), Label: label, Color: defaultColor, Type: typ}
	f.byID[t.ID] = t
	return t
}

func (f *fakeTags) Create(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	cp.ID = uuid.NewString()
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeTags) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTags) FindByLabel(ctx context.Context, label string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if strings.EqualFold(t.Label, label) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTags) FindByLabelAndType(ctx context.Context, label string, typ models.TagType) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if strings.EqualFold(t.Label, label) && t.Type == typ {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTags) ListByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Tag{}
	for _, id := range ids {
		if t, ok := f.byID[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTags) List(ctx context.Context, typ models.TagType) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Tag{}
	for _, t := range f.byID {
		if typ == "" || t.Type == typ {
			out = append(out, *t)
		}
	}
	return out, nil
}

// --- statuses ---

type fakeStatuses struct {
	mu   sync.Mutex
	byID map[string]*models.Status
}

func (f *fakeStatuses) add(name string) *models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.Status{ID: uuid.NewString(), Name: name, Color: defaultColor}
	f.byID[s.ID] = s
	return s
}

func (f *fakeStatuses) Create(ctx context.Context, s *models.Status) (*models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Name == s.Name {
			return nil, common.ErrorConflict
		}
	}
	cp := *s
	cp.ID = uuid.NewString()
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeStatuses) GetByID(ctx context.Context, id string) (*models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStatuses) GetByName(ctx context.Context, name string) (*models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStatuses) List(ctx context.Context) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Status{}
	for _, s := range f.byID {
		out = append(out, *s)
	}
	return out, nil
}

// --- manager ---

type fakeRepoManager struct {
	accounts    *fakeAccounts
	credentials *fakeCredentials
	tasks       *fakeTasks
	selfTasks   *fakeSelfTasks
	tags        *fakeTags
	statuses    *fakeStatuses
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts:    &fakeAccounts{byID: map[string]*models.Account{}},
		credentials: &fakeCredentials{byAccount: map[string]*models.Credential{}},
		tasks: &fakeTasks{
			byID:     map[string]*models.Task{},
			comments: map[string]*models.Comment{},
			labels:   map[string][]string{},
		},
		selfTasks: &fakeSelfTasks{},
		tags:      &fakeTags{byID: map[string]*models.Tag{}},
		statuses:  &fakeStatuses{byID: map[string]*models.Status{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository       { return m.accounts }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository { return m.credentials }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository             { return m.tasks }
func (m *fakeRepoManager) SelfTasks(db dbx.DBTX) selftasks.Repository     { return m.selfTasks }
func (m *fakeRepoManager) Tags(db dbx.DBTX) tags.Repository               { return m.tags }
func (m *fakeRepoManager) Statuses(db dbx.DBTX) statuses.Repository       { return m.statuses }
func (m *fakeRepoManager) Presence(db dbx.DBTX) presence.Repository       { return nil }

// --- collaborators ---

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type notification struct {
	accountID string
	event     notify.Event
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(ctx context.Context, accountID string, ev notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{accountID: accountID, event: ev})
}
