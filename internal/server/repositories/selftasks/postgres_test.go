package selftasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+self_tasks\s*\(account_id,\s*task_id\)`).
		WithArgs("u-1", "task-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	m := &models.SelfTaskMarker{AccountID: "u-1", TaskID: "task-1"}
	require.NoError(t, repo.Create(context.Background(), m))
	assert.Equal(t, now, m.CreatedAt)
}

func TestCreate_Errors(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`INSERT\s+INTO\s+self_tasks`).WillReturnError(&pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, repo.Create(context.Background(), &models.SelfTaskMarker{}), common.ErrorConflict)
	})

	t.Run("db", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`INSERT\s+INTO\s+self_tasks`).WillReturnError(errors.New("fk"))
		err := repo.Create(context.Background(), &models.SelfTaskMarker{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorConflict)
	})
}

func TestExistsAndCount(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs("u-1", "task-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT\s+count\(\*\)\s+FROM\s+self_tasks`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	ok, err := repo.Exists(context.Background(), "u-1", "task-1")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.CountByAccount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
