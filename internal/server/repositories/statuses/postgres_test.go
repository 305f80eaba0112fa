package statuses

import (
	"context"
	"database/sql"
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

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+statuses\s*\(name,\s*color,\s*created_by\)`).
		WithArgs("New", "#00ff00", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("s-1", now))

	got, err := repo.Create(context.Background(), &models.Status{Name: "New", Color: "#00ff00"})
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.ID)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+statuses`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Status{Name: "New"})
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestGetByName(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+statuses\s+WHERE\s+name\s*=\s*\$1`).
		WithArgs("New").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "created_by", "created_at"}).
			AddRow("s-1", "New", "#000000", "adm", now))

	got, err := repo.GetByName(context.Background(), "New")
	require.NoError(t, err)
	assert.Equal(t, "adm", got.CreatedBy)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+statuses\s+WHERE\s+id\s*=\s*\$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+statuses\s+ORDER\s+BY\s+created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "created_by", "created_at"}).
			AddRow("s-1", "New", "#000000", nil, now).
			AddRow("s-2", "Completed", "#00ff00", "adm", now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Completed", got[1].Name)
}
