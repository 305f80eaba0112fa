package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/presence"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/selftasks"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/statuses"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/tags"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/tasks"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services pick the scope per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	SelfTasks(db dbx.DBTX) selftasks.Repository
	Tags(db dbx.DBTX) tags.Repository
	Statuses(db dbx.DBTX) statuses.Repository
	Presence(db dbx.DBTX) presence.Repository
}
