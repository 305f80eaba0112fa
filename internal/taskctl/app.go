// Package taskctl implements the operator command line: schema migration,
// first-administrator bootstrap, token redemption and token cleanup.
package taskctl

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
)

type AccountService interface {
	BootstrapAdmin(ctx context.Context, in services.CreateAccountInput) (*models.Account, error)
}

type TokenService interface {
	RedeemToken(ctx context.Context, plain, newPassword string) (string, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type StatusService interface {
	EnsureDefaultStatus(ctx context.Context, createdBy string) (*models.Status, error)
}

type App struct {
	migrate  func(ctx context.Context) error
	accounts AccountService
	tokens   TokenService
	statuses StatusService
	reader   *bufio.Reader
	out      io.Writer
	db       *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	ml := server.NewMailer(c, logger)
	tokens := services.NewTokenService(db, rm, c, ml, logger)

	return &App{
		migrate:  func(ctx context.Context) error { return rm.RunMigrations(ctx, db) },
		accounts: services.NewAccountService(db, rm, c, tokens, ml, logger),
		tokens:   tokens,
		statuses: services.NewReferenceService(db, rm, logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		db:       db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
