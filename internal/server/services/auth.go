package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/cryptox"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/auth"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
	Account   *models.Account
}

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	jwtSecret   []byte
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "auth"),
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		now:         time.Now,
	}
}

// Login checks the password first and the credential status second, so an
// inactive account is only revealed to a caller who knows its password.
// Failed password checks increment the attempt counter; no lockout applies.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	start := time.Now()
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.ErrNoCredentials
	}

	acc, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "login for unknown email", "email", email)
			return nil, common.NewError(common.ErrorNotFound, "User not found")
		}
		return nil, internal(ctx, s.log, "Login failed. Please try again.", err)
	}

	creds := s.repomanager.Credentials(s.db)
	cred, err := creds.GetByAccountID(ctx, acc.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "account has no credential", "account_id", acc.ID)
			return nil, common.ErrInvalidCredentials
		}
		return nil, internal(ctx, s.log, "Login failed. Please try again.", err)
	}

	if !cryptox.ComparePassword(cred.PasswordHash, password) {
		if err := creds.RecordFailedLogin(ctx, acc.ID); err != nil {
			s.log.Error(ctx, "error recording failed login", "account_id", acc.ID, "error", err)
		}
		s.log.Warn(ctx, "incorrect password", "account_id", acc.ID)
		return nil, common.ErrInvalidCredentials
	}

	if cred.Status != models.CredentialActive {
		s.log.Warn(ctx, "login for inactive credential", "account_id", acc.ID, "status", string(cred.Status))
		return nil, common.ErrInactive
	}

	now := s.now()
	if err := creds.RecordLogin(ctx, acc.ID, now); err != nil {
		return nil, internal(ctx, s.log, "Login failed. Please try again.", err)
	}

	token, err := auth.GenerateToken(acc.ID, acc.Role, s.jwtSecret, s.sessionTTL, now)
	if err != nil {
		return nil, internal(ctx, s.log, "Login failed. Please try again.", err)
	}

	s.log.Info(ctx, "login success", "account_id", acc.ID, "role", string(acc.Role), "processing_time_ms", elapsedMs(start))
	return &Session{
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		ExpiresIn: s.sessionTTL,
		Account:   acc,
	}, nil
}

// ParseSession verifies a session token and returns its claims.
func (s *AuthService) ParseSession(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// SessionTTL is the fixed lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}
