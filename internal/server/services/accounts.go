package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/config"
	"github.com/dmitrijs2005/tasktracker/internal/server/mailer"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/policy"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

const defaultPageSize = 20

// CreateAccountInput is the payload of account creation. CreatedBy is the
// creating account; it is empty only when bootstrapping the first admin.
type CreateAccountInput struct {
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Mobile    string      `json:"mobile"`
	Role      models.Role `json:"role"`
	CreatedBy string      `json:"createdBy"`
}

func (in *CreateAccountInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Role = models.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
}

// missing lists the required fields that are empty, in a stable order.
func (in *CreateAccountInput) missing() []string {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Mobile, validation.Required),
		validation.Field(&in.Role, validation.Required),
	)
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (in *CreateAccountInput) validate(region string) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Length(3, 50)),
		validation.Field(&in.Email, is.Email),
		validation.Field(&in.Mobile, validation.By(phoneRule(region))),
	)
}

func phoneRule(region string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if _, err := normalizePhone(s, region); err != nil {
			return errors.New("must be a valid phone number")
		}
		return nil
	}
}

// normalizePhone parses number in the default region and returns it in
// E.164 form.
func normalizePhone(number, region string) (string, error) {
	num, err := phonenumbers.Parse(number, region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", number)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// AccountService creates accounts together with their pending credential and
// manages the account active flag.
type AccountService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	tokens        *TokenService
	mailer        mailer.Mailer
	log           logging.Logger
	phoneRegion   string
	frontendURL   string
	activationTTL time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, tokens *TokenService, ml mailer.Mailer, log logging.Logger) *AccountService {
	return &AccountService{
		db:            db,
		repomanager:   m,
		tokens:        tokens,
		mailer:        ml,
		log:           log.With("module", "accounts"),
		phoneRegion:   cfg.PhoneRegion,
		frontendURL:   cfg.FrontendURL,
		activationTTL: cfg.ActivationTokenTTL,
	}
}

// CreateAccount validates the payload, applies the role-creation matrix and
// then writes the account, its pending credential and an activation token in
// one transaction. The activation mail is sent before commit: if it cannot be
// dispatched nothing is persisted.
func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	start := time.Now()
	in.normalize()

	if missing := in.missing(); len(missing) > 0 {
		return nil, common.NewError(common.ErrorValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}
	if !in.Role.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Invalid role specified")
	}
	if err := in.validate(s.phoneRegion); err != nil {
		return nil, common.NewError(common.ErrorValidation, "%s", err.Error())
	}
	mobile, err := normalizePhone(in.Mobile, s.phoneRegion)
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, "mobile: must be a valid phone number")
	}
	in.Mobile = mobile

	repo := s.repomanager.Accounts(s.db)

	var creator *policy.Actor
	if in.CreatedBy != "" {
		if !validID(in.CreatedBy) {
			return nil, common.NewError(common.ErrorValidation, "Valid manager/admin is required for this role")
		}
		acc, actor, err := loadActor(ctx, repo, in.CreatedBy, "Valid manager/admin is required for this role")
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NewError(common.ErrorValidation, "Valid manager/admin is required for this role")
			}
			return nil, internal(ctx, s.log, "An error occurred while creating the user", err)
		}
		if !acc.IsActive {
			return nil, common.NewError(common.ErrorValidation, "Creator is not active")
		}
		creator = &actor
	}

	if d := policy.CanCreateAccount(creator, in.Role); !d.Allowed {
		s.log.Warn(ctx, "account creation denied", "role", string(in.Role), "created_by", in.CreatedBy, "reason", d.Reason)
		return nil, d.Err()
	}

	if err := s.checkUnique(ctx, in.Email, in.Mobile); err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "An error occurred while creating the user", err)
	}

	var created *models.Account
	var mailErr error
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := s.repomanager.Accounts(tx).Create(ctx, &models.Account{
			Name:      in.Name,
			Email:     in.Email,
			Mobile:    in.Mobile,
			Role:      in.Role,
			IsActive:  true,
			CreatedBy: in.CreatedBy,
		})
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
			AccountID: acc.ID,
			Status:    models.CredentialPending,
		}); err != nil {
			return err
		}

		tok, err := s.tokens.issue(ctx, tx, acc.ID, PurposeActivation)
		if err != nil {
			return err
		}

		link := mailer.Link(s.frontendURL, "set-password", tok.Plain)
		if err := s.mailer.Send(ctx, mailer.ActivationMessage(acc.Email, acc.Name, link, int(s.activationTTL.Minutes()))); err != nil {
			mailErr = err
			return err
		}

		created = acc
		return nil
	})
	if err != nil {
		switch {
		case mailErr != nil:
			return nil, internal(ctx, s.log, "Failed to send email notification", mailErr)
		case errors.Is(err, common.ErrorConflict):
			s.log.Warn(ctx, "account already exists", "email", in.Email, "error", err)
			return nil, common.NewError(common.ErrorValidation, "User already exists with this email or mobile")
		}
		return nil, internal(ctx, s.log, "An error occurred while creating the user", err)
	}

	s.log.Info(ctx, "account created", "account_id", created.ID, "role", string(created.Role), "processing_time_ms", elapsedMs(start))
	return created, nil
}

// BootstrapAdmin creates the first administrator of an empty installation.
func (s *AccountService) BootstrapAdmin(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	n, err := s.repomanager.Accounts(s.db).Count(ctx)
	if err != nil {
		return nil, internal(ctx, s.log, "An error occurred while creating the user", err)
	}
	if n > 0 {
		return nil, common.NewError(common.ErrorConflict, "Accounts already exist")
	}

	in.Role = models.RoleAdmin
	in.CreatedBy = ""
	return s.CreateAccount(ctx, in)
}

func (s *AccountService) checkUnique(ctx context.Context, email, mobile string) error {
	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return common.NewError(common.ErrorValidation, "Email already exists")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	if _, err := repo.GetByMobile(ctx, mobile); err == nil {
		return common.NewError(common.ErrorValidation, "Mobile number already exists")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return nil
}

// SetActive activates or deactivates an account. Admins manage every account,
// managers only the accounts they created.
func (s *AccountService) SetActive(ctx context.Context, actorID, accountID string, active bool) (*models.Account, error) {
	if !validID(accountID) {
		return nil, common.NewError(common.ErrorValidation, "User ID and status are required")
	}

	repo := s.repomanager.Accounts(s.db)

	_, actor, err := loadActor(ctx, repo, actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error updating user status", err)
	}

	target, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "User not found")
		}
		return nil, internal(ctx, s.log, "Error updating user status", err)
	}

	if d := policy.CanManageAccount(actor, target); !d.Allowed {
		return nil, d.Err()
	}

	acc, err := repo.SetActive(ctx, accountID, active)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "User not found")
		}
		return nil, internal(ctx, s.log, "Error updating user status", err)
	}

	s.log.Info(ctx, "account status updated", "account_id", accountID, "is_active", active, "actor_id", actorID)
	return acc, nil
}

// ListByManager returns the executors created by managerID. A manager may
// only list their own executors; admins may list anyone's.
func (s *AccountService) ListByManager(ctx context.Context, actorID, managerID string, limit, offset int) ([]models.Account, int, error) {
	if !validID(managerID) {
		return nil, 0, common.NewError(common.ErrorValidation, "Invalid or missing manager ID")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	repo := s.repomanager.Accounts(s.db)

	_, actor, err := loadActor(ctx, repo, actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return nil, 0, err
		}
		return nil, 0, internal(ctx, s.log, "An error occurred while fetching users", err)
	}
	if actor.Role != models.RoleAdmin && actor.ID != managerID {
		return nil, 0, common.NewError(common.ErrorAuthorization, "You are not authorized to view these users")
	}

	list, total, err := repo.ListByCreator(ctx, managerID, models.RoleExecutor, limit, offset)
	if err != nil {
		return nil, 0, internal(ctx, s.log, "An error occurred while fetching users", err)
	}
	return list, total, nil
}
