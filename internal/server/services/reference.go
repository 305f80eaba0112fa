package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/policy"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

const defaultColor = "#000000"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// ReferenceService manages statuses and tags, the reference data tasks
// point at.
type ReferenceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewReferenceService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ReferenceService {
	return &ReferenceService{db: db, repomanager: m, log: log.With("module", "reference")}
}

// CreateStatus adds a status. Admin only; names are unique.
func (s *ReferenceService) CreateStatus(ctx context.Context, actorID, name, color string) (*models.Status, error) {
	name = strings.TrimSpace(name)
	color = strings.TrimSpace(color)
	if name == "" || color == "" {
		return nil, common.NewError(common.ErrorValidation, "All fields are required")
	}
	if err := validation.Validate(color, validation.Match(hexColor)); err != nil {
		return nil, common.NewError(common.ErrorValidation, "Invalid color code")
	}

	_, actor, err := loadActor(ctx, s.repomanager.Accounts(s.db), actorID, "No such user found")
	if err != nil {
		if isUserError(err) {
			return nil, err
		}
		return nil, internal(ctx, s.log, "Error creating status", err)
	}
	if d := policy.CanManageReferenceData(actor); !d.Allowed {
		s.log.Warn(ctx, "status creation denied", "actor_id", actor.ID)
		return nil, d.Err()
	}

	return s.createStatus(ctx, &models.Status{Name: name, Color: color, CreatedBy: actor.ID})
}

func (s *ReferenceService) createStatus(ctx context.Context, st *models.Status) (*models.Status, error) {
	repo := s.repomanager.Statuses(s.db)

	if _, err := repo.GetByName(ctx, st.Name); err == nil {
		return nil, common.NewError(common.ErrorConflict, "Status already exists")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, internal(ctx, s.log, "Error creating status", err)
	}

	created, err := repo.Create(ctx, st)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, "Status already exists")
		}
		return nil, internal(ctx, s.log, "Error creating status", err)
	}

	s.log.Info(ctx, "status created", "status_id", created.ID, "name", created.Name)
	return created, nil
}

// EnsureDefaultStatus creates the status new tasks start in when it is
// missing. It is idempotent.
func (s *ReferenceService) EnsureDefaultStatus(ctx context.Context, createdBy string) (*models.Status, error) {
	st, err := s.repomanager.Statuses(s.db).GetByName(ctx, common.DefaultStatusName)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, internal(ctx, s.log, "Error creating status", err)
	}

	st, err = s.createStatus(ctx, &models.Status{Name: common.DefaultStatusName, Color: "#2196F3", CreatedBy: createdBy})
	if errors.Is(err, common.ErrorConflict) {
		return s.repomanager.Statuses(s.db).GetByName(ctx, common.DefaultStatusName)
	}
	return st, err
}

// TagInput is the payload of tag creation.
type TagInput struct {
	Label string         `json:"label"`
	Color string         `json:"color"`
	Type  models.TagType `json:"type"`
}

// CreateTag adds a tag. Labels are unique per type ignoring case; an invalid
// color falls back to black.
func (s *ReferenceService) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	in.Label = strings.TrimSpace(in.Label)
	in.Color = strings.TrimSpace(in.Color)
	in.Type = models.TagType(strings.ToLower(strings.TrimSpace(string(in.Type))))

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Label, validation.Required),
		validation.Field(&in.Type, validation.Required),
	)
	var errs validation.Errors
	if errors.As(err, &errs) {
		missing := make([]string, 0, len(errs))
		for f := range errs {
			missing = append(missing, f)
		}
		sort.Strings(missing)
		return nil, common.NewError(common.ErrorValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}
	if !in.Type.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Invalid type specified")
	}
	if err := validation.Validate(in.Label, validation.Length(3, 16)); err != nil {
		return nil, common.NewError(common.ErrorValidation, "label: %s", err.Error())
	}
	if !hexColor.MatchString(in.Color) {
		in.Color = defaultColor
	}

	repo := s.repomanager.Tags(s.db)
	if _, err := repo.FindByLabelAndType(ctx, in.Label, in.Type); err == nil {
		return nil, common.NewError(common.ErrorConflict, "Tag already exists")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, internal(ctx, s.log, "Error creating tag", err)
	}

	tag, err := repo.Create(ctx, &models.Tag{Label: in.Label, Color: in.Color, Type: in.Type})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, "Tag already exists")
		}
		return nil, internal(ctx, s.log, "Error creating tag", err)
	}

	s.log.Info(ctx, "tag created", "tag_id", tag.ID, "label", tag.Label, "type", string(tag.Type))
	return tag, nil
}

func (s *ReferenceService) ListStatuses(ctx context.Context) ([]models.Status, error) {
	list, err := s.repomanager.Statuses(s.db).List(ctx)
	if err != nil {
		return nil, internal(ctx, s.log, "Error fetching statuses", err)
	}
	return list, nil
}

// ListTags lists tags, all types when typ is empty.
func (s *ReferenceService) ListTags(ctx context.Context, typ models.TagType) ([]models.Tag, error) {
	if typ != "" && !typ.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Invalid type specified")
	}
	list, err := s.repomanager.Tags(s.db).List(ctx, typ)
	if err != nil {
		return nil, internal(ctx, s.log, "Error fetching tags", err)
	}
	return list, nil
}
