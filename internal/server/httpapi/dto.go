package httpapi

import (
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
)

type accountJSON struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Mobile    string      `json:"mobile"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedBy string      `json:"createdBy,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toAccount(a *models.Account) accountJSON {
	return accountJSON{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Mobile:    a.Mobile,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}

type accountRefJSON struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func toAccountRef(r *models.AccountRef) *accountRefJSON {
	if r == nil {
		return nil
	}
	return &accountRefJSON{ID: r.ID, Name: r.Name, Email: r.Email, Role: r.Role}
}

type statusJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func toStatus(s *models.Status) *statusJSON {
	if s == nil {
		return nil
	}
	return &statusJSON{ID: s.ID, Name: s.Name, Color: s.Color}
}

type tagJSON struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Color string         `json:"color"`
	Type  models.TagType `json:"type"`
}

func toTags(tags []models.Tag) []tagJSON {
	out := make([]tagJSON, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagJSON{ID: t.ID, Label: t.Label, Color: t.Color, Type: t.Type})
	}
	return out
}

type commentJSON struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func toComment(c *models.Comment) commentJSON {
	return commentJSON{ID: c.ID, AuthorID: c.AuthorID, Text: c.Text, CreatedAt: c.CreatedAt}
}

type taskJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	StatusID    string          `json:"statusId"`
	TagIDs      []string        `json:"tagIds"`
	AssignedTo  string          `json:"assignedTo,omitempty"`
	DueDate     time.Time       `json:"dueDate"`
	CreatedBy   string          `json:"createdBy"`
	UpdatedBy   string          `json:"updatedBy,omitempty"`
	IsSelf      bool            `json:"isSelf"`
	IsDeleted   bool            `json:"isDeleted"`
	CompletedAt *time.Time      `json:"completedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Status   *statusJSON     `json:"status,omitempty"`
	Tags     []tagJSON       `json:"tags,omitempty"`
	Creator  *accountRefJSON `json:"creator,omitempty"`
	Assignee *accountRefJSON `json:"assignee,omitempty"`
	Comments []commentJSON   `json:"comments,omitempty"`
}

func toTask(t *models.Task) taskJSON {
	tagIDs := t.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		StatusID:    t.StatusID,
		TagIDs:      tagIDs,
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		UpdatedBy:   t.UpdatedBy,
		IsSelf:      t.IsSelf,
		IsDeleted:   t.IsDeleted,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskDetails(d *models.TaskDetails) taskJSON {
	out := toTask(&d.Task)
	out.Status = toStatus(d.Status)
	if d.Tags != nil {
		out.Tags = toTags(d.Tags)
	}
	out.Creator = toAccountRef(d.Creator)
	out.Assignee = toAccountRef(d.Assignee)
	for i := range d.Comments {
		out.Comments = append(out.Comments, toComment(&d.Comments[i]))
	}
	return out
}

type pageJSON struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

func toTaskPage(p *services.TaskPage) pageJSON {
	items := make([]taskJSON, 0, len(p.Tasks))
	for i := range p.Tasks {
		items = append(items, toTask(&p.Tasks[i]))
	}
	return pageJSON{Items: items, TotalCount: p.Total, Limit: p.Limit, Offset: p.Offset}
}
