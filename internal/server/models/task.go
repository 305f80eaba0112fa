package models

import "time"

type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	StatusID    string
	TagIDs      []string
	AssignedTo  string
	DueDate     time.Time
	CreatedBy   string
	UpdatedBy   string
	IsActive    bool
	IsDeleted   bool
	IsSelf      bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Comment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// SelfTaskMarker indexes self-tasks by owner. It exists iff the task was
// created through the self-task path and is written in the same transaction.
type SelfTaskMarker struct {
	AccountID string
	TaskID    string
	CreatedAt time.Time
}

// TaskFilter is the storage-level query behind scoped fetches. Empty fields
// do not constrain the result. SelfOwner restricts to tasks indexed by a
// SelfTaskMarker of that account.
type TaskFilter struct {
	CreatedBy  string
	AssignedTo string
	TagLabel   string
	SelfOwner  string
	Title      string
	Priority   Priority
	StatusID   string
	DueBefore  *time.Time
	IsSelf     bool
	Limit      int
	Offset     int
}

// TaskDetails is a task with its references resolved for display.
type TaskDetails struct {
	Task
	Status   *Status
	Tags     []Tag
	Creator  *AccountRef
	Assignee *AccountRef
	Comments []Comment
}

type AccountRef struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (a *Account) Ref() *AccountRef {
	if a == nil {
		return nil
	}
	return &AccountRef{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
