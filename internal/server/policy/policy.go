// Package policy is the authorization engine: a pure evaluator from
// (actor, action, target) to allow or deny. It never touches storage; callers
// resolve the facts a rule needs and pass them in the Target.
package policy

import (
	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type Action string

const (
	ActionCreateTask     Action = "createTask"
	ActionCreateSelfTask Action = "createSelfTask"
	ActionAssignTask     Action = "assignTask"
	ActionChangeStatus   Action = "changeStatus"
	ActionViewTaskScope  Action = "viewTaskScope"
	ActionEditTask       Action = "editTask"
)

type Actor struct {
	ID   string
	Name string
	Role models.Role
}

// Target carries the facts about the task being acted on.
type Target struct {
	IsSelf bool

	// CreatorID is the task's creator (the actor itself on creation).
	CreatorID string
	// CurrentAssigneeID is the task's assignee before the action.
	CurrentAssigneeID string

	// AssigneeID and AssigneeRole describe the proposed assignee.
	AssigneeID   string
	AssigneeRole models.Role

	// TaggedWithActorName is true when the task carries a tag labeled with
	// the actor's own name. Only consulted for managers.
	TaggedWithActorName bool

	CurrentStatusID string
	NewStatusID     string
}

type Request struct {
	Actor  Actor
	Action Action
	Target Target
}

// Decision is the outcome of Authorize. A denial names the error kind the
// caller must surface and a user-facing reason.
type Decision struct {
	Allowed bool
	Kind    error
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(kind error, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Err converts a denial into a *common.Error; it is nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return common.NewError(d.Kind, "%s", d.Reason)
}

// rule denies a request for one of its actions when violated holds.
type rule struct {
	name     string
	actions  []Action
	violated func(r Request) bool
	kind     error
	reason   string
}

func (r rule) covers(a Action) bool {
	for _, x := range r.actions {
		if x == a {
			return true
		}
	}
	return false
}

// rules is evaluated top to bottom; the first violated rule decides.
var rules = []rule{
	{
		name:     "executor creates self tasks only",
		actions:  []Action{ActionCreateTask},
		violated: func(r Request) bool { return r.Actor.Role == models.RoleExecutor },
		kind:     common.ErrorValidation,
		reason:   "You can only create self tasks",
	},
	{
		name:     "requester has no self tasks",
		actions:  []Action{ActionCreateSelfTask},
		violated: func(r Request) bool { return r.Actor.Role == models.RoleRequester },
		kind:     common.ErrorValidation,
		reason:   "Requesters cannot create self tasks",
	},
	{
		name:     "only managers and admins assign",
		actions:  []Action{ActionAssignTask},
		violated: func(r Request) bool { return r.Actor.Role != models.RoleAdmin && r.Actor.Role != models.RoleManager },
		kind:     common.ErrorAuthorization,
		reason:   "You are not authorized to assign tasks",
	},
	{
		name:     "requester cannot change status",
		actions:  []Action{ActionChangeStatus},
		violated: func(r Request) bool { return r.Actor.Role == models.RoleRequester },
		kind:     common.ErrorAuthorization,
		reason:   "You are not authorized to change status",
	},
	{
		name:    "executor changes status of own tasks only",
		actions: []Action{ActionChangeStatus},
		violated: func(r Request) bool {
			return r.Actor.Role == models.RoleExecutor &&
				r.Actor.ID != r.Target.CreatorID && r.Actor.ID != r.Target.CurrentAssigneeID
		},
		kind:   common.ErrorAuthorization,
		reason: "You are not authorized to change status of this task",
	},
	{
		name:    "manager acts on tasks tagged with own name",
		actions: []Action{ActionAssignTask, ActionChangeStatus},
		violated: func(r Request) bool {
			return r.Actor.Role == models.RoleManager && !r.Target.TaggedWithActorName
		},
		kind:   common.ErrorAuthorization,
		reason: "This task is outside your scope",
	},
	{
		name:    "only participants edit tags and comments",
		actions: []Action{ActionEditTask},
		violated: func(r Request) bool {
			switch {
			case r.Actor.Role == models.RoleAdmin:
				return false
			case r.Actor.ID == r.Target.CreatorID, r.Actor.ID == r.Target.CurrentAssigneeID:
				return false
			case r.Actor.Role == models.RoleManager && r.Target.TaggedWithActorName:
				return false
			}
			return true
		},
		kind:   common.ErrorAuthorization,
		reason: "You are not authorized to update this task",
	},
	{
		name:     "no self assignment on create",
		actions:  []Action{ActionCreateTask, ActionCreateSelfTask},
		violated: selfAssigned,
		kind:     common.ErrorValidation,
		reason:   "You cannot assign task to yourself",
	},
	{
		name:    "no requester assignee on create",
		actions: []Action{ActionCreateTask},
		violated: func(r Request) bool {
			return r.Target.AssigneeRole == models.RoleRequester
		},
		kind:   common.ErrorValidation,
		reason: "You cannot assign task to a requester",
	},
	{
		name:    "no requester assignee",
		actions: []Action{ActionAssignTask},
		violated: func(r Request) bool {
			return !r.Target.IsSelf && r.Target.AssigneeRole == models.RoleRequester
		},
		kind:   common.ErrorStateInvalid,
		reason: "You cannot assign task to a requester",
	},
	{
		name:     "no self assignment",
		actions:  []Action{ActionAssignTask},
		violated: selfAssigned,
		kind:     common.ErrorValidation,
		reason:   "You cannot assign task to yourself",
	},
	{
		name:    "no same-status transition",
		actions: []Action{ActionChangeStatus},
		violated: func(r Request) bool {
			return r.Target.NewStatusID == r.Target.CurrentStatusID
		},
		kind:   common.ErrorStateInvalid,
		reason: "Cannot update with same status",
	},
}

func selfAssigned(r Request) bool {
	return r.Target.AssigneeID != "" && r.Target.AssigneeID == r.Target.CreatorID
}

// Authorize evaluates req against the rule table.
func Authorize(req Request) Decision {
	if !req.Actor.Role.Valid() {
		return deny(common.ErrorAuthorization, "Unknown role")
	}
	for _, r := range rules {
		if r.covers(req.Action) && r.violated(req) {
			return deny(r.kind, r.reason)
		}
	}
	return allow
}
