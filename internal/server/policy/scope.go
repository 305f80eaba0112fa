package policy

import "github.com/dmitrijs2005/tasktracker/internal/server/models"

// TaskScope is the role-derived restriction on which non-self tasks an actor
// may list. At most one field is set; all empty means unrestricted.
type TaskScope struct {
	CreatedBy  string
	AssignedTo string
	TagLabel   string
}

// Scope returns the listing restriction for actor:
// requesters see what they created, executors what is assigned to them,
// managers tasks tagged with their own name, admins everything. Callers
// check ActionViewTaskScope first, which rejects unknown roles.
func Scope(actor Actor) TaskScope {
	switch actor.Role {
	case models.RoleRequester:
		return TaskScope{CreatedBy: actor.ID}
	case models.RoleExecutor:
		return TaskScope{AssignedTo: actor.ID}
	case models.RoleManager:
		return TaskScope{TagLabel: actor.Name}
	case models.RoleAdmin:
		return TaskScope{}
	}
	return TaskScope{CreatedBy: actor.ID}
}

// Apply narrows f to the scope.
func (s TaskScope) Apply(f models.TaskFilter) models.TaskFilter {
	if s.CreatedBy != "" {
		f.CreatedBy = s.CreatedBy
	}
	if s.AssignedTo != "" {
		f.AssignedTo = s.AssignedTo
	}
	if s.TagLabel != "" {
		f.TagLabel = s.TagLabel
	}
	return f
}
