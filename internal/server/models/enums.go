package models

// Role is the closed set of account roles. Policy decisions switch on it;
// raw strings never reach the policy table.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleRequester Role = "requester"
	RoleExecutor  Role = "executor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleRequester, RoleExecutor:
		return true
	}
	return false
}

// CredentialStatus gates login: only active credentials may sign in.
type CredentialStatus string

const (
	CredentialPending  CredentialStatus = "pending"
	CredentialActive   CredentialStatus = "active"
	CredentialInactive CredentialStatus = "inactive"
	CredentialBlocked  CredentialStatus = "blocked"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TagType string

const (
	TagTypeTask     TagType = "task"
	TagTypeProject  TagType = "project"
	TagTypeUser     TagType = "user"
	TagTypePriority TagType = "priority"
)

func (t TagType) Valid() bool {
	switch t {
	case TagTypeTask, TagTypeProject, TagTypeUser, TagTypePriority:
		return true
	}
	return false
}
