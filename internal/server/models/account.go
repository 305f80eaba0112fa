package models

import "time"

// Account is the identity record. CreatedBy is empty for self-created admins.
type Account struct {
	ID        string
	Name      string
	Email     string
	Mobile    string
	Role      Role
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential is paired 1:1 with an Account. ResetTokenHash is non-empty only
// while an activation or reset flow is outstanding.
type Credential struct {
	ID                   string
	AccountID            string
	PasswordHash         string
	Status               CredentialStatus
	LastLogin            *time.Time
	ResetTokenHash       string
	ResetTokenExpiration *time.Time
	LoginAttempts        int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Presence maps an online account to its notification connection.
type Presence struct {
	AccountID    string
	ConnectionID string
	UpdatedAt    time.Time
}
