package policy

import (
	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

// creators lists, per new role, which creator roles may create it.
var creators = map[models.Role][]models.Role{
	models.RoleAdmin:     {models.RoleAdmin},
	models.RoleManager:   {models.RoleAdmin},
	models.RoleRequester: {models.RoleAdmin},
	models.RoleExecutor:  {models.RoleManager},
}

// CanCreateAccount applies the role-creation matrix. creator is nil when no
// creator was given; only an admin may be created that way.
func CanCreateAccount(creator *Actor, newRole models.Role) Decision {
	allowed, ok := creators[newRole]
	if !ok {
		return deny(common.ErrorValidation, "Invalid role")
	}

	if creator == nil {
		if newRole == models.RoleAdmin {
			return allow
		}
		return deny(common.ErrorValidation, "createdBy is required")
	}

	for _, r := range allowed {
		if creator.Role == r {
			return allow
		}
	}

	if newRole == models.RoleExecutor {
		return deny(common.ErrorValidation, "Only manager can create an executor")
	}
	return deny(common.ErrorValidation, "Only admin can create this user")
}

// CanManageAccount reports whether actor may change target's active flag:
// admins manage everyone, managers the accounts they created.
func CanManageAccount(actor Actor, target *models.Account) Decision {
	switch {
	case actor.Role == models.RoleAdmin:
		return allow
	case actor.Role == models.RoleManager && target.CreatedBy == actor.ID:
		return allow
	}
	return deny(common.ErrorAuthorization, "You are not authorized to update this user")
}

// CanManageReferenceData gates status creation.
func CanManageReferenceData(actor Actor) Decision {
	if actor.Role == models.RoleAdmin {
		return allow
	}
	return deny(common.ErrorAuthorization, "Unauthorized to create status")
}
