// Package access decides which roles may perform which actions. The router
// uses it for view gates and the services call Authorize again before any
// destructive change, so a bypassed view gate is not enough to cause harm.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

// Action names something a user may try to do.
type Action string

const (
	ManageLanguages   Action = "languages.manage"
	ManageRoles       Action = "roles.manage"
	AssignRoles       Action = "roles.assign"
	DeleteRole        Action = "roles.delete"
	ManageAdminRole   Action = "roles.manage_admin"
	ManageUsers       Action = "users.manage"
	DeleteUser        Action = "users.delete"
	ManageBackups     Action = "system.backups"
	RestoreSnapshot   Action = "system.restore_snapshot"
	LockAllAccounts   Action = "system.lock_all"
	FactoryReset      Action = "system.factory_reset"
	ExportSystemState Action = "system.export"
	SyncPending       Action = "sync"
)

// Roles is a set of roles.
type Roles []models.RoleName

// Includes reports whether r is in the set.
func (rs Roles) Includes(r models.RoleName) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

var (
	// Anyone is every authenticated role.
	Anyone = Roles(models.AllRoles)

	Reviewers  = Roles{models.RoleReviewer, models.RoleLanguageLead, models.RoleAdmin, models.RoleSuperuser}
	Admins     = Roles{models.RoleAdmin, models.RoleSuperuser}
	Superusers = Roles{models.RoleSuperuser}
)

var policy = map[Action]Roles{
	ManageLanguages:   Admins,
	ManageRoles:       Admins,
	AssignRoles:       Admins,
	DeleteRole:        Superusers,
	ManageAdminRole:   Superusers,
	ManageUsers:       Superusers,
	DeleteUser:        Superusers,
	ManageBackups:     Superusers,
	RestoreSnapshot:   Superusers,
	LockAllAccounts:   Superusers,
	FactoryReset:      Superusers,
	ExportSystemState: Superusers,
	SyncPending:       Anyone,
}

// Can reports whether role may perform action. Unknown actions are denied.
func Can(role models.RoleName, action Action) bool {
	allowed, ok := policy[action]
	return ok && allowed.Includes(role)
}

// Authorize returns an error wrapping common.ErrorForbidden when role may
// not perform action.
func Authorize(role models.RoleName, action Action) error {
	if role == "" {
		return fmt.Errorf("%s: %w", action, common.ErrorNotAuthenticated)
	}
	if !Can(role, action) {
		return fmt.Errorf("%s not allowed for %s: %w", action, role, common.ErrorForbidden)
	}
	return nil
}

// AllowedRoles returns the roles permitted to perform action.
func AllowedRoles(action Action) Roles {
	return append(Roles(nil), policy[action]...)
}
