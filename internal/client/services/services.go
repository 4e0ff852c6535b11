package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

// APIs groups the backend surfaces. *client.Gateway provides all of them.
type APIs struct {
	Users     UsersAPI
	Languages LanguagesAPI
	Roles     RolesAPI
	System    SystemAPI
}

type Services struct {
	Users       UserService
	Languages   LanguageService
	Roles       RoleService
	Assignments AssignmentService
	System      SystemService
	Sync        Syncer

	deps Deps
}

// New wires every service over one mirror and cache. exporter may be nil
// when exporting is not configured.
func New(apis APIs, exporter Exporter, deps Deps) *Services {
	users := NewUserService(apis.Users, deps).(*userService)
	languages := NewLanguageService(apis.Languages, deps).(*languageService)
	roles := NewRoleService(apis.Roles, deps).(*roleService)
	assignments := NewAssignmentService(apis.Roles, deps).(*assignmentService)
	system := NewSystemService(apis.System, users, exporter, deps).(*systemService)

	return &Services{
		Users:       users,
		Languages:   languages,
		Roles:       roles,
		Assignments: assignments,
		System:      system,
		Sync: newSyncer(deps,
			users.col,
			languages.col,
			roles.col,
			assignments.col,
			system.backups,
			system.snapshots,
		),
		deps: deps,
	}
}

// SignIn prepares local data for u. A mirror left behind by another user is
// wiped, pending changes included, so they are never replayed with u's
// credentials.
func (s *Services) SignIn(ctx context.Context, u models.User) error {
	s.deps.Cache.Clear()

	owner, err := s.deps.KV.Get(ctx, common.MirrorOwnerKey)
	if err != nil {
		return fmt.Errorf("read mirror owner: %w", err)
	}
	if string(owner) == u.ID.String() {
		return nil
	}
	if owner != nil {
		s.deps.logger().Info(ctx, "discarding local data of previous user", "user", u.Username)
	}
	if err := s.deps.Mirror.Clear(ctx); err != nil {
		return err
	}
	return s.deps.KV.Set(ctx, common.MirrorOwnerKey, []byte(u.ID.String()))
}

// SignOut forgets cached server responses. Pending changes stay in the
// mirror until someone else signs in.
func (s *Services) SignOut(context.Context) {
	s.deps.Cache.Clear()
}
