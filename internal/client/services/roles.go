package services

import (
	"context"

	"github.com/dmitrijs2005/langcrowd/internal/client/access"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

// RolesAPI is the backend surface used by RoleService and
// AssignmentService.
type RolesAPI interface {
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	List(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, r models.Role) (*models.Role, error)
	Update(ctx context.Context, r models.Role) (*models.Role, error)
	Delete(ctx context.Context, id models.ID) error
	UsersWithRoles(ctx context.Context) ([]models.UserWithRoles, error)
	Assign(ctx context.Context, a models.RoleAssignment) error
	Remove(ctx context.Context, a models.RoleAssignment) error
}

type RoleService interface {
	List(ctx context.Context) ([]models.Listed[models.Role], error)
	Permissions(ctx context.Context) ([]models.Listed[models.Permission], error)
	Refresh(ctx context.Context) ([]models.Listed[models.Role], error)
	Create(ctx context.Context, r models.Role) models.MutationResult[models.Role]
	Update(ctx context.Context, r models.Role) models.MutationResult[models.Role]
	Delete(ctx context.Context, id models.ID) models.MutationResult[models.Role]
}

type roleService struct {
	api         RolesAPI
	session     SessionSource
	col         *collection[models.Role]
	permissions *collection[models.Permission]
}

func NewRoleService(api RolesAPI, deps Deps) RoleService {
	return &roleService{
		api:     api,
		session: deps.Session,
		col: &collection[models.Role]{
			name:        query.KeyRoles,
			noun:        "Role",
			mirror:      deps.Mirror,
			cache:       deps.Cache,
			logger:      deps.logger(),
			invalidates: []string{query.KeyUsersWithRoles},
			remote: remoteOps[models.Role]{
				create: api.Create,
				update: api.Update,
				delete: func(ctx context.Context, r models.Role) error { return api.Delete(ctx, r.ID) },
			},
		},
		permissions: &collection[models.Permission]{
			name:   query.KeyPermissions,
			noun:   "Permission",
			mirror: deps.Mirror,
			cache:  deps.Cache,
			logger: deps.logger(),
		},
	}
}

func (s *roleService) List(ctx context.Context) ([]models.Listed[models.Role], error) {
	return s.col.list(ctx, s.api.List)
}

func (s *roleService) Permissions(ctx context.Context) ([]models.Listed[models.Permission], error) {
	return s.permissions.list(ctx, s.api.ListPermissions)
}

func (s *roleService) Refresh(ctx context.Context) ([]models.Listed[models.Role], error) {
	s.col.invalidate()
	s.permissions.invalidate()
	return s.List(ctx)
}

// authorize checks action and, when the role is or would become an admin
// role, the superuser-only admin-role permission as well.
func (s *roleService) authorize(ctx context.Context, action access.Action, r models.Role) error {
	role := s.session.Role()
	if err := access.Authorize(role, action); err != nil {
		return err
	}
	admin := r.IsAdminRole
	if r.ID != "" {
		if existing, err := s.col.get(ctx, r.ID); err == nil && existing.IsAdminRole {
			admin = true
		}
	}
	if admin {
		return access.Authorize(role, access.ManageAdminRole)
	}
	return nil
}

func (s *roleService) Create(ctx context.Context, r models.Role) models.MutationResult[models.Role] {
	if err := s.authorize(ctx, access.ManageRoles, r); err != nil {
		return rejected(r, err)
	}
	if err := validate.Role(r); err != nil {
		return rejected(r, err)
	}
	return s.col.apply(ctx, mirror.OpCreate, r, func(ctx context.Context) (*models.Role, error) {
		return s.api.Create(ctx, r)
	})
}

func (s *roleService) Update(ctx context.Context, r models.Role) models.MutationResult[models.Role] {
	if err := s.authorize(ctx, access.ManageRoles, r); err != nil {
		return rejected(r, err)
	}
	if err := validate.Role(r); err != nil {
		return rejected(r, err)
	}
	return s.col.apply(ctx, mirror.OpUpdate, r, func(ctx context.Context) (*models.Role, error) {
		return s.api.Update(ctx, r)
	})
}

func (s *roleService) Delete(ctx context.Context, id models.ID) models.MutationResult[models.Role] {
	r := models.Role{ID: id}
	if existing, err := s.col.get(ctx, id); err == nil {
		r = existing
	}
	if err := s.authorize(ctx, access.DeleteRole, r); err != nil {
		return rejected(r, err)
	}
	return s.col.apply(ctx, mirror.OpDelete, r, func(ctx context.Context) (*models.Role, error) {
		return nil, s.api.Delete(ctx, id)
	})
}
