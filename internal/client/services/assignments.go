package services

import (
	"context"

	"github.com/dmitrijs2005/langcrowd/internal/client/access"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

// keyAssignments holds role assignments made while offline.
const keyAssignments = "role-assignments"

type AssignmentService interface {
	UsersWithRoles(ctx context.Context) ([]models.Listed[models.UserWithRoles], error)
	// Pending returns assignments and removals not yet synced.
	Pending(ctx context.Context) ([]models.Listed[models.RoleAssignment], error)
	Assign(ctx context.Context, a models.RoleAssignment) models.MutationResult[models.RoleAssignment]
	Remove(ctx context.Context, a models.RoleAssignment) models.MutationResult[models.RoleAssignment]
}

type assignmentService struct {
	api     RolesAPI
	session SessionSource
	users   *collection[models.UserWithRoles]
	col     *collection[models.RoleAssignment]
}

func NewAssignmentService(api RolesAPI, deps Deps) AssignmentService {
	return &assignmentService{
		api:     api,
		session: deps.Session,
		users: &collection[models.UserWithRoles]{
			name:   query.KeyUsersWithRoles,
			noun:   "User",
			mirror: deps.Mirror,
			cache:  deps.Cache,
			logger: deps.logger(),
		},
		col: &collection[models.RoleAssignment]{
			name:        keyAssignments,
			noun:        "Role assignment",
			mirror:      deps.Mirror,
			cache:       deps.Cache,
			logger:      deps.logger(),
			invalidates: []string{query.KeyUsersWithRoles},
			transient:   true,
			remap:       remapAssignment,
			remote: remoteOps[models.RoleAssignment]{
				create: func(ctx context.Context, a models.RoleAssignment) (*models.RoleAssignment, error) {
					return &a, api.Assign(ctx, a)
				},
				delete: api.Remove,
			},
		},
	}
}

// remapAssignment points an assignment made offline at the server ids of
// users and roles that were created offline too.
func remapAssignment(a models.RoleAssignment, ids map[models.ID]models.ID) models.RoleAssignment {
	if id, ok := ids[a.UserID]; ok {
		a.UserID = id
	}
	if id, ok := ids[a.RoleID]; ok {
		a.RoleID = id
	}
	return a
}

func (s *assignmentService) UsersWithRoles(ctx context.Context) ([]models.Listed[models.UserWithRoles], error) {
	return s.users.list(ctx, s.api.UsersWithRoles)
}

func (s *assignmentService) Pending(ctx context.Context) ([]models.Listed[models.RoleAssignment], error) {
	return s.col.fromMirror(ctx)
}

func checkAssignment(a models.RoleAssignment) error {
	return validate.Apply(
		validate.Required("user_id", a.UserID.String(), "User is required"),
		validate.Required("role_id", a.RoleID.String(), "Role is required"),
	)
}

func (s *assignmentService) Assign(ctx context.Context, a models.RoleAssignment) models.MutationResult[models.RoleAssignment] {
	if err := access.Authorize(s.session.Role(), access.AssignRoles); err != nil {
		return rejected(a, err)
	}
	if err := checkAssignment(a); err != nil {
		return rejected(a, err)
	}
	return s.col.apply(ctx, mirror.OpCreate, a, func(ctx context.Context) (*models.RoleAssignment, error) {
		return &a, s.api.Assign(ctx, a)
	})
}

func (s *assignmentService) Remove(ctx context.Context, a models.RoleAssignment) models.MutationResult[models.RoleAssignment] {
	if err := access.Authorize(s.session.Role(), access.AssignRoles); err != nil {
		return rejected(a, err)
	}
	if err := checkAssignment(a); err != nil {
		return rejected(a, err)
	}
	return s.col.apply(ctx, mirror.OpDelete, a, func(ctx context.Context) (*models.RoleAssignment, error) {
		return nil, s.api.Remove(ctx, a)
	})
}
