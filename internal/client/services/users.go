package services

import (
	"context"

	"github.com/dmitrijs2005/langcrowd/internal/client/access"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

// UsersAPI is the backend surface used by UserService.
type UsersAPI interface {
	List(ctx context.Context) ([]models.UserRecord, error)
	Create(ctx context.Context, u models.UserRecord) (*models.UserRecord, error)
	Update(ctx context.Context, u models.UserRecord) (*models.UserRecord, error)
	Delete(ctx context.Context, id models.ID) error
	UpdateRole(ctx context.Context, id models.ID, role models.RoleName) (*models.UserRecord, error)
	UpdateStatus(ctx context.Context, id models.ID, active bool) (*models.UserRecord, error)
}

type UserService interface {
	List(ctx context.Context) ([]models.Listed[models.UserRecord], error)
	Refresh(ctx context.Context) ([]models.Listed[models.UserRecord], error)
	Create(ctx context.Context, u models.UserRecord) models.MutationResult[models.UserRecord]
	Update(ctx context.Context, u models.UserRecord) models.MutationResult[models.UserRecord]
	Delete(ctx context.Context, id models.ID) models.MutationResult[models.UserRecord]
	SetRole(ctx context.Context, id models.ID, role models.RoleName) models.MutationResult[models.UserRecord]
	SetStatus(ctx context.Context, id models.ID, active bool) models.MutationResult[models.UserRecord]
}

type userService struct {
	api     UsersAPI
	session SessionSource
	col     *collection[models.UserRecord]
}

func NewUserService(api UsersAPI, deps Deps) UserService {
	return &userService{
		api:     api,
		session: deps.Session,
		col: &collection[models.UserRecord]{
			name:        query.KeyAdminUsers,
			noun:        "User",
			mirror:      deps.Mirror,
			cache:       deps.Cache,
			logger:      deps.logger(),
			invalidates: []string{query.KeyUsersWithRoles},
			sanitize:    models.UserRecord.Redacted,
			remote: remoteOps[models.UserRecord]{
				create: api.Create,
				update: api.Update,
				delete: func(ctx context.Context, u models.UserRecord) error { return api.Delete(ctx, u.ID) },
			},
		},
	}
}

func (s *userService) List(ctx context.Context) ([]models.Listed[models.UserRecord], error) {
	return s.col.list(ctx, s.api.List)
}

func (s *userService) Refresh(ctx context.Context) ([]models.Listed[models.UserRecord], error) {
	s.col.invalidate()
	return s.List(ctx)
}

func (s *userService) Create(ctx context.Context, u models.UserRecord) models.MutationResult[models.UserRecord] {
	if err := access.Authorize(s.session.Role(), access.ManageUsers); err != nil {
		return rejected(u.Redacted(), err)
	}
	if err := validate.NewUser(u); err != nil {
		return rejected(u.Redacted(), err)
	}
	// New accounts start active.
	u.IsActive = true
	res := s.col.apply(ctx, mirror.OpCreate, u, func(ctx context.Context) (*models.UserRecord, error) {
		return s.api.Create(ctx, u)
	})
	res.Item = res.Item.Redacted()
	return res
}

func (s *userService) Update(ctx context.Context, u models.UserRecord) models.MutationResult[models.UserRecord] {
	if err := access.Authorize(s.session.Role(), access.ManageUsers); err != nil {
		return rejected(u, err)
	}
	return s.col.apply(ctx, mirror.OpUpdate, u, func(ctx context.Context) (*models.UserRecord, error) {
		return s.api.Update(ctx, u)
	})
}

func (s *userService) Delete(ctx context.Context, id models.ID) models.MutationResult[models.UserRecord] {
	u := models.UserRecord{ID: id}
	if err := access.Authorize(s.session.Role(), access.DeleteUser); err != nil {
		return rejected(u, err)
	}
	if existing, err := s.col.get(ctx, id); err == nil {
		u = existing
	}
	return s.col.apply(ctx, mirror.OpDelete, u, func(ctx context.Context) (*models.UserRecord, error) {
		return nil, s.api.Delete(ctx, id)
	})
}

func (s *userService) SetRole(ctx context.Context, id models.ID, role models.RoleName) models.MutationResult[models.UserRecord] {
	u := models.UserRecord{ID: id, Role: role}
	if err := access.Authorize(s.session.Role(), access.ManageUsers); err != nil {
		return rejected(u, err)
	}
	if !role.Valid() {
		return rejected(u, validate.FromFields(map[string][]string{"role": {"Select a valid role"}}))
	}
	if existing, err := s.col.get(ctx, id); err == nil {
		u = existing
		u.Role = role
	}
	return s.col.apply(ctx, mirror.OpUpdate, u, func(ctx context.Context) (*models.UserRecord, error) {
		return s.api.UpdateRole(ctx, id, role)
	})
}

func (s *userService) SetStatus(ctx context.Context, id models.ID, active bool) models.MutationResult[models.UserRecord] {
	u := models.UserRecord{ID: id, IsActive: active}
	if err := access.Authorize(s.session.Role(), access.ManageUsers); err != nil {
		return rejected(u, err)
	}
	if existing, err := s.col.get(ctx, id); err == nil {
		u = existing
		u.IsActive = active
	}
	return s.col.apply(ctx, mirror.OpUpdate, u, func(ctx context.Context) (*models.UserRecord, error) {
		return s.api.UpdateStatus(ctx, id, active)
	})
}
