package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

const usersPath = "accounts/api/admin/users/"

type UsersAPI struct{ g *Gateway }

func (g *Gateway) Users() *UsersAPI { return &UsersAPI{g: g} }

func userPath(id models.ID) string {
	return usersPath + url.PathEscape(id.String()) + "/"
}

func (a *UsersAPI) List(ctx context.Context) ([]models.UserRecord, error) {
	return list[models.UserRecord](ctx, a.g, usersPath)
}

func (a *UsersAPI) Create(ctx context.Context, u models.UserRecord) (*models.UserRecord, error) {
	var out models.UserRecord
	if err := a.g.send(ctx, http.MethodPost, usersPath, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Update(ctx context.Context, u models.UserRecord) (*models.UserRecord, error) {
	var out models.UserRecord
	if err := a.g.send(ctx, http.MethodPut, userPath(u.ID), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Delete(ctx context.Context, id models.ID) error {
	return a.g.send(ctx, http.MethodDelete, userPath(id), nil, nil)
}

func (a *UsersAPI) UpdateRole(ctx context.Context, id models.ID, role models.RoleName) (*models.UserRecord, error) {
	var out models.UserRecord
	if err := a.g.send(ctx, http.MethodPatch, userPath(id), map[string]any{"role": role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) UpdateStatus(ctx context.Context, id models.ID, active bool) (*models.UserRecord, error) {
	var out models.UserRecord
	if err := a.g.send(ctx, http.MethodPatch, userPath(id), map[string]any{"is_active": active}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
