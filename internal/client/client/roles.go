package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

type RolesAPI struct{ g *Gateway }

func (g *Gateway) Roles() *RolesAPI { return &RolesAPI{g: g} }

func rolePath(id models.ID) string {
	return "roles/roles/" + url.PathEscape(id.String()) + "/"
}

func (a *RolesAPI) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return list[models.Permission](ctx, a.g, "roles/permissions/")
}

func (a *RolesAPI) List(ctx context.Context) ([]models.Role, error) {
	return list[models.Role](ctx, a.g, "roles/roles/")
}

func (a *RolesAPI) Create(ctx context.Context, r models.Role) (*models.Role, error) {
	var out models.Role
	if err := a.g.send(ctx, http.MethodPost, "roles/roles/", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *RolesAPI) Update(ctx context.Context, r models.Role) (*models.Role, error) {
	var out models.Role
	if err := a.g.send(ctx, http.MethodPut, rolePath(r.ID), r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *RolesAPI) Delete(ctx context.Context, id models.ID) error {
	return a.g.send(ctx, http.MethodDelete, rolePath(id), nil, nil)
}

func (a *RolesAPI) UsersWithRoles(ctx context.Context) ([]models.UserWithRoles, error) {
	return list[models.UserWithRoles](ctx, a.g, "roles/user-roles/users_with_roles/")
}

func (a *RolesAPI) Assign(ctx context.Context, as models.RoleAssignment) error {
	return a.g.send(ctx, http.MethodPost, "roles/user-roles/assign_role/", as, nil)
}

// Remove sends the assignment as a DELETE body, as the backend expects.
func (a *RolesAPI) Remove(ctx context.Context, as models.RoleAssignment) error {
	return a.g.send(ctx, http.MethodDelete, "roles/user-roles/remove_role/", as, nil)
}
