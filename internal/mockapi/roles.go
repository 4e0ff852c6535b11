package mockapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Permissions())
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Roles())
}

// adminRoleDenied reports whether the caller touches an admin role without
// being a superuser.
func adminRoleDenied(r *http.Request, roles ...models.Role) bool {
	if caller(r).Role == models.RoleSuperuser {
		return false
	}
	for _, role := range roles {
		if role.IsAdminRole {
			return true
		}
	}
	return false
}

func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if !decode(w, r, &role) {
		return
	}
	if err := validate.Role(role); err != nil {
		writeError(w, err)
		return
	}
	if adminRoleDenied(r, role) {
		writeDetail(w, http.StatusForbidden, "Only superusers can create admin roles.")
		return
	}
	created, err := s.store.CreateRole(role)
	if errors.Is(err, ErrAlreadyExists) {
		writeFields(w, map[string][]string{"name": {"Role with this name already exists."}})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.store.Role(pathID(r))
	if !ok {
		writeError(w, ErrNotFound)
		return
	}
	role := existing
	if !decode(w, r, &role) {
		return
	}
	role.ID = existing.ID
	if err := validate.Role(role); err != nil {
		writeError(w, err)
		return
	}
	if adminRoleDenied(r, existing, role) {
		writeDetail(w, http.StatusForbidden, "Only superusers can edit admin roles.")
		return
	}
	updated, err := s.store.UpdateRole(role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRole(pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) usersWithRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.UsersWithRoles())
}

func (s *Server) assignRole(w http.ResponseWriter, r *http.Request) {
	var a models.RoleAssignment
	if !decode(w, r, &a) {
		return
	}
	if role, ok := s.store.Role(a.RoleID); ok && adminRoleDenied(r, role) {
		writeDetail(w, http.StatusForbidden, "Only superusers can assign admin roles.")
		return
	}
	switch err := s.store.Assign(a); {
	case errors.Is(err, ErrAlreadyExists):
		writeDetail(w, http.StatusBadRequest, "User already has this role.")
	case err != nil:
		writeError(w, err)
	default:
		writeDetail(w, http.StatusOK, "Role assigned.")
	}
}

func (s *Server) removeRole(w http.ResponseWriter, r *http.Request) {
	var a models.RoleAssignment
	if !decode(w, r, &a) {
		return
	}
	if role, ok := s.store.Role(a.RoleID); ok && adminRoleDenied(r, role) {
		writeDetail(w, http.StatusForbidden, "Only superusers can remove admin roles.")
		return
	}
	if err := s.store.Unassign(a); err != nil {
		writeError(w, err)
		return
	}
	writeDetail(w, http.StatusOK, "Role removed.")
}
