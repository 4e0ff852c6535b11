package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var u models.UserRecord
	if !decode(w, r, &u) {
		return
	}
	if err := validate.NewUser(u); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.store.CreateUser(u, u.Password)
	if errors.Is(err, ErrAlreadyExists) {
		writeFields(w, map[string][]string{"username": {"A user with that username or email already exists."}})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info(r.Context(), "user created", "username", created.Username, "by", caller(r).Username)
	writeJSON(w, http.StatusCreated, created.UserRecord)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserRecord
	if !decode(w, r, &in) {
		return
	}
	if err := validate.Apply(
		validate.Required("username", in.Username, "Username is required"),
		validate.Email("email", in.Email),
		validate.OneOf("role", in.Role, models.AllRoles, "Unknown role"),
	); err != nil {
		writeError(w, err)
		return
	}
	s.applyUser(w, r, func(a *account) error {
		a.Username = in.Username
		a.Email = in.Email
		a.Role = in.Role
		a.IsActive = in.IsActive
		return nil
	})
}

// patchUser handles the partial updates used for role and status changes.
func (s *Server) patchUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username *string          `json:"username"`
		Email    *string          `json:"email"`
		Role     *models.RoleName `json:"role"`
		IsActive *bool            `json:"is_active"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.Role != nil && !in.Role.Valid() {
		writeFields(w, map[string][]string{"role": {`"` + string(*in.Role) + `" is not a valid choice.`}})
		return
	}
	s.applyUser(w, r, func(a *account) error {
		if in.Username != nil {
			a.Username = strings.TrimSpace(*in.Username)
		}
		if in.Email != nil {
			a.Email = strings.TrimSpace(*in.Email)
		}
		if in.Role != nil {
			a.Role = *in.Role
		}
		if in.IsActive != nil {
			a.IsActive = *in.IsActive
		}
		return nil
	})
}

func (s *Server) applyUser(w http.ResponseWriter, r *http.Request, fn func(*account) error) {
	id := pathID(r)
	if id == caller(r).ID && locksOut(caller(r), fn) {
		writeDetail(w, http.StatusBadRequest, "You cannot deactivate or demote your own account.")
		return
	}
	rec, err := s.store.UpdateUser(id, fn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// locksOut reports whether fn would deactivate or demote me.
func locksOut(me *account, fn func(*account) error) bool {
	after := *me
	if err := fn(&after); err != nil {
		return false
	}
	return !after.IsActive || after.Role != me.Role
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == caller(r).ID {
		writeDetail(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}
	if err := s.store.DeleteUser(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
