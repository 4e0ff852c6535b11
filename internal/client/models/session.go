// Package models defines client-side data models shared by the session
// store, the API gateway and the mutation services.
package models

import "strings"

// RoleName is one of the built-in platform roles.
type RoleName string

const (
	RoleContributor  RoleName = "contributor"
	RoleReviewer     RoleName = "reviewer"
	RoleLanguageLead RoleName = "language_lead"
	RoleAdmin        RoleName = "admin"
	RoleSuperuser    RoleName = "superuser"
)

// AllRoles lists the built-in roles from least to most privileged.
var AllRoles = []RoleName{RoleContributor, RoleReviewer, RoleLanguageLead, RoleAdmin, RoleSuperuser}

// Valid reports whether r is a built-in role.
func (r RoleName) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole normalises user input such as "Language Lead" into a RoleName.
func ParseRole(s string) (RoleName, bool) {
	r := RoleName(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	return r, r.Valid()
}

// User is the profile of the logged-in account.
type User struct {
	ID              ID       `json:"id,omitempty"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Role            RoleName `json:"role"`
	ReputationScore int      `json:"reputation_score,omitempty"`
	IsVerified      bool     `json:"is_verified,omitempty"`
}

// Session is the client-held record of the current user and credential.
// IsAuthenticated is true iff Token is non-empty and User is non-nil.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// NewSession builds an authenticated session. An empty token or nil user
// yields the anonymous session.
func NewSession(user *User, token string) Session {
	if user == nil || token == "" {
		return Session{}
	}
	u := *user
	return Session{User: &u, Token: token, IsAuthenticated: true}
}

// Consistent reports whether the authentication flag agrees with the
// presence of both token and user.
func (s Session) Consistent() bool {
	return s.IsAuthenticated == (s.Token != "" && s.User != nil)
}

// Role returns the session's role, or "" when anonymous.
func (s Session) Role() RoleName {
	if !s.IsAuthenticated || s.User == nil {
		return ""
	}
	return s.User.Role
}

// Clone returns a copy that does not share the user pointer.
func (s Session) Clone() Session {
	if s.User == nil {
		return s
	}
	u := *s.User
	s.User = &u
	return s
}

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterForm is submitted to the registration endpoint.
type RegisterForm struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	PasswordConfirm    string `json:"password_confirm"`
	PreferredLanguages []ID   `json:"preferred_languages"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
