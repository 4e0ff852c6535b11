package models

// Permission is a grantable capability.
type Permission struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Codename    string `json:"codename"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

func (p Permission) RecordID() ID { return p.ID }

func (p Permission) WithID(id ID) Permission {
	p.ID = id
	return p
}

// Role is a custom role with a set of permissions. Only a superuser may
// create, edit or delete a role flagged IsAdminRole.
type Role struct {
	ID            ID     `json:"id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PermissionIDs []ID   `json:"permission_ids"`
	IsAdminRole   bool   `json:"is_admin_role"`
}

func (r Role) RecordID() ID { return r.ID }

func (r Role) WithID(id ID) Role {
	r.ID = id
	return r
}

// RoleAssignment links a user to a custom role.
type RoleAssignment struct {
	UserID ID `json:"user_id"`
	RoleID ID `json:"role_id"`
}

func (a RoleAssignment) RecordID() ID { return a.UserID + ":" + a.RoleID }

// WithID is a no-op: an assignment is identified by its user and role.
func (a RoleAssignment) WithID(ID) RoleAssignment { return a }

// UserWithRoles is a user together with the custom roles assigned to them.
type UserWithRoles struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username"`
	Roles    []Role `json:"roles"`
}

func (u UserWithRoles) RecordID() ID { return u.ID }

func (u UserWithRoles) WithID(id ID) UserWithRoles {
	u.ID = id
	return u
}
