// Package router maps view paths to render decisions based on the current
// session, and keeps track of where the user is and where they wanted to go.
package router

import (
	"github.com/dmitrijs2005/langcrowd/internal/client/access"
)

// Gate is the access class of a route.
type Gate int

const (
	Public Gate = iota
	// GuestOnly routes are shown to anonymous users only.
	GuestOnly
	// Protected routes need a session and, when Roles is set, one of those roles.
	Protected
)

type Route struct {
	Path  string
	Title string
	Gate  Gate
	Roles access.Roles
}

const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// DefaultRoutes is the route table of the application.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Title: "Home", Gate: Public},
		{Path: "/home", Title: "Home", Gate: Public},
		{Path: "/forgot-password", Title: "Forgot password", Gate: Public},
		{Path: "/reset-password", Title: "Reset password", Gate: Public},
		{Path: "/2fa", Title: "Two-factor verification", Gate: Public},

		{Path: PathLogin, Title: "Log in", Gate: GuestOnly},
		{Path: "/register", Title: "Register", Gate: GuestOnly},

		{Path: PathDashboard, Title: "Dashboard", Gate: Protected},
		{Path: "/languages", Title: "Languages", Gate: Protected},
		{Path: "/translate", Title: "Translation workspace", Gate: Protected},
		{Path: "/record", Title: "Audio studio", Gate: Protected},
		{Path: "/profile", Title: "Profile", Gate: Protected},
		{Path: "/datasets", Title: "Datasets", Gate: Protected},
		{Path: "/review", Title: "Review queue", Gate: Protected, Roles: access.Reviewers},

		{Path: "/admin", Title: "Admin", Gate: Protected, Roles: access.Admins},
		{Path: "/admin/overview", Title: "Admin overview", Gate: Protected, Roles: access.Admins},
		{Path: "/admin/roles", Title: "Roles & permissions", Gate: Protected, Roles: access.Admins},
		{Path: "/admin/languages", Title: "Language management", Gate: Protected, Roles: access.Admins},
		{Path: "/admin/content", Title: "Content moderation", Gate: Protected, Roles: access.Admins},
		{Path: "/admin/analytics", Title: "Analytics", Gate: Protected, Roles: access.Admins},
		{Path: "/admin/users", Title: "User management", Gate: Protected, Roles: access.Superusers},
		{Path: "/admin/backup", Title: "Backups", Gate: Protected, Roles: access.Superusers},
		{Path: "/admin/snapshot", Title: "Snapshots", Gate: Protected, Roles: access.Superusers},
		{Path: "/admin/system", Title: "System", Gate: Protected, Roles: access.Superusers},
		{Path: "/admin/security", Title: "Security", Gate: Protected, Roles: access.Superusers},
	}
}
