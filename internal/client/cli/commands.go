package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/router"
)

type command struct {
	name  string
	usage string
	// route is the view the command belongs to; it is opened through the
	// navigator before run. Empty means the command is not gated.
	route string
	args  int
	run   func(ctx context.Context, args []string) error
}

func (a *App) commands() []command {
	return []command{
		{name: "login", usage: "log in", route: router.PathLogin, run: a.Login},
		{name: "register", usage: "create an account", route: "/register", run: a.Register},
		{name: "forgot-password", usage: "request a password reset", route: "/forgot-password", run: a.ForgotPassword},
		{name: "reset-password", usage: "set a new password with a reset token", route: "/reset-password", run: a.ResetPassword},
		{name: "2fa", usage: "verify a two-factor code", route: "/2fa", run: a.TwoFactor},
		{name: "logout", usage: "log out", run: a.Logout},
		{name: "whoami", usage: "show the current user", run: a.WhoAmI},
		{name: "open", usage: "open <path>: navigate to a view", args: 1, run: a.Open},
		{name: "routes", usage: "list views", run: a.Routes},

		{name: "languages", usage: "list languages", route: "/languages", run: a.Languages},
		{name: "add-language", usage: "add a language", route: "/admin/languages", run: a.AddLanguage},
		{name: "edit-language", usage: "edit-language <id>: edit a language", route: "/admin/languages", args: 1, run: a.EditLanguage},
		{name: "delete-language", usage: "delete-language <id>", route: "/admin/languages", args: 1, run: a.DeleteLanguage},

		{name: "users", usage: "list user accounts", route: "/admin/users", run: a.Users},
		{name: "add-user", usage: "create a user account", route: "/admin/users", run: a.AddUser},
		{name: "set-role", usage: "set-role <user-id> <role>", route: "/admin/users", args: 2, run: a.SetRole},
		{name: "set-status", usage: "set-status <user-id> active|inactive", route: "/admin/users", args: 2, run: a.SetStatus},
		{name: "delete-user", usage: "delete-user <user-id>", route: "/admin/users", args: 1, run: a.DeleteUser},

		{name: "roles", usage: "list custom roles and assignments", route: "/admin/roles", run: a.Roles},
		{name: "permissions", usage: "list permissions", route: "/admin/roles", run: a.Permissions},
		{name: "add-role", usage: "create a custom role", route: "/admin/roles", run: a.AddRole},
		{name: "delete-role", usage: "delete-role <role-id>", route: "/admin/roles", args: 1, run: a.DeleteRole},
		{name: "assign-role", usage: "assign-role <user-id> <role-id>", route: "/admin/roles", args: 2, run: a.AssignRole},
		{name: "remove-role", usage: "remove-role <user-id> <role-id>", route: "/admin/roles", args: 2, run: a.RemoveRole},

		{name: "sync", usage: "push pending local changes", route: router.PathDashboard, run: a.Sync},
		{name: "backups", usage: "list backups", route: "/admin/backup", run: a.Backups},
		{name: "backup", usage: "backup <name>: create a backup", route: "/admin/backup", args: 1, run: a.CreateBackup},
		{name: "snapshots", usage: "list snapshots", route: "/admin/snapshot", run: a.Snapshots},
		{name: "snapshot", usage: "snapshot <name>: create a snapshot", route: "/admin/snapshot", args: 1, run: a.CreateSnapshot},
		{name: "restore", usage: "restore <snapshot-id>", route: "/admin/snapshot", args: 1, run: a.RestoreSnapshot},
		{name: "lock-all", usage: "deactivate every other account", route: "/admin/system", run: a.LockAll},
		{name: "unlock-all", usage: "reactivate every account", route: "/admin/system", run: a.UnlockAll},
		{name: "factory-reset", usage: "wipe local data and end the session", route: "/admin/system", run: a.FactoryReset},
		{name: "export", usage: "write a system report", route: "/admin/system", run: a.Export},
	}
}

func (a *App) lookup(name string) (command, bool) {
	for _, c := range a.commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (a *App) helpText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	session := a.session.Current()
	for _, c := range a.commands() {
		if c.route != "" {
			d := a.routes.Resolve(c.route, session)
			if d.Kind == router.Forbidden || d.Kind == router.Redirect {
				continue
			}
		}
		fmt.Fprintf(&b, "  %-16s %s\n", c.name, c.usage)
	}
	b.WriteString("  exit             leave the program")
	return b.String()
}

func (a *App) exec(ctx context.Context, name string, args []string) error {
	c, ok := a.lookup(name)
	if !ok {
		return errUnknownCommand
	}
	if len(args) < c.args {
		a.println("Usage:", c.usage)
		return nil
	}
	if c.route != "" && !a.enter(ctx, c.route) {
		return nil
	}
	if err := c.run(ctx, args); err != nil {
		a.logger.Debug(ctx, "command failed", "command", name, "err", err)
		a.println("Error:", describe(err))
	}
	return nil
}

// enter opens path and reports whether the view may be shown. An anonymous
// user is asked to log in and resumes at path afterwards.
func (a *App) enter(ctx context.Context, path string) bool {
	d := a.nav.Open(path)
	switch d.Kind {
	case router.Render:
		return true
	case router.RedirectLogin:
		a.println("Please log in to continue.")
		if err := a.authenticate(ctx); err != nil {
			a.println("Error:", describe(err))
			return false
		}
		d = a.nav.AfterLogin()
		if d.Kind == router.Forbidden {
			a.println(accessDenied)
		}
		return d.Kind == router.Render
	case router.Forbidden:
		a.println(accessDenied)
	case router.Redirect:
		a.println("You are already signed in.")
	default:
		a.println("Page not found:", d.Path)
	}
	return false
}

const accessDenied = "Access denied: you do not have permission to view this page."
