package cli

import (
	"context"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/router"
	"github.com/dmitrijs2005/langcrowd/internal/mockapi"
)

func TestLoginCommand(t *testing.T) {
	stubPasswords(t, mockapi.AdminPassword)
	e := newTestEnv(t, "admin\n")

	out := e.run(t, "login")

	assert.Contains(t, out, "Welcome, admin!")
	assert.Contains(t, out, "Now viewing: Dashboard ("+router.PathDashboard+")")
	assert.True(t, e.session.Current().IsAuthenticated)
}

func TestLoginCommandBadPassword(t *testing.T) {
	stubPasswords(t, "wrong")
	e := newTestEnv(t, "admin\n")

	out := e.run(t, "login")

	assert.Contains(t, out, "Error: Invalid username or password.")
	assert.False(t, e.session.Current().IsAuthenticated)
}

func TestGatedCommandResumesAfterLogin(t *testing.T) {
	stubPasswords(t, mockapi.SamplePassword)
	e := newTestEnv(t, "john_doe\n")

	out := e.run(t, "languages")

	assert.Contains(t, out, "Please log in to continue.")
	assert.Contains(t, out, "Welcome, john_doe!")
	assert.Contains(t, out, "Bassa")
	assert.Equal(t, "/languages", e.app.nav.Current())
}

func TestContributorCannotManageLanguages(t *testing.T) {
	e := newTestEnv(t, "")
	e.login(t, "john_doe", mockapi.SamplePassword)

	out := e.run(t, "add-language")

	assert.Equal(t, accessDenied+"\n", out)
	assert.Len(t, e.store.Languages(), 5)
}

func TestAddAndEditLanguage(t *testing.T) {
	e := newTestEnv(t, strings.Join([]string{
		"Grebo", "kru", "Grand Gedeh", "vulnerable", "250,000", "", "",
		"", "", "", "definitely_endangered", "", "", "",
	}, "\n")+"\n")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)

	out := e.run(t, "add-language")
	assert.Contains(t, out, "Language added successfully")

	var id string
	for _, l := range e.store.Languages() {
		if l.Name == "Grebo" {
			id = string(l.ID)
			require.NotNil(t, l.EstimatedSpeakers)
			assert.Equal(t, 250000, *l.EstimatedSpeakers)
		}
	}
	require.NotEmpty(t, id)

	out = e.run(t, "edit-language "+id)
	assert.Contains(t, out, "Name [Grebo]")
	assert.Contains(t, out, "Language updated successfully")

	out = e.run(t, "languages")
	assert.Contains(t, out, "Grebo")
	assert.Contains(t, out, "Definitely Endangered")
}

func TestOfflineLanguageIsListedAsPending(t *testing.T) {
	e := newTestEnv(t, "Mano\nmande\nNimba\nvulnerable\n\n\n\n")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)
	e.run(t, "languages")

	e.api.SetDown(true)
	out := e.run(t, "add-language")
	assert.Contains(t, out, "Language added locally (pending sync)")

	out = e.run(t, "languages")
	require.Contains(t, out, "Mano")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Mano") {
			assert.Contains(t, line, "pending")
		}
	}

	e.api.SetDown(false)
	assert.Contains(t, e.run(t, "sync"), "1 synced, 0 pending")
	assert.True(t, slices.ContainsFunc(e.store.Languages(), func(l models.Language) bool { return l.Name == "Mano" }))
}

func TestPendingChangesDoNotFollowNextUser(t *testing.T) {
	e := newTestEnv(t, "Mano\nmande\nNimba\nvulnerable\n\n\n\n")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)

	e.api.SetDown(true)
	assert.Contains(t, e.run(t, "add-language"), "added locally (pending sync)")
	e.api.SetDown(false)

	require.NoError(t, e.session.Logout(context.Background()))
	e.session.Wait()
	e.login(t, "john_doe", mockapi.SamplePassword)

	assert.Contains(t, e.run(t, "sync"), "0 synced, 0 pending")
	assert.NotContains(t, e.run(t, "languages"), "Mano")
	assert.False(t, slices.ContainsFunc(e.store.Languages(), func(l models.Language) bool { return l.Name == "Mano" }))
}

func TestAddLanguageRejectsBadSpeakers(t *testing.T) {
	e := newTestEnv(t, "Grebo\nkru\nGrand Gedeh\nvulnerable\nmany\n")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)

	out := e.run(t, "add-language")

	assert.Contains(t, out, "Error: estimated_speakers: Enter a whole number")
	assert.Len(t, e.store.Languages(), 5)
}

func TestAdminCannotOpenUserManagement(t *testing.T) {
	e := newTestEnv(t, "")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)

	assert.Equal(t, accessDenied+"\n", e.run(t, "users"))
}

func TestSuperuserManagesUsers(t *testing.T) {
	e := newTestEnv(t, "yes\n")
	e.login(t, "rootadmin", mockapi.SamplePassword)

	out := e.run(t, "users")
	assert.Contains(t, out, "john_doe")
	assert.Contains(t, out, "Language Lead")

	out = e.run(t, "set-role 1 language lead")
	assert.Contains(t, out, "User updated successfully")
	u, ok := e.store.User("1")
	require.True(t, ok)
	assert.Equal(t, "language_lead", string(u.Role))

	out = e.run(t, "set-status 1 inactive")
	assert.Contains(t, out, "User updated successfully")

	out = e.run(t, "set-role 1 wizard")
	assert.Contains(t, out, "role: Select a valid role")

	out = e.run(t, "delete-user 1")
	assert.Contains(t, out, "User deleted successfully")
	_, ok = e.store.User("1")
	assert.False(t, ok)
}

func TestRolesAndAssignments(t *testing.T) {
	e := newTestEnv(t, strings.Join([]string{
		"Translators", "Handles translations", "", "review_contributions, 8", "n",
	}, "\n")+"\n")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)

	out := e.run(t, "roles")
	assert.Contains(t, out, "Content Moderator")
	assert.Contains(t, out, "mary_smith")

	out = e.run(t, "permissions")
	assert.Contains(t, out, "CODENAME")

	out = e.run(t, "add-role")
	assert.Contains(t, out, "Role added successfully")

	out = e.run(t, "assign-role 1 1")
	assert.Contains(t, out, "successfully")
	out = e.run(t, "remove-role 2 1")
	assert.Contains(t, out, "successfully")

	out = e.run(t, "delete-role 1")
	assert.Contains(t, out, "Error:")
}

func TestAddRoleUnknownPermission(t *testing.T) {
	e := newTestEnv(t, "Translators\n\nno_such_permission\n")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)

	out := e.run(t, "add-role")

	assert.Contains(t, out, "Unknown permission no_such_permission")
}

func TestSystemCommands(t *testing.T) {
	e := newTestEnv(t, "nope\nLOCK\n")
	e.login(t, "rootadmin", mockapi.SamplePassword)

	out := e.run(t, "backup nightly")
	assert.Contains(t, out, "Backup added successfully")
	assert.Contains(t, e.run(t, "backups"), "nightly")

	out = e.run(t, "snapshot before-import")
	assert.Contains(t, out, "Snapshot added successfully")
	assert.Contains(t, e.run(t, "snapshots"), "before-import")

	assert.Contains(t, e.run(t, "lock-all"), "Cancelled.")
	e.run(t, "lock-all")
	u, ok := e.store.User("1")
	require.True(t, ok)
	assert.False(t, u.IsActive)
	me, ok := e.store.User("4")
	require.True(t, ok)
	assert.True(t, me.IsActive)

	e.run(t, "unlock-all")
	u, ok = e.store.User("1")
	require.True(t, ok)
	assert.True(t, u.IsActive)
}

func TestExportWritesReport(t *testing.T) {
	e := newTestEnv(t, "")
	e.login(t, "rootadmin", mockapi.SamplePassword)

	out := e.run(t, "export")

	require.Contains(t, out, "Report written to")
	entries, err := os.ReadDir(e.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFactoryReset(t *testing.T) {
	e := newTestEnv(t, "RESET\n")
	e.login(t, "rootadmin", mockapi.SamplePassword)

	e.run(t, "factory-reset")

	assert.False(t, e.session.Current().IsAuthenticated)
	assert.Equal(t, router.PathRoot, e.app.nav.Current())
}

func TestRevokedTokenEndsSession(t *testing.T) {
	e := newTestEnv(t, "")
	e.login(t, mockapi.AdminUsername, mockapi.AdminPassword)
	e.store.Revoke(e.session.Current().Token)

	out := e.run(t, "roles")

	assert.Contains(t, out, "Your session has expired. Please log in again.")
	assert.False(t, e.session.Current().IsAuthenticated)
}

func TestHelpHidesUnavailableCommands(t *testing.T) {
	e := newTestEnv(t, "")
	e.login(t, "john_doe", mockapi.SamplePassword)

	help := e.app.helpText()

	assert.Contains(t, help, "  languages ")
	assert.NotContains(t, help, "add-language")
	assert.NotContains(t, help, "  login ")
	assert.NotContains(t, help, "factory-reset")
}

func TestUsageOnMissingArgs(t *testing.T) {
	e := newTestEnv(t, "")

	assert.Equal(t, "Usage: delete-user <user-id>\n", e.run(t, "delete-user"))
}

func TestWhoAmIAndLogout(t *testing.T) {
	e := newTestEnv(t, "")
	assert.Equal(t, "Not logged in.\n", e.run(t, "whoami"))
	assert.Equal(t, "You are not logged in.\n", e.run(t, "logout"))

	e.login(t, "mary_smith", mockapi.SamplePassword)
	assert.Equal(t, "mary_smith <mary@example.com>, Reviewer\n", e.run(t, "whoami"))
	assert.Contains(t, e.run(t, "logout"), "Logged out.")
	assert.False(t, e.session.Current().IsAuthenticated)
}

func TestRunGreetsAndExits(t *testing.T) {
	e := newTestEnv(t, "help\nexit\n")

	e.app.Run(context.Background())

	out := e.out.String()
	assert.Contains(t, out, "Welcome to langcrowd")
	assert.Contains(t, out, "Switched to online mode")
	assert.Contains(t, out, "Available commands:")
	assert.Contains(t, out, "Bye!")
}
