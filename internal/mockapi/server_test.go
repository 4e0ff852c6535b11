package mockapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

func TestLogin(t *testing.T) {
	_, _, url := newTestServer(t)
	c := newTestClient(t, url)

	u := c.login(AdminUsername, AdminPassword)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotEmpty(t, c.token)

	status, body := c.do(http.MethodPost, "/accounts/login/", models.Credentials{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "non_field_errors")

	status, body = c.do(http.MethodPost, "/accounts/login/", models.Credentials{Username: "david_wilson", Password: SamplePassword})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "disabled")

	status, body = c.do(http.MethodPost, "/accounts/login/", models.Credentials{})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := decodeBody[map[string][]string](t, body)
	assert.Equal(t, []string{"Username is required"}, fields["username"])
}

func TestRegister(t *testing.T) {
	_, _, url := newTestServer(t)
	c := newTestClient(t, url)

	form := models.RegisterForm{Username: "kollie", Email: "kollie@example.com", Password: "longenough", PasswordConfirm: "longenough"}
	status, body := c.do(http.MethodPost, "/accounts/api/register/", form)
	require.Equal(t, http.StatusCreated, status, string(body))
	resp := decodeBody[models.AuthResponse](t, body)
	assert.Equal(t, models.RoleContributor, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	status, body = c.do(http.MethodPost, "/accounts/api/register/", form)
	assert.Equal(t, http.StatusBadRequest, status)
	fields := decodeBody[map[string][]string](t, body)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")

	status, body = c.do(http.MethodGet, "/accounts/api/check-username/?username=kollie", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]bool{"available": false}, decodeBody[map[string]bool](t, body))

	_, body = c.do(http.MethodGet, "/accounts/api/check-email/?email=new@example.com", nil)
	assert.Equal(t, map[string]bool{"available": true}, decodeBody[map[string]bool](t, body))
}

func TestLogout_RevokesToken(t *testing.T) {
	_, _, url := newTestServer(t)
	c := newTestClient(t, url)
	c.login(AdminUsername, AdminPassword)

	status, _ := c.do(http.MethodPost, "/accounts/logout/", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodGet, "/roles/roles/", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthentication(t *testing.T) {
	_, _, url := newTestServer(t)
	c := newTestClient(t, url)

	status, _ := c.do(http.MethodGet, "/accounts/api/admin/users/", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = "garbage"
	status, _ = c.do(http.MethodGet, "/languages/", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "a bad token is rejected even on public endpoints")

	c.login("john_doe", SamplePassword)
	status, body := c.do(http.MethodGet, "/accounts/api/admin/users/", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "permission")
}

func TestLanguages(t *testing.T) {
	_, _, url := newTestServer(t)
	c := newTestClient(t, url)

	status, body := c.do(http.MethodGet, "/languages/", nil)
	require.Equal(t, http.StatusOK, status)
	p := decodeBody[page[models.Language]](t, body)
	assert.Equal(t, 5, p.Count)
	assert.Equal(t, "Bassa", p.Results[0].Name)

	c.login(AdminUsername, AdminPassword)
	status, body = c.do(http.MethodPost, "/languages/create/", models.Language{Name: "Grebo"})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := decodeBody[map[string][]string](t, body)
	assert.Contains(t, fields, "regions")

	lang := models.Language{Name: "Grebo", Family: models.FamilyKru, Regions: "Maryland", EndangermentLevel: models.EndangermentSafe}
	status, body = c.do(http.MethodPost, "/languages/create/", lang)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decodeBody[models.Language](t, body)
	require.NotEmpty(t, created.ID)

	status, body = c.do(http.MethodPatch, "/languages/"+created.ID.String()+"/", map[string]any{"regions": "Maryland, Grand Kru"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Maryland, Grand Kru", decodeBody[models.Language](t, body).Regions)
	assert.Equal(t, "Grebo", decodeBody[models.Language](t, body).Name)

	status, _ = c.do(http.MethodDelete, "/languages/"+created.ID.String()+"/", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = c.do(http.MethodDelete, "/languages/"+created.ID.String()+"/", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSetDown(t *testing.T) {
	srv, _, url := newTestServer(t)
	c := newTestClient(t, url)

	srv.SetDown(true)
	status, _ := c.do(http.MethodGet, "/languages/", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	status, _ = c.do(http.MethodPost, "/accounts/login/", models.Credentials{Username: "admin", Password: AdminPassword})
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, body := c.do(http.MethodGet, "/health/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "degraded")

	srv.SetDown(false)
	status, _ = c.do(http.MethodGet, "/languages/", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestUsers(t *testing.T) {
	_, store, url := newTestServer(t)
	c := newTestClient(t, url)
	me := c.login("rootadmin", SamplePassword)

	status, body := c.do(http.MethodPost, "/accounts/api/admin/users/", models.UserRecord{
		Username: "wokie", Email: "wokie@example.com", Role: models.RoleReviewer, IsActive: true,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeBody[map[string][]string](t, body), "password")

	status, body = c.do(http.MethodPost, "/accounts/api/admin/users/", models.UserRecord{
		Username: "wokie", Email: "wokie@example.com", Role: models.RoleReviewer, IsActive: true, Password: "wokiepass",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decodeBody[models.UserRecord](t, body)
	assert.Empty(t, created.Password)

	_, ok := store.Authenticate("wokie", "wokiepass")
	assert.True(t, ok)

	status, body = c.do(http.MethodPatch, "/accounts/api/admin/users/"+created.ID.String()+"/", map[string]any{"role": "language_lead"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, models.RoleLanguageLead, decodeBody[models.UserRecord](t, body).Role)

	status, _ = c.do(http.MethodPatch, "/accounts/api/admin/users/"+created.ID.String()+"/", map[string]any{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodPatch, "/accounts/api/admin/users/"+me.ID.String()+"/", map[string]any{"is_active": false})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = c.do(http.MethodDelete, "/accounts/api/admin/users/"+me.ID.String()+"/", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodDelete, "/accounts/api/admin/users/"+created.ID.String()+"/", nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestRoles_AdminRoleGate(t *testing.T) {
	_, _, url := newTestServer(t)
	admin := newTestClient(t, url)
	admin.login(AdminUsername, AdminPassword)

	status, _ := admin.do(http.MethodPost, "/roles/roles/", models.Role{Name: "Ops", IsAdminRole: true})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = admin.do(http.MethodPatch, "/roles/roles/2/", map[string]any{"description": "changed"})
	assert.Equal(t, http.StatusForbidden, status, "seeded role 2 is an admin role")

	status, body := admin.do(http.MethodPost, "/roles/roles/", models.Role{Name: "Translator"})
	require.Equal(t, http.StatusCreated, status, string(body))
	role := decodeBody[models.Role](t, body)

	status, _ = admin.do(http.MethodDelete, "/roles/roles/"+role.ID.String()+"/", nil)
	assert.Equal(t, http.StatusForbidden, status, "deleting roles is superuser only")

	root := newTestClient(t, url)
	root.login("rootadmin", SamplePassword)
	status, _ = root.do(http.MethodPost, "/roles/roles/", models.Role{Name: "Ops", IsAdminRole: true})
	assert.Equal(t, http.StatusCreated, status)
	status, _ = root.do(http.MethodDelete, "/roles/roles/"+role.ID.String()+"/", nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAssignments(t *testing.T) {
	_, _, url := newTestServer(t)
	c := newTestClient(t, url)
	c.login(AdminUsername, AdminPassword)

	a := models.RoleAssignment{UserID: "1", RoleID: "1"}
	status, _ := c.do(http.MethodPost, "/roles/user-roles/assign_role/", a)
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodPost, "/roles/user-roles/assign_role/", a)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodPost, "/roles/user-roles/assign_role/", models.RoleAssignment{UserID: "1", RoleID: "2"})
	assert.Equal(t, http.StatusForbidden, status)

	_, body := c.do(http.MethodGet, "/roles/user-roles/users_with_roles/", nil)
	users := decodeBody[[]models.UserWithRoles](t, body)
	require.NotEmpty(t, users)
	assert.Equal(t, "john_doe", users[0].Username)
	require.Len(t, users[0].Roles, 1)
	assert.Equal(t, "Content Moderator", users[0].Roles[0].Name)

	status, _ = c.do(http.MethodDelete, "/roles/user-roles/remove_role/", a)
	assert.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodDelete, "/roles/user-roles/remove_role/", a)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSnapshots_Restore(t *testing.T) {
	_, store, url := newTestServer(t)
	c := newTestClient(t, url)
	c.login("rootadmin", SamplePassword)

	status, body := c.do(http.MethodPost, "/system/snapshots/", models.Snapshot{Name: "before"})
	require.Equal(t, http.StatusCreated, status, string(body))
	snap := decodeBody[models.Snapshot](t, body)

	status, _ = c.do(http.MethodDelete, "/languages/1/", nil)
	require.Equal(t, http.StatusNoContent, status)
	require.Len(t, store.Languages(), 4)

	status, _ = c.do(http.MethodPost, "/system/snapshots/"+snap.ID.String()+"/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, store.Languages(), 5)

	status, _ = c.do(http.MethodPost, "/system/backups/", models.Backup{})
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = c.do(http.MethodPost, "/system/backups/", models.Backup{Name: "nightly"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "full", decodeBody[models.Backup](t, body).BackupType)
}

func TestPasswordReset(t *testing.T) {
	_, store, url := newTestServer(t)
	c := newTestClient(t, url)

	status, _ := c.do(http.MethodPost, "/accounts/forgot-password/", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, status)

	uid, ok := store.IssueResetToken("john@example.com", "tok")
	require.True(t, ok)

	body := map[string]string{"uid": uid.String(), "token": "tok", "password": "brand-new-pass"}
	status, _ = c.do(http.MethodPost, "/accounts/reset-password/", body)
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodPost, "/accounts/reset-password/", body)
	assert.Equal(t, http.StatusBadRequest, status, "tokens are single use")

	c.login("john_doe", "brand-new-pass")
}

func TestTwoFactor(t *testing.T) {
	_, store, url := newTestServer(t)
	c := newTestClient(t, url)
	u := c.login("john_doe", SamplePassword)

	status, _ := c.do(http.MethodPost, "/accounts/2fa/send-code/", map[string]string{"email": u.Email})
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodPost, "/accounts/2fa/verify/", map[string]string{"code": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)

	store.SetCode(u.ID, "ABC123")
	status, _ = c.do(http.MethodPost, "/accounts/2fa/verify/", map[string]string{"code": "abc123"})
	assert.Equal(t, http.StatusOK, status)
}
