package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

func sessionFor(role models.RoleName) models.Session {
	if role == "" {
		return models.Session{}
	}
	return models.NewSession(&models.User{ID: "1", Username: "u", Role: role}, "tok")
}

func TestResolve_AnonymousProtectedRedirectsToLogin(t *testing.T) {
	r := New(DefaultRoutes())

	for _, rt := range r.Routes() {
		if rt.Gate != Protected {
			continue
		}
		d := r.Resolve(rt.Path, models.Session{})
		assert.Equal(t, RedirectLogin, d.Kind, rt.Path)
		assert.Equal(t, PathLogin, d.Path, rt.Path)
		assert.Equal(t, rt.Path, d.Next, rt.Path)
	}
}

func TestResolve_ForbiddenNeverRedirects(t *testing.T) {
	r := New(DefaultRoutes())

	for _, role := range models.AllRoles {
		for _, rt := range r.Routes() {
			d := r.Resolve(rt.Path, sessionFor(role))
			switch {
			case rt.Gate == GuestOnly:
				assert.Equal(t, Redirect, d.Kind)
			case rt.Gate == Protected && len(rt.Roles) > 0 && !rt.Roles.Includes(role):
				assert.Equal(t, Forbidden, d.Kind, "%s on %s", role, rt.Path)
				assert.Equal(t, rt.Path, d.Path)
				assert.Empty(t, d.Next)
			default:
				assert.Equal(t, Render, d.Kind, "%s on %s", role, rt.Path)
			}
		}
	}
}

func TestResolve_AdminViews(t *testing.T) {
	r := New(DefaultRoutes())

	tests := []struct {
		path string
		role models.RoleName
		want Kind
	}{
		{"/admin", models.RoleAdmin, Render},
		{"/admin", models.RoleLanguageLead, Forbidden},
		{"/admin/languages", models.RoleAdmin, Render},
		{"/admin/users", models.RoleAdmin, Forbidden},
		{"/admin/users", models.RoleSuperuser, Render},
		{"/admin/snapshot", models.RoleAdmin, Forbidden},
		{"/admin/security", models.RoleSuperuser, Render},
		{"/review", models.RoleContributor, Forbidden},
		{"/review", models.RoleReviewer, Render},
		{"/review", models.RoleLanguageLead, Render},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.path, sessionFor(tt.role)).Kind)
		})
	}
}

func TestResolve_GuestOnlyAndPublic(t *testing.T) {
	r := New(DefaultRoutes())

	d := r.Resolve("/login", sessionFor(models.RoleContributor))
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, PathRoot, d.Path)

	assert.Equal(t, Render, r.Resolve("/register", models.Session{}).Kind)
	assert.Equal(t, Render, r.Resolve("/2fa", models.Session{}).Kind)
	assert.Equal(t, Render, r.Resolve("/", sessionFor(models.RoleAdmin)).Kind)
}

func TestResolve_NotFound(t *testing.T) {
	r := New(DefaultRoutes())
	assert.Equal(t, NotFound, r.Resolve("/nope", sessionFor(models.RoleSuperuser)).Kind)
	assert.Equal(t, NotFound, r.Resolve("/admin/unknown", models.Session{}).Kind)
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/":                 "/",
		"admin/":            "/admin",
		"/languages?page=2": "/languages",
		"/admin/users/":     "/admin/users",
		"///":               "/",
		"/datasets#top":     "/datasets",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

type staticSession struct{ s models.Session }

func (f *staticSession) Current() models.Session { return f.s }

func TestNavigator_ResumesAfterLogin(t *testing.T) {
	src := &staticSession{}
	n := NewNavigator(New(DefaultRoutes()), src)

	d := n.Open("/admin/languages")
	require.Equal(t, RedirectLogin, d.Kind)
	assert.Equal(t, PathLogin, n.Current())
	assert.Equal(t, "/admin/languages", n.Intended())

	src.s = sessionFor(models.RoleAdmin)
	d = n.AfterLogin()
	assert.Equal(t, Render, d.Kind)
	assert.Equal(t, "/admin/languages", n.Current())
	assert.Empty(t, n.Intended())
}

func TestNavigator_AfterLoginDefaultsToDashboard(t *testing.T) {
	src := &staticSession{s: sessionFor(models.RoleContributor)}
	n := NewNavigator(New(DefaultRoutes()), src)

	d := n.AfterLogin()
	assert.Equal(t, Render, d.Kind)
	assert.Equal(t, PathDashboard, n.Current())
}

func TestNavigator_ForbiddenStaysPut(t *testing.T) {
	src := &staticSession{s: sessionFor(models.RoleContributor)}
	n := NewNavigator(New(DefaultRoutes()), src)

	d := n.Open("/admin")
	assert.Equal(t, Forbidden, d.Kind)
	assert.Equal(t, "/admin", n.Current())
	assert.Empty(t, n.Intended())
}

func TestNavigator_ForceLogin(t *testing.T) {
	src := &staticSession{s: sessionFor(models.RoleAdmin)}
	n := NewNavigator(New(DefaultRoutes()), src)

	n.Open("/admin/roles")
	src.s = models.Session{}
	n.ForceLogin()

	assert.Equal(t, PathLogin, n.Current())
	assert.Equal(t, "/admin/roles", n.Intended())

	n2 := NewNavigator(New(DefaultRoutes()), src)
	n2.ForceLogin()
	assert.Empty(t, n2.Intended(), "public views are not remembered")
}
