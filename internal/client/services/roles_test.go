package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

func TestRoleService_AdminRoleNeedsSuperuser(t *testing.T) {
	ctx := context.Background()
	adminRole := models.Role{Name: "Moderators", IsAdminRole: true}

	t.Run("admin", func(t *testing.T) {
		e := newEnv(t, models.RoleAdmin)
		res := e.svc.Roles.Create(ctx, adminRole)
		assert.Equal(t, models.Failed, res.Outcome)
		assert.ErrorIs(t, res.Err, common.ErrorForbidden)
		assert.Zero(t, e.backend.count("roles.create"))
	})

	t.Run("superuser", func(t *testing.T) {
		e := newEnv(t, models.RoleSuperuser)
		res := e.svc.Roles.Create(ctx, adminRole)
		assert.Equal(t, models.Confirmed, res.Outcome, res.Message)
		assert.Equal(t, "Role added successfully", res.Message)
	})
}

func TestRoleService_AdminCannotDemoteAdminRole(t *testing.T) {
	e := newEnv(t, models.RoleSuperuser)
	ctx := context.Background()

	created := e.svc.Roles.Create(ctx, models.Role{Name: "Moderators", IsAdminRole: true})
	require.Equal(t, models.Confirmed, created.Outcome)

	e.session.sess = models.NewSession(&models.User{ID: "2", Role: models.RoleAdmin}, "tok")
	changed := created.Item
	changed.IsAdminRole = false
	res := e.svc.Roles.Update(ctx, changed)
	assert.Equal(t, models.Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, common.ErrorForbidden)
}

func TestRoleService_DeleteIsSuperuserOnly(t *testing.T) {
	e := newEnv(t, models.RoleAdmin)
	ctx := context.Background()

	created := e.svc.Roles.Create(ctx, models.Role{Name: "Transcriber"})
	require.Equal(t, models.Confirmed, created.Outcome)

	res := e.svc.Roles.Delete(ctx, created.Item.ID)
	assert.Equal(t, models.Failed, res.Outcome)
	assert.Equal(t, "You do not have permission to perform this action", res.Message)

	e.session.sess = models.NewSession(&models.User{ID: "1", Role: models.RoleSuperuser}, "tok")
	res = e.svc.Roles.Delete(ctx, created.Item.ID)
	assert.Equal(t, models.Confirmed, res.Outcome)
	assert.Empty(t, e.roles.snapshot())
}

func TestRoleService_PermissionsFallBack(t *testing.T) {
	e := newEnv(t, models.RoleAdmin)
	ctx := context.Background()
	e.roles.permissions = []models.Permission{
		{ID: "1", Name: "Can review", Codename: "review_content", Category: "content"},
	}

	online, err := e.svc.Roles.Permissions(ctx)
	require.NoError(t, err)
	require.Len(t, online, 1)

	e.backend.setDown(true)
	_, err = e.svc.Roles.Refresh(ctx)
	require.NoError(t, err)
	offline, err := e.svc.Roles.Permissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, online, offline)
}

func TestAssignmentService(t *testing.T) {
	ctx := context.Background()
	a := models.RoleAssignment{UserID: "7", RoleID: "3"}

	t.Run("confirmed", func(t *testing.T) {
		e := newEnv(t, models.RoleAdmin)
		e.roles.withRoles = []models.UserWithRoles{{ID: "7", Username: "john_doe"}}

		_, err := e.svc.Assignments.UsersWithRoles(ctx)
		require.NoError(t, err)

		res := e.svc.Assignments.Assign(ctx, a)
		require.Equal(t, models.Confirmed, res.Outcome)
		assert.Equal(t, []models.RoleAssignment{a}, e.roles.assigned)

		// the users-with-roles view was invalidated
		_, err = e.svc.Assignments.UsersWithRoles(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, e.backend.count("users_with_roles.list"))

		pending, err := e.svc.Assignments.Pending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("remove offline then sync", func(t *testing.T) {
		e := newEnv(t, models.RoleAdmin)
		e.backend.setDown(true)

		res := e.svc.Assignments.Remove(ctx, a)
		require.Equal(t, models.AppliedLocally, res.Outcome)
		assert.Equal(t, "Role assignment deleted locally (pending sync)", res.Message)

		e.backend.setDown(false)
		report, err := e.svc.Sync.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Confirmed)
		assert.Equal(t, []models.RoleAssignment{a}, e.roles.removed)
	})

	t.Run("assign then remove offline cancels out", func(t *testing.T) {
		e := newEnv(t, models.RoleAdmin)
		e.backend.setDown(true)

		require.Equal(t, models.AppliedLocally, e.svc.Assignments.Assign(ctx, a).Outcome)
		require.Equal(t, models.AppliedLocally, e.svc.Assignments.Remove(ctx, a).Outcome)

		n, err := e.svc.Sync.PendingCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("contributor", func(t *testing.T) {
		e := newEnv(t, models.RoleContributor)
		res := e.svc.Assignments.Assign(ctx, a)
		assert.ErrorIs(t, res.Err, common.ErrorForbidden)
	})

	t.Run("missing role", func(t *testing.T) {
		e := newEnv(t, models.RoleAdmin)
		res := e.svc.Assignments.Assign(ctx, models.RoleAssignment{UserID: "7"})
		assert.Equal(t, models.Failed, res.Outcome)
		assert.Equal(t, "validation failed: role_id: Role is required", res.Message)
	})
}
