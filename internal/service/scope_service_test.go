package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

func TestRequireRole_ViewerFailsEveryHigherGate(t *testing.T) {
	f := newFixture()
	viewer := f.addUser(types.RoleViewer, true)
	ctx := context.Background()

	for _, minRole := range []string{types.RoleCoach, types.RoleStaff, types.RoleAdmin} {
		_, _, err := f.scope.RequireRole(ctx, viewer.ID, minRole)
		assert.ErrorIs(t, err, ErrForbidden, "viewer must not pass the %s gate", minRole)
	}

	// The viewer gate itself passes.
	profile, role, err := f.scope.RequireRole(ctx, viewer.ID, types.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, viewer.ID, profile.ID)
	assert.Equal(t, types.RoleViewer, role)
}

func TestRequireRole_EmptyCallerIsUnauthenticated(t *testing.T) {
	f := newFixture()

	_, _, err := f.scope.RequireRole(context.Background(), "", types.RoleViewer)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireRole_UnknownCallerIsUnauthenticated(t *testing.T) {
	f := newFixture()

	_, _, err := f.scope.RequireRole(context.Background(), "no-such-id", types.RoleViewer)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireRole_SuspendedBeforeRoleComparison(t *testing.T) {
	f := newFixture()
	suspended := f.addUser(types.RoleAdmin, false)

	// Even an admin gets the suspension error, never a role error:
	// the active check runs first.
	_, _, err := f.scope.RequireRole(context.Background(), suspended.ID, types.RoleAdmin)
	assert.ErrorIs(t, err, ErrSuspended)

	_, _, err = f.scope.RequireRole(context.Background(), suspended.ID, types.RoleViewer)
	assert.ErrorIs(t, err, ErrSuspended)
}

func TestRequireRole_StoreErrorPropagates(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection refused")
	f.profiles.err = boom

	_, _, err := f.scope.RequireRole(context.Background(), "any", types.RoleViewer)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_AdminAndStaffAreUnrestricted(t *testing.T) {
	f := newFixture()
	admin := f.addUser(types.RoleAdmin, true)
	staff := f.addUser(types.RoleStaff, true)

	for _, id := range []string{admin.ID, staff.ID} {
		scope, err := f.scope.Resolve(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, scope.Unrestricted())
		assert.True(t, scope.CanEditTeam("any-team-at-all"))
	}
}

func TestResolve_ViewerGetsEmptyScope(t *testing.T) {
	f := newFixture()
	viewer := f.addUser(types.RoleViewer, true)
	team := f.addTeam("U13 A")

	scope, err := f.scope.Resolve(context.Background(), viewer.ID)
	require.NoError(t, err)

	assert.False(t, scope.Unrestricted())
	assert.NotNil(t, scope.EditableTeamIDs)
	assert.Empty(t, scope.EditableTeamIDs)
	assert.False(t, scope.CanEditTeam(team.ID))
}

func TestResolve_CoachScopeUnionsAssignmentAndLegacyRows(t *testing.T) {
	f := newFixture()
	coach := f.addUser(types.RoleCoach, true)
	t1 := f.addTeam("U13 A")
	t2 := f.addTeam("U15 A")
	t3 := f.addTeam("Seniors 1")

	f.assignCoach(t1.ID, coach.ID)
	f.assignCoach(t2.ID, coach.ID)
	// t2 also appears in the legacy table; it must not be doubled.
	f.teams.memberships[coach.ID] = []string{t2.ID, t3.ID}

	scope, err := f.scope.Resolve(context.Background(), coach.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{t1.ID, t2.ID, t3.ID}, scope.EditableTeamIDs)
	assert.True(t, scope.CanEditTeam(t1.ID))
	assert.True(t, scope.CanEditTeam(t3.ID))
	assert.False(t, scope.CanEditTeam("elsewhere"))
}

func TestResolve_ViewerWithAssignedTeamsIsTreatedAsCoach(t *testing.T) {
	f := newFixture()
	// Stale role field: the profile says viewer but a team points at them.
	user := f.addUser(types.RoleViewer, true)
	team := f.addTeam("U17 A")
	f.assignCoach(team.ID, user.ID)

	scope, err := f.scope.Resolve(context.Background(), user.ID)
	require.NoError(t, err)

	assert.False(t, scope.Unrestricted())
	assert.True(t, scope.CanEditTeam(team.ID))
}

func TestResolve_UnknownRoleDegradesToViewer(t *testing.T) {
	f := newFixture()
	user := f.addUser("superuser", true)

	scope, err := f.scope.Resolve(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, types.RoleViewer, scope.Role)
	assert.False(t, scope.Unrestricted())
	assert.Empty(t, scope.EditableTeamIDs)
}

func TestResolve_InactiveProfileGetsEmptyScope(t *testing.T) {
	f := newFixture()
	coach := f.addUser(types.RoleCoach, false)
	team := f.addTeam("U13 A")
	f.assignCoach(team.ID, coach.ID)

	scope, err := f.scope.Resolve(context.Background(), coach.ID)
	require.NoError(t, err)

	assert.False(t, scope.CanEditTeam(team.ID))
}

func TestResolve_StoreErrorDeniesInsteadOfAllowing(t *testing.T) {
	f := newFixture()
	coach := f.addUser(types.RoleCoach, true)
	boom := errors.New("pool exhausted")
	f.teams.err = boom

	scope, err := f.scope.Resolve(context.Background(), coach.ID)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, scope)
}
