package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

func newTeamFixture() (*fixture, TeamService) {
	f := newFixture()
	return f, NewTeamService(f.teams, f.profiles, f.scope, f.approvals, nil)
}

func TestTeamCreate_AdminAppliesDirectly(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)

	team, request, err := svc.Create(context.Background(), admin.ID,
		&TeamPayload{Name: "U13 A", Category: types.CategoryU13})
	require.NoError(t, err)

	assert.Nil(t, request)
	require.NotNil(t, team)
	assert.NotEmpty(t, team.ID)
}

func TestTeamCreate_EveryoneBelowAdminIsQueued(t *testing.T) {
	f, svc := newTeamFixture()
	staff := f.addUser(types.RoleStaff, true)
	coach := f.addUser(types.RoleCoach, true)
	viewer := f.addUser(types.RoleViewer, true)

	// Team creation reshapes everyone's scope, so even staff go through
	// review.
	for _, actor := range []string{staff.ID, coach.ID, viewer.ID} {
		team, request, err := svc.Create(context.Background(), actor,
			&TeamPayload{Name: "U15 B", Category: types.CategoryU15})
		require.NoError(t, err)
		assert.Nil(t, team)
		require.NotNil(t, request)
		assert.Equal(t, types.ActionTeamCreate, request.Action)
	}
	assert.Empty(t, f.teams.teams)
	assert.Len(t, f.approval.requests, 3)
}

func TestTeamCreate_InvalidCategory(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)

	_, _, err := svc.Create(context.Background(), admin.ID,
		&TeamPayload{Name: "X", Category: "u99"})
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.approval.requests)
}

func TestTeamUpdate_RequiresAdmin(t *testing.T) {
	f, svc := newTeamFixture()
	staff := f.addUser(types.RoleStaff, true)
	team := f.addTeam("U13 A")

	_, err := svc.Update(context.Background(), staff.ID, team.ID,
		&TeamPayload{Name: "U13 B", Category: types.CategoryU13})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetCoachTeams_ReplacesAssignmentExactly(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	t1 := f.addTeam("U13 A")
	t2 := f.addTeam("U15 A")
	t3 := f.addTeam("Seniors 1")
	f.assignCoach(t1.ID, coach.ID)
	f.assignCoach(t2.ID, coach.ID)

	// {t1, t2} -> {t3}: the old assignments must be gone, not merged.
	err := svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, []string{t3.ID})
	require.NoError(t, err)

	assert.Nil(t, f.teams.teams[t1.ID].CoachID)
	assert.Nil(t, f.teams.teams[t2.ID].CoachID)
	require.NotNil(t, f.teams.teams[t3.ID].CoachID)
	assert.Equal(t, coach.ID, *f.teams.teams[t3.ID].CoachID)

	// The legacy mirror follows the primary structure.
	assert.Equal(t, []string{t3.ID}, f.teams.memberships[coach.ID])
}

func TestSetCoachTeams_DeduplicatesTargets(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")

	err := svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, []string{team.ID, team.ID})
	require.NoError(t, err)
	require.NotNil(t, f.teams.teams[team.ID].CoachID)
}

func TestSetCoachTeams_EmptySetClearsEverything(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")
	f.assignCoach(team.ID, coach.ID)

	err := svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, f.teams.teams[team.ID].CoachID)
	assert.Empty(t, f.teams.memberships[coach.ID])
}

func TestSetCoachTeams_UnknownCoachOrTeam(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")

	err := svc.SetCoachTeams(context.Background(), admin.ID, "no-such-coach", []string{team.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, []string{"no-such-team"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCoachTeams_CountMismatchFailsInsteadOfReportingSuccess(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	t1 := f.addTeam("U13 A")
	t2 := f.addTeam("U15 A")

	// Pretend a concurrent writer stole one of the assignments between
	// reassign and verify.
	one := 1
	f.teams.countOverride = &one

	err := svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, []string{t1.ID, t2.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSetCoachTeams_MissingLegacyTableIsTolerated(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")
	f.teams.membershipsErr = &pgconn.PgError{Code: "42P01"}

	err := svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, []string{team.ID})
	require.NoError(t, err, "a never-provisioned legacy table must not fail the operation")
	require.NotNil(t, f.teams.teams[team.ID].CoachID)
}

func TestSetCoachTeams_OtherMembershipFailureAborts(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")
	f.teams.membershipsErr = errors.New("deadlock detected")

	err := svc.SetCoachTeams(context.Background(), admin.ID, coach.ID, []string{team.ID})
	assert.ErrorIs(t, err, ErrConflict,
		"a real sync failure must surface, or the two structures diverge silently")
}

func TestSetCoachTeams_RequiresAdmin(t *testing.T) {
	f, svc := newTeamFixture()
	staff := f.addUser(types.RoleStaff, true)
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")

	err := svc.SetCoachTeams(context.Background(), staff.ID, coach.ID, []string{team.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAssignCoach_UnknownProfile(t *testing.T) {
	f, svc := newTeamFixture()
	admin := f.addUser(types.RoleAdmin, true)
	team := f.addTeam("U13 A")

	missing := "no-such-profile"
	err := svc.AssignCoach(context.Background(), admin.ID, team.ID, &missing)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, f.teams.teams[team.ID].CoachID)
}

func TestTeamList_CoachSeesOnlyScopedTeams(t *testing.T) {
	f, svc := newTeamFixture()
	coach := f.addUser(types.RoleCoach, true)
	own := f.addTeam("U13 A")
	f.addTeam("Seniors 1")
	f.assignCoach(own.ID, coach.ID)

	teams, err := svc.List(context.Background(), coach.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, own.ID, teams[0].ID)
}
