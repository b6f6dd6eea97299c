package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

func newPlayerFixture() (*fixture, PlayerService) {
	f := newFixture()
	return f, NewPlayerService(f.players, f.teams, f.scope, f.approvals)
}

func TestPlayerCreate_StaffAppliesDirectly(t *testing.T) {
	f, svc := newPlayerFixture()
	staff := f.addUser(types.RoleStaff, true)
	team := f.addTeam("U13 A")

	player, request, err := svc.Create(context.Background(), staff.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", TeamID: team.ID})
	require.NoError(t, err)

	assert.Nil(t, request)
	require.NotNil(t, player)
	assert.NotEmpty(t, player.ID)
	assert.Empty(t, f.approval.requests)
}

func TestPlayerCreate_ViewerGetsQueuedRequest(t *testing.T) {
	f, svc := newPlayerFixture()
	viewer := f.addUser(types.RoleViewer, true)
	team := f.addTeam("U13 A")

	player, request, err := svc.Create(context.Background(), viewer.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", TeamID: team.ID})
	require.NoError(t, err)

	assert.Nil(t, player)
	require.NotNil(t, request)
	assert.Equal(t, types.ApprovalPending, request.Status)
	assert.Equal(t, types.ActionPlayerCreate, request.Action)
	assert.Empty(t, f.players.players, "nothing is written until an admin approves")
}

func TestPlayerCreate_CoachInScopeAppliesDirectly(t *testing.T) {
	f, svc := newPlayerFixture()
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")
	f.assignCoach(team.ID, coach.ID)

	player, request, err := svc.Create(context.Background(), coach.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", TeamID: team.ID})
	require.NoError(t, err)

	assert.Nil(t, request)
	require.NotNil(t, player)
	assert.Empty(t, f.approval.requests)
}

func TestPlayerCreate_CoachOutOfScopeIsForbidden(t *testing.T) {
	f, svc := newPlayerFixture()
	coach := f.addUser(types.RoleCoach, true)
	own := f.addTeam("U13 A")
	other := f.addTeam("Seniors 1")
	f.assignCoach(own.ID, coach.ID)

	_, request, err := svc.Create(context.Background(), coach.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", TeamID: other.ID})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, request)
	assert.Empty(t, f.approval.requests, "an out-of-scope coach is refused, not queued")
	assert.Empty(t, f.players.players)
}

func TestPlayerCreate_ValidationRunsBeforeAnyWrite(t *testing.T) {
	f, svc := newPlayerFixture()
	viewer := f.addUser(types.RoleViewer, true)

	_, _, err := svc.Create(context.Background(), viewer.ID,
		&PlayerPayload{Firstname: "", Lastname: "Lambert", TeamID: "t"})
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.approval.requests, "malformed payloads never reach the queue")
}

func TestPlayerCreate_UnknownTeam(t *testing.T) {
	f, svc := newPlayerFixture()
	staff := f.addUser(types.RoleStaff, true)

	_, _, err := svc.Create(context.Background(), staff.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", TeamID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlayerCreate_RetriesWithoutPositionOnOldSchema(t *testing.T) {
	f, svc := newPlayerFixture()
	staff := f.addUser(types.RoleStaff, true)
	team := f.addTeam("U13 A")
	f.players.createErr = &pgconn.PgError{Code: "42703"}

	position := "ailier"
	player, _, err := svc.Create(context.Background(), staff.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", Position: &position, TeamID: team.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, f.players.compat, "must fall back to the compat insert exactly once")
	assert.Nil(t, player.Position, "the unknown column is stripped before the retry")
}

func TestPlayerUpdate_TeamChangeInPayloadPersists(t *testing.T) {
	f, svc := newPlayerFixture()
	staff := f.addUser(types.RoleStaff, true)
	t1 := f.addTeam("U13 A")
	t2 := f.addTeam("U15 A")
	player := f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: t1.ID})

	updated, request, err := svc.Update(context.Background(), staff.ID, player.ID,
		&PlayerPayload{Firstname: "Noah", Lastname: "Lambert", TeamID: t2.ID})
	require.NoError(t, err)

	assert.Nil(t, request)
	assert.Equal(t, t2.ID, updated.TeamID)
	assert.Equal(t, t2.ID, f.players.players[player.ID].TeamID,
		"the stored row must match what the response claims")
}

func TestPlayerMove_CoachNeedsBothTeamsInScope(t *testing.T) {
	f, svc := newPlayerFixture()
	coach := f.addUser(types.RoleCoach, true)
	own := f.addTeam("U13 A")
	other := f.addTeam("Seniors 1")
	f.assignCoach(own.ID, coach.ID)
	player := f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: own.ID})

	// Target out of scope: refused.
	_, _, err := svc.Move(context.Background(), coach.ID, player.ID, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, own.ID, f.players.players[player.ID].TeamID)

	// A foreign player cannot be pulled in either.
	stranger := f.players.add(&repository.Player{Firstname: "Lina", Lastname: "Moreau", TeamID: other.ID})
	_, _, err = svc.Move(context.Background(), coach.ID, stranger.ID, own.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPlayerMove_ViewerGetsQueuedRequest(t *testing.T) {
	f, svc := newPlayerFixture()
	viewer := f.addUser(types.RoleViewer, true)
	t1 := f.addTeam("U13 A")
	t2 := f.addTeam("U15 A")
	player := f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: t1.ID})

	moved, request, err := svc.Move(context.Background(), viewer.ID, player.ID, t2.ID)
	require.NoError(t, err)

	assert.Nil(t, moved)
	require.NotNil(t, request)
	assert.Equal(t, types.ActionPlayerMove, request.Action)
	assert.Equal(t, t1.ID, f.players.players[player.ID].TeamID, "the player stays put until approval")
}

func TestPlayerDelete_StaffDeletesDirectly(t *testing.T) {
	f, svc := newPlayerFixture()
	staff := f.addUser(types.RoleStaff, true)
	team := f.addTeam("U13 A")
	player := f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: team.ID})

	request, err := svc.Delete(context.Background(), staff.ID, player.ID)
	require.NoError(t, err)

	assert.Nil(t, request)
	assert.Empty(t, f.players.players)
}

func TestPlayerDelete_CoachInScopeIsQueuedNotApplied(t *testing.T) {
	f, svc := newPlayerFixture()
	coach := f.addUser(types.RoleCoach, true)
	team := f.addTeam("U13 A")
	f.assignCoach(team.ID, coach.ID)
	player := f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: team.ID})

	request, err := svc.Delete(context.Background(), coach.ID, player.ID)
	require.NoError(t, err)

	// Deletes are destructive: even an in-scope coach goes through review.
	require.NotNil(t, request)
	assert.Equal(t, types.ActionPlayerDelete, request.Action)
	assert.Len(t, f.players.players, 1)
}

func TestPlayerDelete_CoachOutOfScopeIsForbidden(t *testing.T) {
	f, svc := newPlayerFixture()
	coach := f.addUser(types.RoleCoach, true)
	own := f.addTeam("U13 A")
	other := f.addTeam("Seniors 1")
	f.assignCoach(own.ID, coach.ID)
	player := f.players.add(&repository.Player{Firstname: "Lina", Lastname: "Moreau", TeamID: other.ID})

	request, err := svc.Delete(context.Background(), coach.ID, player.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, request)
	assert.Empty(t, f.approval.requests)
}

func TestPlayerDelete_ViewerIsForbidden(t *testing.T) {
	f, svc := newPlayerFixture()
	viewer := f.addUser(types.RoleViewer, true)
	team := f.addTeam("U13 A")
	player := f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: team.ID})

	request, err := svc.Delete(context.Background(), viewer.ID, player.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, request)
	assert.Empty(t, f.approval.requests)
}

func TestPlayerList_CoachSeesOnlyScopedTeams(t *testing.T) {
	f, svc := newPlayerFixture()
	coach := f.addUser(types.RoleCoach, true)
	own := f.addTeam("U13 A")
	other := f.addTeam("Seniors 1")
	f.assignCoach(own.ID, coach.ID)
	f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: own.ID})
	f.players.add(&repository.Player{Firstname: "Lina", Lastname: "Moreau", TeamID: other.ID})

	players, err := svc.List(context.Background(), coach.ID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, own.ID, players[0].TeamID)
}

func TestPlayerList_AdminSeesEverything(t *testing.T) {
	f, svc := newPlayerFixture()
	admin := f.addUser(types.RoleAdmin, true)
	t1 := f.addTeam("U13 A")
	t2 := f.addTeam("Seniors 1")
	f.players.add(&repository.Player{Firstname: "Noah", Lastname: "Lambert", TeamID: t1.ID})
	f.players.add(&repository.Player{Firstname: "Lina", Lastname: "Moreau", TeamID: t2.ID})

	players, err := svc.List(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}
