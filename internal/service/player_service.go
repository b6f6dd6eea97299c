package service

import (
	"context"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Player Service
// ============================================

// PlayerService defines player operations. Mutations either apply
// directly or come back as a pending approval request, depending on the
// caller's role and scope.
type PlayerService interface {
	Create(ctx context.Context, actorID string, payload *PlayerPayload) (*repository.Player, *repository.ApprovalRequest, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.Player, error)
	List(ctx context.Context, actorID string) ([]*repository.Player, error)
	ListByTeam(ctx context.Context, actorID, teamID string) ([]*repository.Player, error)
	Update(ctx context.Context, actorID, id string, payload *PlayerPayload) (*repository.Player, *repository.ApprovalRequest, error)
	Move(ctx context.Context, actorID, playerID, teamID string) (*repository.Player, *repository.ApprovalRequest, error)
	Delete(ctx context.Context, actorID, id string) (*repository.ApprovalRequest, error)
}

type playerService struct {
	playerRepo  repository.PlayerRepository
	teamRepo    repository.TeamRepository
	scopeSvc    ScopeService
	approvalSvc ApprovalService
}

// NewPlayerService creates a new player service
func NewPlayerService(
	playerRepo repository.PlayerRepository,
	teamRepo repository.TeamRepository,
	scopeSvc ScopeService,
	approvalSvc ApprovalService,
) PlayerService {
	return &playerService{
		playerRepo:  playerRepo,
		teamRepo:    teamRepo,
		scopeSvc:    scopeSvc,
		approvalSvc: approvalSvc,
	}
}

func (s *playerService) Create(ctx context.Context, actorID string, payload *PlayerPayload) (*repository.Player, *repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, nil, err
	}
	if err := validatePlayerPayload(payload); err != nil {
		return nil, nil, err
	}

	team, err := s.teamRepo.FindByID(ctx, payload.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if team == nil {
		return nil, nil, ErrNotFound
	}

	switch {
	case types.HasMinimumRole(role, types.RoleStaff):
		// direct, no scope filter

	case role == types.RoleCoach:
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return nil, nil, err
		}
		if !scope.CanEditTeam(payload.TeamID) {
			return nil, nil, ErrForbidden
		}

	default:
		request, err := s.approvalSvc.Enqueue(ctx, types.ActionPlayerCreate, "players", payload, actorID)
		if err != nil {
			return nil, nil, err
		}
		return nil, request, nil
	}

	player, err := playerFromPayload(payload)
	if err != nil {
		return nil, nil, err
	}
	err = s.playerRepo.Create(ctx, player)
	if repository.IsUndefinedColumn(err) {
		player.Position = nil
		err = s.playerRepo.CreateCompat(ctx, player)
	}
	if err != nil {
		return nil, nil, classifyWriteError(err)
	}
	return player, nil, nil
}

func (s *playerService) GetByID(ctx context.Context, actorID, id string) (*repository.Player, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrNotFound
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context, actorID string) ([]*repository.Player, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}

	scope, err := s.scopeSvc.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Unrestricted() {
		return s.playerRepo.FindAll(ctx)
	}

	players := make([]*repository.Player, 0)
	for _, teamID := range scope.ViewableTeamIDs {
		teamPlayers, err := s.playerRepo.FindByTeamID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		players = append(players, teamPlayers...)
	}
	return players, nil
}

func (s *playerService) ListByTeam(ctx context.Context, actorID, teamID string) ([]*repository.Player, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.playerRepo.FindByTeamID(ctx, teamID)
}

func (s *playerService) Update(ctx context.Context, actorID, id string, payload *PlayerPayload) (*repository.Player, *repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, nil, err
	}
	if err := validatePlayerPayload(payload); err != nil {
		return nil, nil, err
	}

	player, err := s.playerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if player == nil {
		return nil, nil, ErrNotFound
	}

	switch {
	case types.HasMinimumRole(role, types.RoleStaff):

	case role == types.RoleCoach:
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return nil, nil, err
		}
		// The player's current team and the target team must both be
		// editable, or a coach could pull players out of foreign teams.
		if !scope.CanEditTeam(player.TeamID) || !scope.CanEditTeam(payload.TeamID) {
			return nil, nil, ErrForbidden
		}

	default:
		request, err := s.approvalSvc.Enqueue(ctx, types.ActionPlayerUpdate, "players",
			&PlayerUpdatePayload{PlayerID: id, PlayerPayload: *payload}, actorID)
		if err != nil {
			return nil, nil, err
		}
		return nil, request, nil
	}

	updated, err := playerFromPayload(payload)
	if err != nil {
		return nil, nil, err
	}
	updated.ID = player.ID
	if err := s.playerRepo.Update(ctx, updated); err != nil {
		return nil, nil, classifyWriteError(err)
	}
	return updated, nil, nil
}

func (s *playerService) Move(ctx context.Context, actorID, playerID, teamID string) (*repository.Player, *repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, nil, err
	}
	if teamID == "" {
		return nil, nil, validationErr("team_id", "is required")
	}

	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if player == nil {
		return nil, nil, ErrNotFound
	}
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	if team == nil {
		return nil, nil, ErrNotFound
	}

	switch {
	case types.HasMinimumRole(role, types.RoleStaff):

	case role == types.RoleCoach:
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return nil, nil, err
		}
		if !scope.CanEditTeam(player.TeamID) || !scope.CanEditTeam(teamID) {
			return nil, nil, ErrForbidden
		}

	default:
		request, err := s.approvalSvc.Enqueue(ctx, types.ActionPlayerMove, "players",
			&PlayerMovePayload{PlayerID: playerID, TeamID: teamID}, actorID)
		if err != nil {
			return nil, nil, err
		}
		return nil, request, nil
	}

	if err := s.playerRepo.Move(ctx, playerID, teamID); err != nil {
		return nil, nil, classifyWriteError(err)
	}
	player.TeamID = teamID
	return player, nil, nil
}

// Delete removes a player directly for staff and above. A coach whose
// scope covers the player's team gets a pending request instead; anyone
// else is refused outright.
func (s *playerService) Delete(ctx context.Context, actorID, id string) (*repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, err
	}

	player, err := s.playerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrNotFound
	}

	if types.HasMinimumRole(role, types.RoleStaff) {
		if err := s.playerRepo.Delete(ctx, id); err != nil {
			return nil, classifyWriteError(err)
		}
		return nil, nil
	}

	if role == types.RoleCoach {
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if scope.CanEditTeam(player.TeamID) {
			return s.approvalSvc.Enqueue(ctx, types.ActionPlayerDelete, "players",
				&PlayerRefPayload{PlayerID: id}, actorID)
		}
	}

	return nil, ErrForbidden
}
