package service

import (
	"context"
	"log"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/socket"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Team Service
// ============================================

// TeamService defines team operations. Creation is admin-only on the
// direct path; sub-admin creations are parked in the approval queue.
type TeamService interface {
	Create(ctx context.Context, actorID string, payload *TeamPayload) (*repository.Team, *repository.ApprovalRequest, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.Team, error)
	List(ctx context.Context, actorID string) ([]*repository.Team, error)
	Update(ctx context.Context, actorID, id string, payload *TeamPayload) (*repository.Team, error)
	AssignCoach(ctx context.Context, actorID, teamID string, coachID *string) error
	SetCoachTeams(ctx context.Context, actorID, coachID string, teamIDs []string) error
}

type teamService struct {
	teamRepo    repository.TeamRepository
	profileRepo repository.ProfileRepository
	scopeSvc    ScopeService
	approvalSvc ApprovalService
	broadcaster *socket.Broadcaster
}

// NewTeamService creates a new team service
func NewTeamService(
	teamRepo repository.TeamRepository,
	profileRepo repository.ProfileRepository,
	scopeSvc ScopeService,
	approvalSvc ApprovalService,
	broadcaster *socket.Broadcaster,
) TeamService {
	return &teamService{
		teamRepo:    teamRepo,
		profileRepo: profileRepo,
		scopeSvc:    scopeSvc,
		approvalSvc: approvalSvc,
		broadcaster: broadcaster,
	}
}

func (s *teamService) Create(ctx context.Context, actorID string, payload *TeamPayload) (*repository.Team, *repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, nil, err
	}
	if err := validateTeamPayload(payload); err != nil {
		return nil, nil, err
	}

	if role != types.RoleAdmin {
		request, err := s.approvalSvc.Enqueue(ctx, types.ActionTeamCreate, "teams", payload, actorID)
		if err != nil {
			return nil, nil, err
		}
		return nil, request, nil
	}

	team := &repository.Team{
		Name:     payload.Name,
		Category: payload.Category,
		Pole:     payload.Pole,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, nil, classifyWriteError(err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTeamChanged(map[string]interface{}{
			"id":   team.ID,
			"name": team.Name,
		})
	}

	return team, nil, nil
}

func (s *teamService) GetByID(ctx context.Context, actorID, id string) (*repository.Team, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNotFound
	}

	if team.CoachID != nil {
		coach, err := s.profileRepo.FindByID(ctx, *team.CoachID)
		if err == nil && coach != nil {
			coach.Password = ""
			team.Coach = coach
		}
	}

	return team, nil
}

func (s *teamService) List(ctx context.Context, actorID string) ([]*repository.Team, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}

	scope, err := s.scopeSvc.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Unrestricted() {
		return s.teamRepo.FindAll(ctx)
	}
	return s.teamRepo.FindByIDs(ctx, scope.ViewableTeamIDs)
}

func (s *teamService) Update(ctx context.Context, actorID, id string, payload *TeamPayload) (*repository.Team, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateTeamPayload(payload); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNotFound
	}

	team.Name = payload.Name
	team.Category = payload.Category
	team.Pole = payload.Pole
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, classifyWriteError(err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTeamChanged(map[string]interface{}{
			"id":   team.ID,
			"name": team.Name,
		})
	}

	return team, nil
}

func (s *teamService) AssignCoach(ctx context.Context, actorID, teamID string, coachID *string) error {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin); err != nil {
		return err
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return ErrNotFound
	}

	if coachID != nil {
		coach, err := s.profileRepo.FindByID(ctx, *coachID)
		if err != nil {
			return err
		}
		if coach == nil {
			return ErrUserNotFound
		}
	}

	previous := team.CoachID
	if err := s.teamRepo.AssignCoach(ctx, teamID, coachID); err != nil {
		return classifyWriteError(err)
	}

	// Keep the legacy membership rows in line for everyone touched.
	if previous != nil {
		if err := s.syncMemberships(ctx, *previous); err != nil {
			return err
		}
	}
	if coachID != nil {
		if err := s.syncMemberships(ctx, *coachID); err != nil {
			return err
		}
	}
	return nil
}

// SetCoachTeams replaces a coach's assignment with exactly the given set.
// The clear and reassign steps are not one atomic transaction in the
// store, so the count is re-read afterwards: a mismatch means a partial
// assignment and the operation fails instead of reporting success.
func (s *teamService) SetCoachTeams(ctx context.Context, actorID, coachID string, teamIDs []string) error {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin); err != nil {
		return err
	}

	coach, err := s.profileRepo.FindByID(ctx, coachID)
	if err != nil {
		return err
	}
	if coach == nil {
		return ErrUserNotFound
	}

	seen := make(map[string]bool)
	targets := make([]string, 0, len(teamIDs))
	for _, id := range teamIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		team, err := s.teamRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if team == nil {
			return ErrNotFound
		}
		targets = append(targets, id)
	}

	if err := s.teamRepo.ClearCoach(ctx, coachID); err != nil {
		return classifyWriteError(err)
	}
	for _, id := range targets {
		if err := s.teamRepo.AssignCoach(ctx, id, &coachID); err != nil {
			return classifyWriteError(err)
		}
	}

	count, err := s.teamRepo.CountByCoachID(ctx, coachID)
	if err != nil {
		return err
	}
	if count != len(targets) {
		return ErrConflict
	}

	return s.syncMemberships(ctx, coachID)
}

// syncMemberships mirrors coach_id onto the legacy membership table. A
// missing table means the legacy structure was never provisioned and the
// sync is skipped; any other failure aborts the whole operation so the
// primary and secondary structures cannot diverge silently.
func (s *teamService) syncMemberships(ctx context.Context, coachID string) error {
	teams, err := s.teamRepo.FindByCoachID(ctx, coachID)
	if err != nil {
		return err
	}
	teamIDs := make([]string, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	if err := s.teamRepo.ReplaceMemberships(ctx, coachID, teamIDs); err != nil {
		if repository.IsUndefinedTable(err) {
			log.Printf("[Team] Legacy membership table missing, skipping sync for %s", coachID)
			return nil
		}
		return ErrConflict
	}
	return nil
}
