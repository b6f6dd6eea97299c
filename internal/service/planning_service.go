package service

import (
	"context"
	"time"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/socket"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Planning Service
// ============================================

// PlanningService manages weekly training slots and per-date attendance
type PlanningService interface {
	Create(ctx context.Context, actorID string, payload *SessionPayload) (*repository.PlanningSession, *repository.ApprovalRequest, error)
	GetByID(ctx context.Context, actorID, id string) (*repository.PlanningSession, error)
	List(ctx context.Context, actorID string) ([]*repository.PlanningSession, error)
	ListByTeam(ctx context.Context, actorID, teamID string) ([]*repository.PlanningSession, error)
	Delete(ctx context.Context, actorID, id string) (*repository.ApprovalRequest, error)

	RecordAttendance(ctx context.Context, actorID, sessionID, playerID string, date time.Time, status string) error
	GetAttendance(ctx context.Context, actorID, sessionID string, date time.Time) ([]*repository.AttendanceRecord, error)
}

type planningService struct {
	planningRepo repository.PlanningRepository
	playerRepo   repository.PlayerRepository
	scopeSvc     ScopeService
	approvalSvc  ApprovalService
	broadcaster  *socket.Broadcaster
}

// NewPlanningService creates a new planning service
func NewPlanningService(
	planningRepo repository.PlanningRepository,
	playerRepo repository.PlayerRepository,
	scopeSvc ScopeService,
	approvalSvc ApprovalService,
	broadcaster *socket.Broadcaster,
) PlanningService {
	return &planningService{
		planningRepo: planningRepo,
		playerRepo:   playerRepo,
		scopeSvc:     scopeSvc,
		approvalSvc:  approvalSvc,
		broadcaster:  broadcaster,
	}
}

func (s *planningService) Create(ctx context.Context, actorID string, payload *SessionPayload) (*repository.PlanningSession, *repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, nil, err
	}
	if err := validateSessionPayload(payload); err != nil {
		return nil, nil, err
	}

	switch {
	case types.HasMinimumRole(role, types.RoleStaff):

	case role == types.RoleCoach:
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return nil, nil, err
		}
		if !scope.CanEditTeam(payload.TeamID) {
			return nil, nil, ErrForbidden
		}

	default:
		request, err := s.approvalSvc.Enqueue(ctx, types.ActionPlanningCreate, "planning", payload, actorID)
		if err != nil {
			return nil, nil, err
		}
		return nil, request, nil
	}

	session := sessionFromPayload(payload)
	err = s.planningRepo.Create(ctx, session)
	if repository.IsUndefinedColumn(err) {
		session.Location = nil
		err = s.planningRepo.CreateCompat(ctx, session)
	}
	if err != nil {
		return nil, nil, classifyWriteError(err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastPlanningChanged(map[string]interface{}{
			"id":      session.ID,
			"team_id": session.TeamID,
		})
	}

	return session, nil, nil
}

func (s *planningService) GetByID(ctx context.Context, actorID, id string) (*repository.PlanningSession, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}

	session, err := s.planningRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *planningService) List(ctx context.Context, actorID string) ([]*repository.PlanningSession, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}

	scope, err := s.scopeSvc.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Unrestricted() {
		return s.planningRepo.FindAll(ctx)
	}

	sessions := make([]*repository.PlanningSession, 0)
	for _, teamID := range scope.ViewableTeamIDs {
		teamSessions, err := s.planningRepo.FindByTeamID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, teamSessions...)
	}
	return sessions, nil
}

func (s *planningService) ListByTeam(ctx context.Context, actorID, teamID string) ([]*repository.PlanningSession, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.planningRepo.FindByTeamID(ctx, teamID)
}

// Delete removes a slot directly for staff and above. A coach whose scope
// covers the session's team gets a pending request; a coach outside that
// scope is refused without touching the queue.
func (s *planningService) Delete(ctx context.Context, actorID, id string) (*repository.ApprovalRequest, error) {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, err
	}

	session, err := s.planningRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}

	if types.HasMinimumRole(role, types.RoleStaff) {
		if err := s.planningRepo.Delete(ctx, id); err != nil {
			return nil, classifyWriteError(err)
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastPlanningChanged(map[string]interface{}{
				"id":      session.ID,
				"team_id": session.TeamID,
				"deleted": true,
			})
		}
		return nil, nil
	}

	if role == types.RoleCoach {
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if scope.CanEditTeam(session.TeamID) {
			return s.approvalSvc.Enqueue(ctx, types.ActionPlanningDelete, "planning",
				&SessionRefPayload{SessionID: id}, actorID)
		}
	}

	return nil, ErrForbidden
}

func (s *planningService) RecordAttendance(ctx context.Context, actorID, sessionID, playerID string, date time.Time, status string) error {
	_, role, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleCoach)
	if err != nil {
		return err
	}
	if !types.IsValidAttendanceStatus(status) {
		return validationErr("status", "is not a valid attendance status")
	}

	session, err := s.planningRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotFound
	}
	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrNotFound
	}
	if player.TeamID != session.TeamID {
		return validationErr("player_id", "is not in the session's team")
	}

	if !types.HasMinimumRole(role, types.RoleStaff) {
		scope, err := s.scopeSvc.Resolve(ctx, actorID)
		if err != nil {
			return err
		}
		if !scope.CanEditTeam(session.TeamID) {
			return ErrForbidden
		}
	}

	record := &repository.AttendanceRecord{
		SessionID:   sessionID,
		PlayerID:    playerID,
		SessionDate: date,
		Status:      status,
	}
	return classifyWriteError(s.planningRepo.UpsertAttendance(ctx, record))
}

func (s *planningService) GetAttendance(ctx context.Context, actorID, sessionID string, date time.Time) ([]*repository.AttendanceRecord, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleCoach); err != nil {
		return nil, err
	}
	return s.planningRepo.FindAttendance(ctx, sessionID, date)
}
