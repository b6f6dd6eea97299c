package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ascmontjoie/club-portal-backend/internal/email"
	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/socket"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Approval Service
// ============================================

// ApprovalService is the queue plus the executor. Sub-admin callers
// enqueue mutation intents; admins decide them. pending -> approved and
// pending -> rejected are the only transitions, both terminal.
type ApprovalService interface {
	Enqueue(ctx context.Context, action, entity string, payload interface{}, requestedBy string) (*repository.ApprovalRequest, error)
	ListPending(ctx context.Context, actorID string) ([]*repository.ApprovalRequest, error)
	ListMine(ctx context.Context, actorID string) ([]*repository.ApprovalRequest, error)
	CountPending(ctx context.Context) (int, error)
	Decide(ctx context.Context, actorID, requestID, decision string) (*repository.ApprovalRequest, error)
}

type approvalService struct {
	approvalRepo repository.ApprovalRepository
	playerRepo   repository.PlayerRepository
	planningRepo repository.PlanningRepository
	teamRepo     repository.TeamRepository
	profileRepo  repository.ProfileRepository
	scopeSvc     ScopeService
	emailSvc     *email.Service
	broadcaster  *socket.Broadcaster
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	playerRepo repository.PlayerRepository,
	planningRepo repository.PlanningRepository,
	teamRepo repository.TeamRepository,
	profileRepo repository.ProfileRepository,
	scopeSvc ScopeService,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		playerRepo:   playerRepo,
		planningRepo: planningRepo,
		teamRepo:     teamRepo,
		profileRepo:  profileRepo,
		scopeSvc:     scopeSvc,
		emailSvc:     emailSvc,
		broadcaster:  broadcaster,
	}
}

// Enqueue records a mutation intent as a pending request. The caller is
// responsible for having validated the payload with the same rules as the
// direct-apply path. Duplicates are allowed: rejecting one at review time
// is cheaper than silently dropping a legitimate resubmission.
func (s *approvalService) Enqueue(ctx context.Context, action, entity string, payload interface{}, requestedBy string) (*repository.ApprovalRequest, error) {
	if !types.IsValidApprovalAction(action) {
		return nil, ErrUnknownAction
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, validationErr("payload", "is not serializable")
	}

	request := &repository.ApprovalRequest{
		Action:      action,
		Entity:      entity,
		Payload:     raw,
		RequestedBy: requestedBy,
		Status:      types.ApprovalPending,
	}
	if err := s.approvalRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastApprovalSubmitted(map[string]interface{}{
			"id":          request.ID,
			"action":      request.Action,
			"requestedBy": request.RequestedBy,
		})
	}
	s.notifyAdmins(ctx, request)

	return request, nil
}

func (s *approvalService) ListPending(ctx context.Context, actorID string) ([]*repository.ApprovalRequest, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin); err != nil {
		return nil, err
	}
	return s.approvalRepo.FindPending(ctx)
}

func (s *approvalService) ListMine(ctx context.Context, actorID string) ([]*repository.ApprovalRequest, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.approvalRepo.FindByRequester(ctx, actorID)
}

func (s *approvalService) CountPending(ctx context.Context) (int, error) {
	return s.approvalRepo.CountPending(ctx)
}

// Decide applies or rejects a pending request. Approval dispatches on the
// action tag and applies the payload through the same write primitives as
// direct apply; the admin's own privilege authorizes the write, so the
// original requester's scope is not re-checked. The payload itself is
// never mutated.
func (s *approvalService) Decide(ctx context.Context, actorID, requestID, decision string) (*repository.ApprovalRequest, error) {
	admin, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if decision != types.DecisionApprove && decision != types.DecisionReject {
		return nil, validationErr("decision", "must be approved or rejected")
	}

	request, err := s.approvalRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	if request.Status != types.ApprovalPending {
		return nil, ErrAlreadyDecided
	}

	if decision == types.DecisionApprove {
		if err := s.apply(ctx, request); err != nil {
			return nil, err
		}
	}

	if err := s.approvalRepo.MarkDecided(ctx, request.ID, decision, admin.ID); err != nil {
		// A concurrent admin flipped the row between our read and the
		// conditional update; their decision stands.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyDecided
		}
		return nil, err
	}
	request.Status = decision
	now := time.Now()
	request.DecidedAt = &now
	request.DecidedBy = &admin.ID

	if s.broadcaster != nil {
		s.broadcaster.BroadcastApprovalDecided(map[string]interface{}{
			"id":     request.ID,
			"action": request.Action,
			"status": request.Status,
		})
	}
	s.notifyRequester(ctx, request)

	return request, nil
}

// ============================================
// Executor dispatch
// ============================================

func (s *approvalService) apply(ctx context.Context, request *repository.ApprovalRequest) error {
	switch request.Action {
	case types.ActionPlayerCreate:
		var p PlayerPayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyPlayerCreate(ctx, &p)

	case types.ActionPlayerUpdate:
		var p PlayerUpdatePayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyPlayerUpdate(ctx, &p)

	case types.ActionPlayerDelete:
		var p PlayerRefPayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyPlayerDelete(ctx, &p)

	case types.ActionPlayerMove:
		var p PlayerMovePayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyPlayerMove(ctx, &p)

	case types.ActionPlanningCreate:
		var p SessionPayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyPlanningCreate(ctx, &p)

	case types.ActionPlanningDelete:
		var p SessionRefPayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyPlanningDelete(ctx, &p)

	case types.ActionTeamCreate:
		var p TeamPayload
		if err := decodePayload(request.Payload, &p); err != nil {
			return err
		}
		return s.applyTeamCreate(ctx, &p)

	default:
		// A silent no-op here would mark the row decided while nothing
		// was applied, so unknown tags fail loudly.
		return ErrUnknownAction
	}
}

func decodePayload(raw json.RawMessage, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return validationErr("payload", "does not match the action's shape")
	}
	return nil
}

func (s *approvalService) applyPlayerCreate(ctx context.Context, p *PlayerPayload) error {
	player, err := playerFromPayload(p)
	if err != nil {
		return err
	}
	err = s.playerRepo.Create(ctx, player)
	if repository.IsUndefinedColumn(err) {
		// The position column may not have rolled out yet; retry once
		// with the field stripped.
		player.Position = nil
		err = s.playerRepo.CreateCompat(ctx, player)
	}
	return classifyWriteError(err)
}

func (s *approvalService) applyPlayerUpdate(ctx context.Context, p *PlayerUpdatePayload) error {
	player, err := s.playerRepo.FindByID(ctx, p.PlayerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrNotFound
	}

	updated, err := playerFromPayload(&p.PlayerPayload)
	if err != nil {
		return err
	}
	updated.ID = player.ID
	return classifyWriteError(s.playerRepo.Update(ctx, updated))
}

func (s *approvalService) applyPlayerDelete(ctx context.Context, p *PlayerRefPayload) error {
	player, err := s.playerRepo.FindByID(ctx, p.PlayerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrNotFound
	}
	return classifyWriteError(s.playerRepo.Delete(ctx, p.PlayerID))
}

func (s *approvalService) applyPlayerMove(ctx context.Context, p *PlayerMovePayload) error {
	player, err := s.playerRepo.FindByID(ctx, p.PlayerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrNotFound
	}
	return classifyWriteError(s.playerRepo.Move(ctx, p.PlayerID, p.TeamID))
}

func (s *approvalService) applyPlanningCreate(ctx context.Context, p *SessionPayload) error {
	session := sessionFromPayload(p)
	err := s.planningRepo.Create(ctx, session)
	if repository.IsUndefinedColumn(err) {
		session.Location = nil
		err = s.planningRepo.CreateCompat(ctx, session)
	}
	return classifyWriteError(err)
}

func (s *approvalService) applyPlanningDelete(ctx context.Context, p *SessionRefPayload) error {
	session, err := s.planningRepo.FindByID(ctx, p.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotFound
	}
	return classifyWriteError(s.planningRepo.Delete(ctx, p.SessionID))
}

func (s *approvalService) applyTeamCreate(ctx context.Context, p *TeamPayload) error {
	team := &repository.Team{
		Name:     p.Name,
		Category: p.Category,
		Pole:     p.Pole,
	}
	return classifyWriteError(s.teamRepo.Create(ctx, team))
}

// playerFromPayload re-derives safe defaults for optional fields; the
// structural validation itself already ran at enqueue time.
func playerFromPayload(p *PlayerPayload) (*repository.Player, error) {
	player := &repository.Player{
		Firstname:     p.Firstname,
		Lastname:      p.Lastname,
		LicenceNumber: p.LicenceNumber,
		Position:      p.Position,
		TeamID:        p.TeamID,
	}
	if p.Birthdate != nil && *p.Birthdate != "" {
		birthdate, err := time.Parse(birthdateLayout, *p.Birthdate)
		if err != nil {
			return nil, validationErr("birthdate", "must be YYYY-MM-DD")
		}
		player.Birthdate = &birthdate
	}
	return player, nil
}

func sessionFromPayload(p *SessionPayload) *repository.PlanningSession {
	return &repository.PlanningSession{
		TeamID:    p.TeamID,
		Weekday:   p.Weekday,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Location:  p.Location,
	}
}

// classifyWriteError maps store failures onto the conflict taxonomy
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsForeignKeyViolation(err) || repository.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// ============================================
// Notifications
// ============================================

func (s *approvalService) notifyAdmins(ctx context.Context, request *repository.ApprovalRequest) {
	if s.emailSvc == nil {
		return
	}
	admins, err := s.profileRepo.FindByRole(ctx, types.RoleAdmin)
	if err != nil {
		log.Printf("[Approval] Failed to load admins for notification: %v", err)
		return
	}
	for _, admin := range admins {
		if err := s.emailSvc.SendApprovalSubmitted(admin.Email, email.ApprovalSubmittedData{
			AdminName: admin.FullName,
			Action:    request.Action,
			RequestID: request.ID,
		}); err != nil {
			log.Printf("[Approval] Failed to email admin %s: %v", admin.Email, err)
		}
	}
}

func (s *approvalService) notifyRequester(ctx context.Context, request *repository.ApprovalRequest) {
	if s.emailSvc == nil {
		return
	}
	requester, err := s.profileRepo.FindByID(ctx, request.RequestedBy)
	if err != nil || requester == nil {
		return
	}
	if err := s.emailSvc.SendApprovalDecided(requester.Email, email.ApprovalDecidedData{
		UserName: requester.FullName,
		Action:   request.Action,
		Status:   request.Status,
	}); err != nil {
		log.Printf("[Approval] Failed to email requester %s: %v", requester.Email, err)
	}
}
