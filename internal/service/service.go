package service

import (
	"errors"
	"fmt"

	"github.com/ascmontjoie/club-portal-backend/internal/config"
	"github.com/ascmontjoie/club-portal-backend/internal/db"
	"github.com/ascmontjoie/club-portal-backend/internal/email"
	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrSuspended          = errors.New("account suspended")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("write conflict")
	ErrAlreadyDecided     = errors.New("request already decided")
	ErrUnknownAction      = errors.New("unknown approval action")
)

// ValidationError carries a field-level reason. It is always raised before
// any write is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth     AuthService
	Scope    ScopeService
	Profile  ProfileService
	Team     TeamService
	Player   PlayerService
	Planning PlanningService
	Approval ApprovalService
	Stock    StockService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Redis       *db.RedisDB
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	scopeService := NewScopeService(deps.Repos.ProfileRepo, deps.Repos.TeamRepo)

	// ApprovalService is created first: the domain services enqueue
	// through it when a caller lacks direct-apply privilege.
	approvalService := NewApprovalService(
		deps.Repos.ApprovalRepo,
		deps.Repos.PlayerRepo,
		deps.Repos.PlanningRepo,
		deps.Repos.TeamRepo,
		deps.Repos.ProfileRepo,
		scopeService,
		deps.EmailSvc,
		deps.Broadcaster,
	)

	return &Services{
		Auth:     NewAuthService(deps.Config, deps.Repos.ProfileRepo, deps.Redis),
		Scope:    scopeService,
		Profile:  NewProfileService(deps.Repos.ProfileRepo, scopeService),
		Team:     NewTeamService(deps.Repos.TeamRepo, deps.Repos.ProfileRepo, scopeService, approvalService, deps.Broadcaster),
		Player:   NewPlayerService(deps.Repos.PlayerRepo, deps.Repos.TeamRepo, scopeService, approvalService),
		Planning: NewPlanningService(deps.Repos.PlanningRepo, deps.Repos.PlayerRepo, scopeService, approvalService, deps.Broadcaster),
		Approval: approvalService,
		Stock:    NewStockService(deps.Repos.StockRepo, scopeService),
	}
}
