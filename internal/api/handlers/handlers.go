package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Team     *TeamHandler
	Player   *PlayerHandler
	Planning *PlanningHandler
	Approval *ApprovalHandler
	Stock    *StockHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:     &AuthHandler{authService: services.Auth},
		Profile:  &ProfileHandler{profileService: services.Profile},
		Team:     &TeamHandler{teamService: services.Team},
		Player:   &PlayerHandler{playerService: services.Player},
		Planning: &PlanningHandler{planningService: services.Planning},
		Approval: &ApprovalHandler{approvalService: services.Approval},
		Stock:    &StockHandler{stockService: services.Stock},
	}
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, service.ErrSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflicting write, nothing was changed"})
	case errors.Is(err, service.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": "Request already decided"})
	case errors.Is(err, service.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown approval action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfileResponse(p *repository.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

type TeamResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Pole      *string          `json:"pole,omitempty"`
	CoachID   *string          `json:"coachId,omitempty"`
	Coach     *ProfileResponse `json:"coach,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func toTeamResponse(t *repository.Team) TeamResponse {
	resp := TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		Category:  t.Category,
		Pole:      t.Pole,
		CoachID:   t.CoachID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Coach != nil {
		coach := toProfileResponse(t.Coach)
		resp.Coach = &coach
	}
	return resp
}

func toTeamResponses(teams []*repository.Team) []TeamResponse {
	responses := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		responses = append(responses, toTeamResponse(t))
	}
	return responses
}

type PlayerResponse struct {
	ID            string  `json:"id"`
	Firstname     string  `json:"firstname"`
	Lastname      string  `json:"lastname"`
	Birthdate     *string `json:"birthdate,omitempty"`
	LicenceNumber *string `json:"licenceNumber,omitempty"`
	Position      *string `json:"position,omitempty"`
	TeamID        string  `json:"teamId"`
}

func toPlayerResponse(p *repository.Player) PlayerResponse {
	resp := PlayerResponse{
		ID:            p.ID,
		Firstname:     p.Firstname,
		Lastname:      p.Lastname,
		LicenceNumber: p.LicenceNumber,
		Position:      p.Position,
		TeamID:        p.TeamID,
	}
	if p.Birthdate != nil {
		birthdate := p.Birthdate.Format("2006-01-02")
		resp.Birthdate = &birthdate
	}
	return resp
}

func toPlayerResponses(players []*repository.Player) []PlayerResponse {
	responses := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		responses = append(responses, toPlayerResponse(p))
	}
	return responses
}

type SessionResponse struct {
	ID        string  `json:"id"`
	TeamID    string  `json:"teamId"`
	Weekday   string  `json:"weekday"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Location  *string `json:"location,omitempty"`
}

func toSessionResponse(s *repository.PlanningSession) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		TeamID:    s.TeamID,
		Weekday:   s.Weekday,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Location:  s.Location,
	}
}

func toSessionResponses(sessions []*repository.PlanningSession) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, toSessionResponse(s))
	}
	return responses
}

type ApprovalResponse struct {
	ID          string          `json:"id"`
	Action      string          `json:"action"`
	Entity      string          `json:"entity"`
	Payload     json.RawMessage `json:"payload"`
	RequestedBy string          `json:"requestedBy"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	DecidedAt   *time.Time      `json:"decidedAt,omitempty"`
	DecidedBy   *string         `json:"decidedBy,omitempty"`
}

func toApprovalResponse(r *repository.ApprovalRequest) ApprovalResponse {
	return ApprovalResponse{
		ID:          r.ID,
		Action:      r.Action,
		Entity:      r.Entity,
		Payload:     r.Payload,
		RequestedBy: r.RequestedBy,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		DecidedAt:   r.DecidedAt,
		DecidedBy:   r.DecidedBy,
	}
}

func toApprovalResponses(requests []*repository.ApprovalRequest) []ApprovalResponse {
	responses := make([]ApprovalResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toApprovalResponse(r))
	}
	return responses
}

type StockItemResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toStockItemResponse(item *repository.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		UpdatedAt: item.UpdatedAt,
	}
}

// respondMaybeQueued writes 202 with the pending request when the
// mutation was parked in the approval queue, or the given success
// payload when it applied directly.
func respondMaybeQueued(c *gin.Context, status int, body interface{}, request *repository.ApprovalRequest) {
	if request != nil {
		c.JSON(http.StatusAccepted, gin.H{
			"queued":  true,
			"request": toApprovalResponse(request),
		})
		return
	}
	c.JSON(status, body)
}
