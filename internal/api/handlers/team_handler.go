package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// TeamHandler handles team-related HTTP requests
type TeamHandler struct {
	teamService service.TeamService
}

// TeamRequest represents the request body for creating or updating a team
type TeamRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category" binding:"required"`
	Pole     *string `json:"pole"`
}

// AssignCoachRequest represents the request body for a single-team coach assignment
type AssignCoachRequest struct {
	CoachID *string `json:"coachId"`
}

// SetCoachTeamsRequest represents the request body for replacing a coach's assignment
type SetCoachTeamsRequest struct {
	TeamIDs []string `json:"teamIds" binding:"required"`
}

// Create creates a new team, or queues the creation for review
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, request, err := h.teamService.Create(c.Request.Context(), userID, &service.TeamPayload{
		Name:     req.Name,
		Category: req.Category,
		Pole:     req.Pole,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if request != nil {
		respondMaybeQueued(c, 0, nil, request)
		return
	}

	c.JSON(http.StatusCreated, toTeamResponse(team))
}

// Get retrieves a team by ID
func (h *TeamHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTeamResponse(team))
}

// List lists the teams visible to the caller
func (h *TeamHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	teams, err := h.teamService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTeamResponses(teams))
}

// Update updates a team (admin only)
func (h *TeamHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), userID, c.Param("id"), &service.TeamPayload{
		Name:     req.Name,
		Category: req.Category,
		Pole:     req.Pole,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTeamResponse(team))
}

// AssignCoach sets or clears the coach of one team (admin only)
func (h *TeamHandler) AssignCoach(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req AssignCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.teamService.AssignCoach(c.Request.Context(), userID, c.Param("id"), req.CoachID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coach assignment updated"})
}

// SetCoachTeams replaces a coach's team assignment with exactly the given set (admin only)
func (h *TeamHandler) SetCoachTeams(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req SetCoachTeamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.teamService.SetCoachTeams(c.Request.Context(), userID, c.Param("coachId"), req.TeamIDs); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coach teams updated"})
}
