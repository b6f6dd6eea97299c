package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// PlayerHandler handles player-related HTTP requests
type PlayerHandler struct {
	playerService service.PlayerService
}

// PlayerRequest represents the request body for creating or updating a player
type PlayerRequest struct {
	Firstname     string  `json:"firstname" binding:"required"`
	Lastname      string  `json:"lastname" binding:"required"`
	Birthdate     *string `json:"birthdate"`
	LicenceNumber *string `json:"licenceNumber"`
	Position      *string `json:"position"`
	TeamID        string  `json:"teamId" binding:"required"`
}

// MovePlayerRequest represents the request body for moving a player
type MovePlayerRequest struct {
	TeamID string `json:"teamId" binding:"required"`
}

func (r *PlayerRequest) toPayload() *service.PlayerPayload {
	return &service.PlayerPayload{
		Firstname:     r.Firstname,
		Lastname:      r.Lastname,
		Birthdate:     r.Birthdate,
		LicenceNumber: r.LicenceNumber,
		Position:      r.Position,
		TeamID:        r.TeamID,
	}
}

// Create creates a player, or queues the creation for review
func (h *PlayerHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req PlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, request, err := h.playerService.Create(c.Request.Context(), userID, req.toPayload())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if request != nil {
		respondMaybeQueued(c, 0, nil, request)
		return
	}

	c.JSON(http.StatusCreated, toPlayerResponse(player))
}

// Get retrieves a player by ID
func (h *PlayerHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	player, err := h.playerService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPlayerResponse(player))
}

// List lists the players visible to the caller
func (h *PlayerHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if teamID := c.Query("teamId"); teamID != "" {
		players, err := h.playerService.ListByTeam(c.Request.Context(), userID, teamID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, toPlayerResponses(players))
		return
	}

	players, err := h.playerService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPlayerResponses(players))
}

// Update updates a player, or queues the update for review
func (h *PlayerHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req PlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, request, err := h.playerService.Update(c.Request.Context(), userID, c.Param("id"), req.toPayload())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if request != nil {
		respondMaybeQueued(c, 0, nil, request)
		return
	}

	c.JSON(http.StatusOK, toPlayerResponse(player))
}

// Move transfers a player to another team, or queues the move for review
func (h *PlayerHandler) Move(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req MovePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, request, err := h.playerService.Move(c.Request.Context(), userID, c.Param("id"), req.TeamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if request != nil {
		respondMaybeQueued(c, 0, nil, request)
		return
	}

	c.JSON(http.StatusOK, toPlayerResponse(player))
}

// Delete removes a player, or queues the deletion for review
func (h *PlayerHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	request, err := h.playerService.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondMaybeQueued(c, http.StatusOK, gin.H{"message": "Player deleted"}, request)
}
