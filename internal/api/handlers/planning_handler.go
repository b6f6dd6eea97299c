package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// PlanningHandler handles training planning HTTP requests
type PlanningHandler struct {
	planningService service.PlanningService
}

// SessionRequest represents the request body for creating a planning session
type SessionRequest struct {
	TeamID    string  `json:"teamId" binding:"required"`
	Weekday   string  `json:"weekday" binding:"required"`
	StartTime string  `json:"startTime" binding:"required"`
	EndTime   string  `json:"endTime" binding:"required"`
	Location  *string `json:"location"`
}

// AttendanceRequest represents the request body for recording attendance
type AttendanceRequest struct {
	PlayerID    string `json:"playerId" binding:"required"`
	SessionDate string `json:"sessionDate" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

// Create creates a planning session, or queues the creation for review
func (h *PlanningHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, request, err := h.planningService.Create(c.Request.Context(), userID, &service.SessionPayload{
		TeamID:    req.TeamID,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if request != nil {
		respondMaybeQueued(c, 0, nil, request)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Get retrieves a planning session by ID
func (h *PlanningHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	session, err := h.planningService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// List lists the planning sessions visible to the caller
func (h *PlanningHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if teamID := c.Query("teamId"); teamID != "" {
		sessions, err := h.planningService.ListByTeam(c.Request.Context(), userID, teamID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponses(sessions))
		return
	}

	sessions, err := h.planningService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponses(sessions))
}

// Delete removes a session, or queues the deletion for review
func (h *PlanningHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	request, err := h.planningService.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondMaybeQueued(c, http.StatusOK, gin.H{"message": "Session deleted"}, request)
}

// RecordAttendance marks a player's attendance for one dated occurrence
func (h *PlanningHandler) RecordAttendance(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionDate must be YYYY-MM-DD"})
		return
	}

	err = h.planningService.RecordAttendance(c.Request.Context(), userID,
		c.Param("id"), req.PlayerID, date, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance recorded"})
}

// GetAttendance lists attendance records for a session on a given date
func (h *PlanningHandler) GetAttendance(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter must be YYYY-MM-DD"})
		return
	}

	records, err := h.planningService.GetAttendance(c.Request.Context(), userID, c.Param("id"), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	type attendanceResponse struct {
		ID          string `json:"id"`
		SessionID   string `json:"sessionId"`
		PlayerID    string `json:"playerId"`
		SessionDate string `json:"sessionDate"`
		Status      string `json:"status"`
	}

	responses := make([]attendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendanceResponse{
			ID:          r.ID,
			SessionID:   r.SessionID,
			PlayerID:    r.PlayerID,
			SessionDate: r.SessionDate.Format("2006-01-02"),
			Status:      r.Status,
		})
	}

	c.JSON(http.StatusOK, responses)
}
