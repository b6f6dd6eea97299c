package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// ApprovalHandler handles approval queue HTTP requests
type ApprovalHandler struct {
	approvalService service.ApprovalService
}

// DecideRequest represents the request body for deciding a request
type DecideRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// ListPending lists all pending requests (admin only)
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	requests, err := h.approvalService.ListPending(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toApprovalResponses(requests))
}

// ListMine lists the caller's own requests, decided or not
func (h *ApprovalHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	requests, err := h.approvalService.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toApprovalResponses(requests))
}

// Decide approves or rejects a pending request (admin only)
func (h *ApprovalHandler) Decide(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.approvalService.Decide(c.Request.Context(), userID, c.Param("id"), req.Decision)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toApprovalResponse(request))
}
