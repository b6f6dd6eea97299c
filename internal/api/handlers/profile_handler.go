package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
)

// ProfileHandler handles staff directory HTTP requests
type ProfileHandler struct {
	profileService service.ProfileService
}

// UpdateNameRequest represents the request body for a profile name change
type UpdateNameRequest struct {
	FullName string `json:"fullName" binding:"required"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// UpdateRoleRequest represents the request body for an admin role change
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetActiveRequest represents the request body for suspending or restoring an account
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// Me returns the caller's own profile
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByID(c.Request.Context(), userID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Get retrieves a profile by ID (staff and above, or self)
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// List lists all profiles (staff and above)
func (h *ProfileHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	profiles, err := h.profileService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		responses = append(responses, toProfileResponse(p))
	}

	c.JSON(http.StatusOK, responses)
}

// UpdateName updates the caller's own display name
func (h *ProfileHandler) UpdateName(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.UpdateName(c.Request.Context(), userID, req.FullName)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// ChangePassword changes the caller's own password
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.profileService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// UpdateRole changes another profile's role (admin only)
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profileService.UpdateRole(c.Request.Context(), userID, c.Param("id"), req.Role); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// SetActive suspends or restores an account (admin only)
func (h *ProfileHandler) SetActive(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profileService.SetActive(c.Request.Context(), userID, c.Param("id"), *req.IsActive); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account status updated"})
}

// Delete removes a profile (admin only); archived instead when constraints block
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.profileService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
