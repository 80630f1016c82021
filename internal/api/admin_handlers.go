package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/acadlabs/bibliometer/internal/database"
	"github.com/acadlabs/bibliometer/internal/errors"
)

const recentActivityLimit = 10

// AdminStats godoc
// @Summary Global dashboard statistics
// @Produce json
// @Success 200 {object} database.AdminStats
// @Security BearerAuth
// @Router /api/admin/stats [get]
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.repo.AdminStats()
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to compute admin statistics", err))
		return
	}
	respondOK(c, stats)
}

// ListUsers godoc
// @Summary List all users
// @Produce json
// @Success 200 {array} database.User
// @Security BearerAuth
// @Router /api/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.repo.ListUsers()
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to list users", err))
		return
	}
	respondOK(c, users)
}

type userUpdateRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	University *string `json:"university"`
	IsActive   *bool   `json:"is_active"`
}

// UpdateUser godoc
// @Summary Update a user's role, active flag or profile fields
// @Accept json
// @Produce json
// @Param id path string true "user ID"
// @Param request body userUpdateRequest true "fields to update"
// @Success 200 {object} database.User
// @Security BearerAuth
// @Router /api/admin/users/{id} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Invalid update payload.", err))
		return
	}
	if req.Role != nil && !database.ValidRole(*req.Role) {
		errors.Abort(c, errors.NewValidationError("Unknown role.", nil))
		return
	}

	user, err := h.repo.UpdateUser(c.Param("id"), database.UserUpdate{
		Name:       req.Name,
		Role:       req.Role,
		University: req.University,
		IsActive:   req.IsActive,
	})
	if err == database.ErrNotFound {
		errors.Abort(c, errors.NewNotFoundError("User not found."))
		return
	}
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to update user", err))
		return
	}
	respondOK(c, user)
}

// DeleteUser godoc
// @Summary Delete a user and all of their theses
// @Produce json
// @Param id path string true "user ID"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /api/admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// collect file paths before the cascade removes the rows
	theses, err := h.repo.ListThesesByUser(id)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to list user theses", err))
		return
	}

	if err := h.repo.DeleteUser(id); err != nil {
		if err == database.ErrNotFound {
			errors.Abort(c, errors.NewNotFoundError("User not found."))
			return
		}
		errors.Abort(c, errors.NewInternalError("failed to delete user", err))
		return
	}

	for _, t := range theses {
		if t.FilePath == "" {
			continue
		}
		if err := os.Remove(t.FilePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove thesis file", "path", t.FilePath, "error", err)
		}
	}

	h.invalidateStats(id)
	respondMessage(c, http.StatusOK, "User and their theses have been deleted.", nil)
}

// RecentActivity godoc
// @Summary Recent analysis activity feed
// @Produce json
// @Success 200 {array} database.Activity
// @Security BearerAuth
// @Router /api/admin/activity [get]
func (h *Handler) RecentActivity(c *gin.Context) {
	activities, err := h.repo.RecentActivity(recentActivityLimit)
	if err != nil {
		errors.Abort(c, errors.NewInternalError("failed to load recent activity", err))
		return
	}
	respondOK(c, activities)
}
