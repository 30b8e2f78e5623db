package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"panchayat/internal/models"
)

type setRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.svc.Auth.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) SetUserRole(c *gin.Context) {
	var req setRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Auth.SetRole(c.Request.Context(), c.Param("id"), models.UserRole(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().
		Str("user_id", user.ID).
		Str("role", req.Role).
		Str("by", identity(c).UserID).
		Msg("user role changed")
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
