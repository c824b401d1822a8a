package handlers

import (
	"net/http"

	"progress-service/internal/middleware"
	"progress-service/internal/service"
	"progress-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	Groups *service.GroupService
}

func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{Groups: groups}
}

// AddMember adds a user to a learning group. Group leaders manage their
// own groups; admins can manage any.
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req struct {
		GroupID string `json:"groupId"`
		UserID  string `json:"userId"`
		Role    string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	group, err := h.Groups.AddMember(c.Request.Context(), middleware.UserID(c), req.GroupID, req.UserID, req.Role, middleware.IsAdmin(c))
	if err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Failed to add member", err)
		return
	}
	utils.SuccessResponse(c, "Member added", group)
}

// ListLedGroups returns the groups the caller leads.
func (h *GroupHandler) ListLedGroups(c *gin.Context) {
	groups, err := h.Groups.ListLedGroups(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Failed to list groups", err)
		return
	}
	utils.SuccessResponse(c, "Groups fetched", groups)
}

func (h *GroupHandler) RegisterRoutes(r *gin.Engine) {
	protected := r.Group("/protected/progress/group", middleware.RequireUser())
	{
		protected.GET("", h.ListLedGroups)
		protected.POST("/members", h.AddMember)
	}
}
