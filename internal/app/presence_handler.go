package app

import (
	"net/http"

	"studybuddy/internal/service"
	"studybuddy/internal/util"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	presenceService service.PresenceService
}

func NewPresenceHandler(presenceService service.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		presenceService: presenceService,
	}
}

// Heartbeat handles the periodic liveness signal from an active client
// session. The body is empty; identity comes from the token.
// POST /api/v1/presence/heartbeat
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.presenceService.Heartbeat(userID.(string)); err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Heartbeat recorded", nil)
}

// GetPresence handles a single-user liveness query
// GET /api/v1/presence/:userID
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	targetUserID := c.Param("userID")
	if targetUserID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	online, err := h.presenceService.IsOnline(targetUserID)
	if err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Presence retrieved successfully", gin.H{
		"user_id": targetUserID,
		"online":  online,
	})
}
