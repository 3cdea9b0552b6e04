package app

import (
	"net/http"
	"strconv"

	"studybuddy/internal/service"
	"studybuddy/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifService service.NotificationService
}

func NewNotificationHandler(notifService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
	}
}

// GetNotifications handles listing the caller's notifications
// GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.notifService.List(userID.(string), limit, offset)
	if err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notifications retrieved successfully", gin.H{"notifications": notifications})
}

// GetUnreadCount handles the unread badge count
// GET /api/v1/notifications/unread/count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.notifService.UnreadCount(userID.(string))
	if err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"count": count})
}

// GetUnreadNotifications handles listing unread notifications
// GET /api/v1/notifications/unread
func (h *NotificationHandler) GetUnreadNotifications(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	notifications, err := h.notifService.ListUnread(userID.(string))
	if err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread notifications retrieved successfully", gin.H{"notifications": notifications})
}

// MarkAsRead handles marking one notification read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	notificationID := c.Param("id")
	if notificationID == "" {
		util.BadRequest(c, "Notification ID is required")
		return
	}

	if err := h.notifService.MarkAsRead(notificationID, userID.(string)); err != nil {
		util.NotFound(c, "Notification not found")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllAsRead handles marking every notification read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.notifService.MarkAllAsRead(userID.(string)); err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "All notifications marked as read", nil)
}
