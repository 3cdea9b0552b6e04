package app

import (
	"net/http"

	"studybuddy/internal/service"
	"studybuddy/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	friendService service.FriendService
}

func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// ListFriends handles listing the caller's friends
// GET /api/v1/friends
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friends, err := h.friendService.ListFriends(userID.(string))
	if err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friends retrieved successfully", gin.H{"friends": friends})
}

// ListOnlineFriends handles listing the caller's friends who are online
// GET /api/v1/friends/online
func (h *FriendHandler) ListOnlineFriends(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	online, err := h.friendService.ListOnlineFriends(userID.(string))
	if err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Online friends retrieved successfully", gin.H{"friends": online})
}

// RemoveFriend handles unfriending a user. Removing someone who is not a
// friend succeeds quietly.
// DELETE /api/v1/friends/:userID
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friendID := c.Param("userID")
	if friendID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	if err := h.friendService.Remove(userID.(string), friendID); err != nil {
		util.InternalServerError(c, "Internal server error")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend removed successfully", nil)
}
