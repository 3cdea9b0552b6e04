package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"studybuddy/internal/service"
	"studybuddy/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FriendRequestHandler struct {
	requestService service.FriendRequestService
}

func NewFriendRequestHandler(requestService service.FriendRequestService) *FriendRequestHandler {
	return &FriendRequestHandler{
		requestService: requestService,
	}
}

// Send handles creating a friend request
// POST /api/v1/friends/requests
func (h *FriendRequestHandler) Send(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		ToUserID string `json:"to_user_id" binding:"required,uuid"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, bindingErrorMessage(err))
		return
	}

	request, err := h.requestService.Send(userID.(string), req.ToUserID)
	if err != nil {
		respondFriendError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Friend request sent successfully", gin.H{"request": request})
}

// Accept handles accepting a friend request
// POST /api/v1/friends/requests/:id/accept
func (h *FriendRequestHandler) Accept(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		util.BadRequest(c, "Request ID is required")
		return
	}

	if err := h.requestService.Accept(requestID); err != nil {
		respondFriendError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request accepted successfully", nil)
}

// Reject handles rejecting a friend request
// POST /api/v1/friends/requests/:id/reject
func (h *FriendRequestHandler) Reject(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		util.BadRequest(c, "Request ID is required")
		return
	}

	if err := h.requestService.Reject(requestID); err != nil {
		respondFriendError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request rejected successfully", nil)
}

// Cancel handles withdrawing a friend request
// DELETE /api/v1/friends/requests/:id
func (h *FriendRequestHandler) Cancel(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		util.BadRequest(c, "Request ID is required")
		return
	}

	if err := h.requestService.Cancel(requestID); err != nil {
		respondFriendError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request cancelled successfully", nil)
}

// ListIncoming handles listing requests addressed to the caller. Rows of
// every status are returned; the client filters.
// GET /api/v1/friends/requests/incoming
func (h *FriendRequestHandler) ListIncoming(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	requests, err := h.requestService.ListIncoming(userID.(string))
	if err != nil {
		respondFriendError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Incoming requests retrieved successfully", gin.H{"requests": requests})
}

// ListOutgoing handles listing requests the caller has sent
// GET /api/v1/friends/requests/outgoing
func (h *FriendRequestHandler) ListOutgoing(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	requests, err := h.requestService.ListOutgoing(userID.(string))
	if err != nil {
		respondFriendError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Outgoing requests retrieved successfully", gin.H{"requests": requests})
}

// respondFriendError maps protocol errors onto status codes. Anything outside
// the taxonomy is a storage fault and stays opaque.
func respondFriendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfRequest), errors.Is(err, service.ErrInvalidState):
		util.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnknownRecipient), errors.Is(err, service.ErrRequestNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest), errors.Is(err, service.ErrAlreadyFriends):
		util.Conflict(c, err.Error())
	default:
		util.InternalServerError(c, "Internal server error")
	}
}

// bindingErrorMessage turns validator errors into a readable message instead
// of the raw struct dump gin produces.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s is %s", fieldErr.Field(), fieldErr.Tag()))
		}
		return strings.Join(fields, ", ")
	}
	return err.Error()
}
