package handler

import (
	"errors"
	"net/http"

	"linkup/backend/internal/database"
	"linkup/backend/internal/models"
	"linkup/backend/internal/social"

	"github.com/gin-gonic/gin"
)

// StatusResponse is the flat JSON payload returned by all friend actions,
// matching the client's AJAX contract.
type StatusResponse struct {
	Status string `json:"status" example:"success"`
}

// FriendRequestResponse describes one incoming pending request.
type FriendRequestResponse struct {
	ID     uint               `json:"id"`
	Sender PublicUserResponse `json:"sender"`
}

// SentRequestResponse describes one outgoing pending request.
type SentRequestResponse struct {
	ID       uint               `json:"id"`
	Receiver PublicUserResponse `json:"receiver"`
}

// lookupTarget resolves the :username route param to a user record.
func lookupTarget(c *gin.Context) (*models.User, bool) {
	var user models.User
	if err := database.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// relationError maps social-graph errors to HTTP responses.
func relationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, social.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, social.ErrDuplicateRequest), errors.Is(err, social.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, social.ErrRequestNotFound), errors.Is(err, social.ErrNotFriends):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update relation"})
	}
}

// ListFriends godoc
// @Summary      List friends
// @Description  Returns the authenticated user's friends.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends [get]
func ListFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	friends, err := graph.Friends(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(friends))
	for _, friend := range friends {
		responses = append(responses, buildPublicUserResponse(friend, viewerID.(uint)))
	}
	c.JSON(http.StatusOK, responses)
}

// ListFriendRequests godoc
// @Summary      List incoming friend requests
// @Description  Returns pending friend requests addressed to the authenticated user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/requests [get]
func ListFriendRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	requests, err := graph.PendingRequests(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	responses := make([]FriendRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, FriendRequestResponse{
			ID:     request.ID,
			Sender: buildPublicUserResponse(request.Sender, viewerID.(uint)),
		})
	}
	c.JSON(http.StatusOK, responses)
}

// ListSentFriendRequests godoc
// @Summary      List outgoing friend requests
// @Description  Returns pending friend requests the authenticated user has sent.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   SentRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/requests/sent [get]
func ListSentFriendRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	requests, err := graph.SentRequests(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	responses := make([]SentRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, SentRequestResponse{
			ID:       request.ID,
			Receiver: buildPublicUserResponse(request.Receiver, viewerID.(uint)),
		})
	}
	c.JSON(http.StatusOK, responses)
}

// SendFriendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        username   path      string  true  "Target username"
// @Success      201  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse "Self-directed request"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Request or friendship already exists"
// @Router       /friends/{username}/request [post]
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	target, ok := lookupTarget(c)
	if !ok {
		return
	}

	if err := graph.SendRequest(viewerID.(uint), target.ID); err != nil {
		relationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StatusResponse{Status: "success"})
}

// RevokeFriendRequest godoc
// @Summary      Revoke friend request
// @Description  Withdraws a previously sent friend request.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        username   path      string  true  "Target username"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Router       /friends/{username}/revoke [post]
func RevokeFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	target, ok := lookupTarget(c)
	if !ok {
		return
	}

	if err := graph.RevokeRequest(viewerID.(uint), target.ID); err != nil {
		relationError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "success"})
}

// AcceptFriendRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request; both users become friends.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        username   path      string  true  "Requesting username"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /friends/{username}/accept [post]
func AcceptFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	target, ok := lookupTarget(c)
	if !ok {
		return
	}

	if err := graph.AcceptRequest(target.ID, viewerID.(uint)); err != nil {
		relationError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "accepted"})
}

// RejectFriendRequest godoc
// @Summary      Reject friend request
// @Description  Rejects a pending friend request.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        username   path      string  true  "Requesting username"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /friends/{username}/reject [post]
func RejectFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	target, ok := lookupTarget(c)
	if !ok {
		return
	}

	if err := graph.RejectRequest(target.ID, viewerID.(uint)); err != nil {
		relationError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "rejected"})
}

// RemoveFriend godoc
// @Summary      Remove friend
// @Description  Removes the friendship edge between the authenticated user and the target.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        username   path      string  true  "Target username"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Friendship not found"
// @Router       /friends/{username}/remove [post]
func RemoveFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	target, ok := lookupTarget(c)
	if !ok {
		return
	}

	if err := graph.RemoveFriend(viewerID.(uint), target.ID); err != nil {
		relationError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "unfriended"})
}
