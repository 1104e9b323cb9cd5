package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"linkup/backend/internal/database"
	"linkup/backend/internal/hub"
	"linkup/backend/internal/messaging"
	"linkup/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// MessageContentInput defines the structure for sending a message.
type MessageContentInput struct {
	Content string `json:"content" binding:"required" example:"hey, how have you been?"`
}

// ThreadResponse summarizes one message thread for the thread list.
type ThreadResponse struct {
	ID          uint      `json:"id"`
	Counterpart string    `json:"counterpart"`
	FullName    string    `json:"full_name"`
	AvatarPath  string    `json:"avatar_path"`
	LastMessage string    `json:"last_message,omitempty"`
	Unread      bool      `json:"unread"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContentResponse is one entry of a thread detail.
type ContentResponse struct {
	ID        uint      `json:"id"`
	FromUser  string    `json:"from_user"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	Mine      bool      `json:"mine"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessageResponse carries the redirect target for the new-message flow.
type NewMessageResponse struct {
	Status      string `json:"status" example:"success"`
	RedirectURL string `json:"redirect_url" example:"/api/v1/messages/7"`
}

// endregion

// messagingError maps messaging-service errors to HTTP responses.
func messagingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, messaging.ErrThreadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
	case errors.Is(err, messaging.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this thread"})
	case errors.Is(err, messaging.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is empty"})
	case errors.Is(err, messaging.ErrSelfThread):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Messaging operation failed"})
	}
}

func threadIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return 0, false
	}
	return uint(id), true
}

// ListThreads godoc
// @Summary      List message threads
// @Description  Returns every thread the authenticated user participates in, most recently active first.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ThreadResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /messages [get]
func ListThreads(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	threads, err := messageSvc.Threads(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threads"})
		return
	}

	responses := make([]ThreadResponse, 0, len(threads))
	for _, thread := range threads {
		counterpart := thread.Sender
		if thread.SenderID == viewerID.(uint) {
			counterpart = thread.Receiver
		}

		unread, _ := messageSvc.HasUnread(thread.ID, viewerID.(uint))

		var latest models.MessageContent
		lastMessage := ""
		err := database.DB.
			Where("message_id = ?", thread.ID).
			Order("created_at DESC").
			First(&latest).Error
		if err == nil {
			lastMessage = latest.Content
		}

		responses = append(responses, ThreadResponse{
			ID:          thread.ID,
			Counterpart: counterpart.Username,
			FullName:    counterpart.FullName(),
			AvatarPath:  counterpart.Profile.AvatarPath,
			LastMessage: lastMessage,
			Unread:      unread,
			UpdatedAt:   thread.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// NewMessage godoc
// @Summary      Open a thread with a user
// @Description  Resolves (or lazily creates) the thread with the given user and returns its URL.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        username  query     string  true  "Counterpart username"
// @Success      200  {object}  NewMessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /messages/new [get]
func NewMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username query parameter is required"})
		return
	}

	var target models.User
	if err := database.DB.Where("username = ?", username).First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	thread, err := messageSvc.FindOrCreateThread(viewerID.(uint), target.ID)
	if err != nil {
		messagingError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewMessageResponse{
		Status:      "success",
		RedirectURL: fmt.Sprintf("/api/v1/messages/%d", thread.ID),
	})
}

// GetThread godoc
// @Summary      Get a thread
// @Description  Returns the thread's content rows and marks the latest counterpart message as read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Thread ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [get]
func GetThread(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	threadID, ok := threadIDParam(c)
	if !ok {
		return
	}

	thread, err := messageSvc.Thread(threadID, viewerID.(uint))
	if err != nil {
		messagingError(c, err)
		return
	}

	// Viewing the thread marks the latest counterpart message as read.
	if err := messageSvc.MarkLatestRead(threadID, viewerID.(uint)); err != nil {
		messagingError(c, err)
		return
	}

	contents, err := messageSvc.Contents(threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	viewerRole := thread.RoleOf(viewerID.(uint))
	contentResponses := make([]ContentResponse, 0, len(contents))
	for _, content := range contents {
		contentResponses = append(contentResponses, ContentResponse{
			ID:        content.ID,
			FromUser:  string(content.FromUser),
			Content:   content.Content,
			IsRead:    content.IsRead,
			Mine:      content.FromUser == viewerRole,
			CreatedAt: content.CreatedAt,
		})
	}

	counterpart := thread.Sender
	if thread.SenderID == viewerID.(uint) {
		counterpart = thread.Receiver
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          thread.ID,
		"counterpart": counterpart.Username,
		"messages":    contentResponses,
	})
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Appends a content row to the thread and notifies connected viewers.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Thread ID"
// @Param        input body      MessageContentInput  true  "Message"
// @Success      201  {object}  ContentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [post]
func SendMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	threadID, ok := threadIDParam(c)
	if !ok {
		return
	}

	var input MessageContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := messageSvc.AppendContent(threadID, viewerID.(uint), input.Content)
	if err != nil {
		messagingError(c, err)
		return
	}

	response := ContentResponse{
		ID:        content.ID,
		FromUser:  string(content.FromUser),
		Content:   content.Content,
		IsRead:    content.IsRead,
		Mine:      true,
		CreatedAt: content.CreatedAt,
	}

	hub.GlobalHub.Broadcast(threadID, hub.Event{Type: "new_message", Payload: response})

	c.JSON(http.StatusCreated, response)
}

// MarkThreadRead godoc
// @Summary      Mark a thread read
// @Description  Marks every content row of the thread as read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Thread ID"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id}/read [post]
func MarkThreadRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	threadID, ok := threadIDParam(c)
	if !ok {
		return
	}

	if err := messageSvc.MarkThreadRead(threadID, viewerID.(uint)); err != nil {
		messagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "success"})
}

// DeleteThread godoc
// @Summary      Delete a thread
// @Description  Deletes the thread and all of its messages.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Thread ID"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [delete]
func DeleteThread(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	threadID, ok := threadIDParam(c)
	if !ok {
		return
	}

	if err := messageSvc.DeleteThread(threadID, viewerID.(uint)); err != nil {
		messagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "success"})
}

// StreamThread godoc
// @Summary      Stream thread events
// @Description  Server-sent events stream of new messages in the thread.
// @Tags         messages
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id   path      int  true  "Thread ID"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id}/events [get]
func StreamThread(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	threadID, ok := threadIDParam(c)
	if !ok {
		return
	}

	if _, err := messageSvc.Thread(threadID, viewerID.(uint)); err != nil {
		messagingError(c, err)
		return
	}

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(threadID, client)
	defer hub.GlobalHub.Unsubscribe(threadID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(message))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
