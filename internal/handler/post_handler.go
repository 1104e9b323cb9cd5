package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"linkup/backend/internal/config"
	"linkup/backend/internal/database"
	"linkup/backend/internal/feed"
	"linkup/backend/internal/models"
	"linkup/backend/pkg/slug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// region --- DTOs ---

// PostInput defines the multipart form for creating a post.
type PostInput struct {
	Content    string `form:"content" binding:"required,max=500"`
	Visibility string `form:"visibility" binding:"omitempty,oneof=public friends"`
}

// CommentInput defines the structure for adding a comment.
type CommentInput struct {
	Content string `json:"content" binding:"required,max=500"`
}

// ReactionInput selects the reaction to toggle.
type ReactionInput struct {
	Action string `json:"action" binding:"required,oneof=like dislike" example:"like"`
}

// PostResponse defines the structure for a single post.
type PostResponse struct {
	ID           uint      `json:"id"`
	PostID       string    `json:"post_id"`
	Slug         string    `json:"slug"`
	Content      string    `json:"content"`
	Attachment   string    `json:"attachment,omitempty"`
	Visibility   string    `json:"visibility"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorID     uint      `json:"author_id"`
	Author       string    `json:"author"`
	AuthorName   string    `json:"author_name"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	Liked        bool      `json:"liked"`
	Disliked     bool      `json:"disliked"`
	CommentCount int       `json:"comment_count"`
}

// CommentResponse defines the structure for a single comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  uint      `json:"author_id"`
	Author    string    `json:"author"`
}

func newPostResponse(post models.Post, viewerID uint) PostResponse {
	liked, disliked := false, false
	for _, u := range post.Likes {
		if u.ID == viewerID {
			liked = true
			break
		}
	}
	for _, u := range post.Dislikes {
		if u.ID == viewerID {
			disliked = true
			break
		}
	}

	return PostResponse{
		ID:           post.ID,
		PostID:       post.PostID.String(),
		Slug:         post.Slug,
		Content:      post.Content,
		Attachment:   post.Attachment,
		Visibility:   string(post.Visibility),
		CreatedAt:    post.CreatedAt,
		AuthorID:     post.UserID,
		Author:       post.User.Username,
		AuthorName:   post.User.FullName(),
		Likes:        len(post.Likes),
		Dislikes:     len(post.Dislikes),
		Liked:        liked,
		Disliked:     disliked,
		CommentCount: len(post.Comments),
	}
}

func newCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Slug:      comment.Slug,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		AuthorID:  comment.UserID,
		Author:    comment.User.Username,
	}
}

// endregion

// CreatePost godoc
// @Summary      Create a new post
// @Description  Creates a post with content, visibility and an optional attachment.
// @Tags         posts
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        content    formData  string  true   "Post content"
// @Param        visibility formData  string  false  "public or friends" default(public)
// @Param        attachment formData  file    false  "Optional attachment"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input PostInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	visibility := models.VisibilityPublic
	if input.Visibility == string(models.VisibilityFriends) {
		visibility = models.VisibilityFriends
	}

	post := models.Post{
		UserID:     user.ID,
		PostID:     uuid.New(),
		Content:    input.Content,
		Visibility: visibility,
	}
	post.Slug = slug.ForUser(user.Username, post.PostID)

	if file, err := c.FormFile("attachment"); err == nil {
		dst := filepath.Join(config.AppConfig.UploadDir,
			fmt.Sprintf("user_%s", user.Username), post.PostID.String(), filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
			return
		}
		post.Attachment = dst
	}

	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	post.User = user
	c.JSON(http.StatusCreated, newPostResponse(post, user.ID))
}

// GetPost godoc
// @Summary      Get a post
// @Description  Retrieves a post with its comments and reaction counts. Public posts are viewable without a token.
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func GetPost(c *gin.Context) {
	// Post pages are shareable links, so this endpoint runs behind the
	// optional auth middleware. Anonymous viewers get a zero viewer ID.
	viewerID := uint(0)
	if v, ok := c.Get("userID"); ok {
		viewerID = v.(uint)
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	err = database.DB.
		Preload("User").Preload("Likes").Preload("Dislikes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		First(&post, uint(postID)).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Friends-only posts are invisible to anonymous viewers.
	if viewerID == 0 && post.Visibility == models.VisibilityFriends {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	commentResponses := make([]CommentResponse, 0, len(post.Comments))
	for _, comment := range post.Comments {
		commentResponses = append(commentResponses, newCommentResponse(comment))
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     newPostResponse(post, viewerID),
		"comments": commentResponses,
	})
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Deletes a post. Only the owner may delete it.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the owner"
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func DeletePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := database.DB.First(&post, uint(postID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.UserID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this post"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Likes").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Dislikes").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "success"})
}

// AddComment godoc
// @Summary      Comment on a post
// @Description  Adds a comment to a post.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Post ID"
// @Param        input body      CommentInput  true  "Comment"
// @Success      201  {object}  CommentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func AddComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.First(&post, uint(postID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	comment := models.Comment{
		UserID:  user.ID,
		PostID:  post.ID,
		Content: input.Content,
		Slug:    slug.ForUser(user.Username, uuid.New()),
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	comment.User = user
	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// ReactToPost godoc
// @Summary      Toggle a reaction
// @Description  Toggles a like or dislike on a post and returns the updated counts.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Post ID"
// @Param        input body      ReactionInput  true  "Reaction"
// @Success      200  {object}  feed.ReactionCounts
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/react [post]
func ReactToPost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts, err := feedSvc.ToggleReaction(uint(postID), viewerID.(uint), feed.ReactionKind(input.Action))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle reaction"})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// GetNewsfeed godoc
// @Summary      Get the newsfeed
// @Description  Returns the authenticated user's posts and their friends' posts, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[PostResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/feed [get]
func GetNewsfeed(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	posts, total, err := feedSvc.Newsfeed(viewerID.(uint), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build newsfeed"})
		return
	}

	postResponses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		postResponses = append(postResponses, newPostResponse(post, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(postResponses, total, page, limit))
}
