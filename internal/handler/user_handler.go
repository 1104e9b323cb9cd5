package handler

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"linkup/backend/internal/database"
	"linkup/backend/internal/models"
	"linkup/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username  string `json:"username" binding:"required" example:"testuser"`
	Email     string `json:"email" binding:"required,email" example:"test@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"password123"`
	FirstName string `json:"first_name" binding:"required" example:"Test"`
	LastName  string `json:"last_name" binding:"required" example:"User"`
	Gender    string `json:"gender" binding:"required,oneof=male female" example:"female"`
	BirthDate string `json:"birth_date" binding:"required" example:"1990-04-21"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID              uint   `json:"id" example:"1"`
	Username        string `json:"username" example:"testuser"`
	FullName        string `json:"full_name" example:"Test User"`
	AvatarPath      string `json:"avatar_path"`
	CoverPath       string `json:"cover_path"`
	Bio             string `json:"bio"`
	FriendsCount    int64  `json:"friends_count"`
	PostCount       int64  `json:"post_count"`
	IsFriend        bool   `json:"is_friend"`
	RequestSent     bool   `json:"request_sent"`
	RequestReceived bool   `json:"request_received"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID           uint            `json:"id" example:"1"`
	Username     string          `json:"username" example:"testuser"`
	Email        string          `json:"email" example:"test@example.com"`
	FullName     string          `json:"full_name" example:"Test User"`
	FriendsCount int64           `json:"friends_count"`
	RequestCount int64           `json:"request_count"`
	PostCount    int64           `json:"post_count"`
	Profile      ProfileResponse `json:"profile"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user with their profile and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	birthDate, err := time.Parse("2006-01-02", input.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth date"})
		return
	}
	if birthDate.Year() > time.Now().Year()-18 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must be at least 18 years old"})
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err := database.DB.Where("username = ?", input.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := newDefaultProfile(user.ID, models.Gender(input.Gender), birthDate)
		return tx.Create(&profile).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by username, first name or last name with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	query := database.DB.Model(&models.User{}).Where("id <> ?", viewerID)
	if searchQuery != "" {
		pattern := "%" + searchQuery + "%"
		query = query.Where(
			"username LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			pattern, pattern, pattern,
		)
	}

	result, err := Paginate[models.User](query.Preload("Profile"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	userResponses := make([]PublicUserResponse, 0, len(result.Data))
	for _, user := range result.Data {
		userResponses = append(userResponses, buildPublicUserResponse(user, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(userResponses, result.Meta.TotalItems, page, limit))
}

// GetUserByUsername godoc
// @Summary      Get user by username
// @Description  Retrieves the public profile for a specific user, including their posts.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username   path      string  true  "Username"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username} [get]
func GetUserByUsername(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	username := c.Param("username")

	var user models.User
	if err := database.DB.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var posts []models.Post
	database.DB.
		Where("user_id = ?", user.ID).
		Preload("User").Preload("Likes").Preload("Dislikes").Preload("Comments").
		Order("created_at DESC").
		Find(&posts)

	postResponses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		postResponses = append(postResponses, newPostResponse(post, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    buildPublicUserResponse(user, viewerID.(uint)),
		"profile": newProfileResponse(user.Profile),
		"posts":   postResponses,
	})
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.Preload("Profile").First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(targetUser models.User, viewerID uint) PublicUserResponse {
	friendsCount, _ := graph.FriendsCount(targetUser.ID)

	var postCount int64
	database.DB.Model(&models.Post{}).Where("user_id = ?", targetUser.ID).Count(&postCount)

	isFriend, _ := graph.AreFriends(viewerID, targetUser.ID)
	requestSent, _ := graph.HasPendingRequest(viewerID, targetUser.ID)
	requestReceived, _ := graph.HasPendingRequest(targetUser.ID, viewerID)

	return PublicUserResponse{
		ID:              targetUser.ID,
		Username:        targetUser.Username,
		FullName:        targetUser.FullName(),
		AvatarPath:      targetUser.Profile.AvatarPath,
		CoverPath:       targetUser.Profile.CoverPath,
		Bio:             targetUser.Profile.Bio,
		FriendsCount:    friendsCount,
		PostCount:       postCount,
		IsFriend:        isFriend,
		RequestSent:     requestSent,
		RequestReceived: requestReceived,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	friendsCount, _ := graph.FriendsCount(user.ID)
	requestCount, _ := graph.PendingRequestCount(user.ID)

	var postCount int64
	database.DB.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&postCount)

	return PrivateUserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName(),
		FriendsCount: friendsCount,
		RequestCount: requestCount,
		PostCount:    postCount,
		Profile:      newProfileResponse(user.Profile),
	}
}

// newDefaultProfile builds the signup profile with a randomly assigned
// default avatar and cover, matching the asset sets shipped with the client.
func newDefaultProfile(userID uint, gender models.Gender, birthDate time.Time) models.Profile {
	return models.Profile{
		UserID:     userID,
		Gender:     gender,
		BirthDate:  &birthDate,
		AvatarPath: fmt.Sprintf("/static/img/avatar/avatar%d.png", rand.Intn(8)+1),
		CoverPath:  fmt.Sprintf("/static/img/covers/cover%d.svg", rand.Intn(8)+1),
	}
}

// endregion
