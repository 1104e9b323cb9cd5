package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"linkup/backend/internal/config"
	"linkup/backend/internal/database"
	"linkup/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// ProfileEditInput defines the editable profile fields. Dates use the
// 2006-01-02 layout; empty strings leave optional dates unset.
type ProfileEditInput struct {
	FirstName       string   `json:"first_name" binding:"required"`
	LastName        string   `json:"last_name" binding:"required"`
	Gender          string   `json:"gender" binding:"required,oneof=male female"`
	BirthDate       string   `json:"birth_date" binding:"required"`
	Family          string   `json:"family"`
	CurrentCity     string   `json:"current_city"`
	Hometown        string   `json:"hometown"`
	PhoneNumber     string   `json:"phone_number"`
	Website         string   `json:"website" binding:"omitempty,url"`
	Address         string   `json:"address"`
	Country         string   `json:"country"`
	Bio             string   `json:"bio" binding:"max=500"`
	University      string   `json:"university"`
	Major           string   `json:"major"`
	GPA             *float64 `json:"gpa" binding:"omitempty,min=0,max=4"`
	Company         string   `json:"company"`
	Position        string   `json:"position"`
	DurationStart   string   `json:"duration_start"`
	DurationEnd     string   `json:"duration_end"`
	DurationCurrent bool     `json:"duration_current"`
}

// ProfileResponse mirrors the profile entity for API consumers.
type ProfileResponse struct {
	Gender          string   `json:"gender"`
	BirthDate       string   `json:"birth_date,omitempty"`
	AvatarPath      string   `json:"avatar_path"`
	CoverPath       string   `json:"cover_path"`
	Family          string   `json:"family,omitempty"`
	CurrentCity     string   `json:"current_city,omitempty"`
	Hometown        string   `json:"hometown,omitempty"`
	PhoneNumber     string   `json:"phone_number,omitempty"`
	Website         string   `json:"website,omitempty"`
	Address         string   `json:"address,omitempty"`
	Country         string   `json:"country,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	University      string   `json:"university,omitempty"`
	Major           string   `json:"major,omitempty"`
	GPA             *float64 `json:"gpa,omitempty"`
	Company         string   `json:"company,omitempty"`
	Position        string   `json:"position,omitempty"`
	DurationStart   string   `json:"duration_start,omitempty"`
	DurationEnd     string   `json:"duration_end,omitempty"`
	DurationCurrent bool     `json:"duration_current"`
}

func newProfileResponse(profile models.Profile) ProfileResponse {
	formatDate := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	}

	return ProfileResponse{
		Gender:          string(profile.Gender),
		BirthDate:       formatDate(profile.BirthDate),
		AvatarPath:      profile.AvatarPath,
		CoverPath:       profile.CoverPath,
		Family:          profile.Family,
		CurrentCity:     profile.CurrentCity,
		Hometown:        profile.Hometown,
		PhoneNumber:     profile.PhoneNumber,
		Website:         profile.Website,
		Address:         profile.Address,
		Country:         profile.Country,
		Bio:             profile.Bio,
		University:      profile.University,
		Major:           profile.Major,
		GPA:             profile.GPA,
		Company:         profile.Company,
		Position:        profile.Position,
		DurationStart:   formatDate(profile.DurationStart),
		DurationEnd:     formatDate(profile.DurationEnd),
		DurationCurrent: profile.DurationCurrent,
	}
}

// endregion

// UpdateProfile godoc
// @Summary      Edit the authenticated user's profile
// @Description  Updates name and extended profile fields.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ProfileEditInput true "Profile fields"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/profile [put]
func UpdateProfile(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input ProfileEditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parseDate := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	birthDate, err := parseDate(input.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth date"})
		return
	}
	durationStart, err := parseDate(input.DurationStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration start date"})
		return
	}
	durationEnd, err := parseDate(input.DurationEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration end date"})
		return
	}

	var user models.User
	if err := database.DB.Preload("Profile").First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName

	profile := &user.Profile
	profile.Gender = models.Gender(input.Gender)
	profile.BirthDate = birthDate
	profile.Family = input.Family
	profile.CurrentCity = input.CurrentCity
	profile.Hometown = input.Hometown
	profile.PhoneNumber = input.PhoneNumber
	profile.Website = input.Website
	profile.Address = input.Address
	profile.Country = input.Country
	profile.Bio = input.Bio
	profile.University = input.University
	profile.Major = input.Major
	profile.GPA = input.GPA
	profile.Company = input.Company
	profile.Position = input.Position
	profile.DurationStart = durationStart
	profile.DurationEnd = durationEnd
	profile.DurationCurrent = input.DurationCurrent
	if profile.DurationCurrent {
		profile.DurationEnd = nil
	}

	if err := database.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// UpdateAvatar godoc
// @Summary      Upload a new avatar
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        photo formData file true "Avatar image"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/avatar [post]
func UpdateAvatar(c *gin.Context) {
	updateProfileImage(c, "photo", func(profile *models.Profile, path string) {
		profile.AvatarPath = path
	})
}

// UpdateCover godoc
// @Summary      Upload a new cover image
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        cover formData file true "Cover image"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/cover [post]
func UpdateCover(c *gin.Context) {
	updateProfileImage(c, "cover", func(profile *models.Profile, path string) {
		profile.CoverPath = path
	})
}

func updateProfileImage(c *gin.Context, field string, assign func(*models.Profile, string)) {
	viewerID, _ := c.Get("userID")

	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s file is required", field)})
		return
	}

	var user models.User
	if err := database.DB.Preload("Profile").First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	dst := filepath.Join(config.AppConfig.UploadDir,
		fmt.Sprintf("user_%s_%d", user.Username, user.ID), field, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	assign(&user.Profile, dst)
	if err := database.DB.Save(&user.Profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "success"})
}
