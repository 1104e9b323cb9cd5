package models

import (
	"time"

	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Profile holds the extended per-user attributes beyond core identity.
// It is created together with its User at signup.
type Profile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	// photos
	AvatarPath string `gorm:"size:512"`
	CoverPath  string `gorm:"size:512"`

	// basic info
	Gender      Gender `gorm:"type:varchar(10);not null;default:'male'"`
	BirthDate   *time.Time
	Family      string `gorm:"size:100"`
	CurrentCity string `gorm:"size:30"`
	Hometown    string `gorm:"size:30"`

	// contact info
	PhoneNumber string `gorm:"size:30"`
	Website     string `gorm:"size:200"`
	Address     string `gorm:"size:200"`
	Country     string `gorm:"size:30"`

	Bio string `gorm:"size:500"`

	// education
	University string `gorm:"size:30"`
	Major      string `gorm:"size:30"`
	GPA        *float64

	// work
	Company         string `gorm:"size:30"`
	Position        string `gorm:"size:30"`
	DurationStart   *time.Time
	DurationEnd     *time.Time
	DurationCurrent bool `gorm:"not null;default:false"`
}
