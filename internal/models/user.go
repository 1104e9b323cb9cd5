package models

import "gorm.io/gorm"

// User represents a registered account.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FirstName    string `gorm:"size:100;not null"`
	LastName     string `gorm:"size:100;not null"`

	Profile Profile `gorm:"foreignKey:UserID"`
}

// FullName returns the display name used across the UI.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
