package models

import "gorm.io/gorm"

// Comment belongs to one post and one author.
type Comment struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"`
	PostID  uint   `gorm:"not null;index"`
	Slug    string `gorm:"size:200;uniqueIndex;not null"`
	Content string `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
}
