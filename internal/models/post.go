package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility nominally restricts a post's audience.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
)

// Post is a piece of user content. Its public identity is the UUID plus a
// slug derived from the author's username; both are fixed at creation.
type Post struct {
	gorm.Model
	UserID     uint       `gorm:"not null;index"`
	PostID     uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	Slug       string     `gorm:"size:200;uniqueIndex;not null"`
	Content    string     `gorm:"not null"`
	Attachment string     `gorm:"size:512"`
	Visibility Visibility `gorm:"type:varchar(10);not null;default:'public'"`

	User     User      `gorm:"foreignKey:UserID"`
	Comments []Comment `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE;"`

	// A user may appear in at most one of these two sets at a time; the
	// feed service enforces the exclusion when toggling.
	Likes    []*User `gorm:"many2many:post_likes;constraint:OnDelete:CASCADE;"`
	Dislikes []*User `gorm:"many2many:post_dislikes;constraint:OnDelete:CASCADE;"`
}

// BeforeCreate assigns the immutable public UUID.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.PostID == uuid.Nil {
		p.PostID = uuid.New()
	}
	return nil
}
