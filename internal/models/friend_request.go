package models

import "gorm.io/gorm"

// FriendRequest is a directed, transient edge: it exists only while the
// request is pending and is deleted on accept, reject, or revoke.
// At most one pending request per ordered (sender, receiver) pair.
type FriendRequest struct {
	gorm.Model
	SenderID   uint `gorm:"not null;uniqueIndex:idx_sender_receiver"`
	ReceiverID uint `gorm:"not null;uniqueIndex:idx_sender_receiver"`

	Sender   User `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
