package models

import "gorm.io/gorm"

// ThreadRole tags a content row with the thread role of its author, not the
// author's identity: "sender" is whoever initiated the thread.
type ThreadRole string

const (
	RoleSender   ThreadRole = "sender"
	RoleReceiver ThreadRole = "receiver"
)

// Message is a direct-message thread between two users, created lazily on
// first contact. PairLowID/PairHighID hold the unordered pair in canonical
// order under a unique index, so concurrent first contact from both sides
// cannot produce two threads.
type Message struct {
	gorm.Model
	SenderID   uint `gorm:"not null;index"`
	ReceiverID uint `gorm:"not null;index"`
	PairLowID  uint `gorm:"not null;uniqueIndex:idx_message_pair"`
	PairHighID uint `gorm:"not null;uniqueIndex:idx_message_pair"`

	Sender   User `gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnDelete:CASCADE;"`

	Contents []MessageContent `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE;"`
}

// BeforeCreate fills the canonical pair columns from sender and receiver.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	m.PairLowID, m.PairHighID = m.SenderID, m.ReceiverID
	if m.PairLowID > m.PairHighID {
		m.PairLowID, m.PairHighID = m.PairHighID, m.PairLowID
	}
	return nil
}

// RoleOf returns the thread role the given user occupies.
func (m Message) RoleOf(userID uint) ThreadRole {
	if userID == m.ReceiverID {
		return RoleReceiver
	}
	return RoleSender
}

// CounterpartID returns the other participant of the thread.
func (m Message) CounterpartID(userID uint) uint {
	if userID == m.SenderID {
		return m.ReceiverID
	}
	return m.SenderID
}

// MessageContent is one entry in a thread. Rows are append-only except for
// the IsRead flag.
type MessageContent struct {
	gorm.Model
	MessageID uint       `gorm:"not null;index"`
	FromUser  ThreadRole `gorm:"type:varchar(10);not null;default:'sender'"`
	Content   string     `gorm:"not null"`
	IsRead    bool       `gorm:"not null;default:false"`
}
