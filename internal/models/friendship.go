package models

import (
	"time"

	"gorm.io/gorm"
)

// Friendship is an undirected friend edge between two users, stored once
// with the lower user ID first. A single row means both users are friends,
// so the symmetry invariant holds by construction instead of by double-write.
// The primary key is a composite of (UserAID, UserBID) to ensure uniqueness.
type Friendship struct {
	UserAID   uint `gorm:"primaryKey"`
	UserBID   uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserA User `gorm:"foreignKey:UserAID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserB User `gorm:"foreignKey:UserBID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate keeps the pair in canonical order so the same edge can never
// be inserted twice under swapped IDs.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	if f.UserAID > f.UserBID {
		f.UserAID, f.UserBID = f.UserBID, f.UserAID
	}
	return nil
}

// Other returns the counterpart of the given user on this edge.
func (f Friendship) Other(userID uint) uint {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}
