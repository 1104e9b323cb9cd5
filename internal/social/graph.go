// Package social maintains the friend graph: transient directed friend
// requests and the undirected friendship edges they resolve into.
package social

import (
	"errors"

	"linkup/backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrDuplicateRequest = errors.New("a pending request already exists between these users")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrRequestNotFound  = errors.New("pending request not found")
	ErrNotFriends       = errors.New("users are not friends")
)

// Graph is the social-graph service.
type Graph struct {
	db *gorm.DB
}

func NewGraph(db *gorm.DB) *Graph {
	return &Graph{db: db}
}

// pairWhere matches the canonical friendship edge for an unordered pair.
func pairWhere(a, b uint) (uint, uint) {
	if a > b {
		a, b = b, a
	}
	return a, b
}

// AreFriends reports whether the undirected edge exists.
func (g *Graph) AreFriends(a, b uint) (bool, error) {
	lo, hi := pairWhere(a, b)
	var count int64
	err := g.db.Model(&models.Friendship{}).
		Where("user_a_id = ? AND user_b_id = ?", lo, hi).
		Count(&count).Error
	return count > 0, err
}

// SendRequest inserts a pending edge from sender to receiver. Self-directed
// requests, duplicates in either direction and requests between existing
// friends are rejected.
func (g *Graph) SendRequest(senderID, receiverID uint) error {
	if senderID == receiverID {
		return ErrSelfRequest
	}

	friends, err := g.AreFriends(senderID, receiverID)
	if err != nil {
		return err
	}
	if friends {
		return ErrAlreadyFriends
	}

	var count int64
	err = g.db.Model(&models.FriendRequest{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			senderID, receiverID, receiverID, senderID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateRequest
	}

	return g.db.Create(&models.FriendRequest{SenderID: senderID, ReceiverID: receiverID}).Error
}

// RevokeRequest deletes the sender's pending request. Deleting a request
// that does not exist is a no-op. Request rows are hard-deleted: a
// soft-deleted row would keep occupying the unique (sender, receiver)
// index and block a later re-send.
func (g *Graph) RevokeRequest(senderID, receiverID uint) error {
	return g.db.Unscoped().
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Delete(&models.FriendRequest{}).Error
}

// AcceptRequest deletes the pending request and inserts the friendship edge
// in one transaction, so the graph can never hold a half-accepted state.
func (g *Graph) AcceptRequest(senderID, receiverID uint) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().
			Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
			Delete(&models.FriendRequest{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRequestNotFound
		}

		return tx.Create(&models.Friendship{UserAID: senderID, UserBID: receiverID}).Error
	})
}

// RejectRequest deletes the pending request without creating an edge.
func (g *Graph) RejectRequest(senderID, receiverID uint) error {
	result := g.db.Unscoped().
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// RemoveFriend deletes the undirected edge. Because the edge is stored once
// in canonical order, removal is symmetric for both participants.
func (g *Graph) RemoveFriend(a, b uint) error {
	lo, hi := pairWhere(a, b)
	result := g.db.
		Where("user_a_id = ? AND user_b_id = ?", lo, hi).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFriends
	}
	return nil
}

// FriendIDs returns the IDs of every friend of the given user.
func (g *Graph) FriendIDs(userID uint) ([]uint, error) {
	var edges []models.Friendship
	err := g.db.
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(userID))
	}
	return ids, nil
}

// Friends returns the full user records of the given user's friends.
func (g *Graph) Friends(userID uint) ([]models.User, error) {
	ids, err := g.FriendIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := g.db.Preload("Profile").Find(&users, ids).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FriendsCount returns the number of friendship edges touching the user.
func (g *Graph) FriendsCount(userID uint) (int64, error) {
	var count int64
	err := g.db.Model(&models.Friendship{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

// PendingRequests returns incoming pending requests with sender preloaded.
func (g *Graph) PendingRequests(receiverID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := g.db.
		Where("receiver_id = ?", receiverID).
		Preload("Sender").Preload("Sender.Profile").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// SentRequests returns outgoing pending requests with receiver preloaded.
func (g *Graph) SentRequests(senderID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := g.db.
		Where("sender_id = ?", senderID).
		Preload("Receiver").Preload("Receiver.Profile").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// PendingRequestCount returns the number of incoming pending requests.
func (g *Graph) PendingRequestCount(receiverID uint) (int64, error) {
	var count int64
	err := g.db.Model(&models.FriendRequest{}).
		Where("receiver_id = ?", receiverID).
		Count(&count).Error
	return count, err
}

// HasPendingRequest reports whether sender has a pending request to receiver.
func (g *Graph) HasPendingRequest(senderID, receiverID uint) (bool, error) {
	var count int64
	err := g.db.Model(&models.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Count(&count).Error
	return count > 0, err
}
