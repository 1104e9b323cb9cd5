// Package feed computes a user's visible post stream and handles
// like/dislike toggling.
package feed

import (
	"errors"

	"linkup/backend/internal/models"
	"linkup/backend/internal/social"

	"gorm.io/gorm"
)

// ReactionKind selects which of the two mutually exclusive sets to toggle.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

var ErrUnknownReaction = errors.New("unknown reaction kind")

// ReactionCounts is returned after a toggle so the client can redraw.
type ReactionCounts struct {
	Likes         int64 `json:"likes"`
	Dislikes      int64 `json:"dislikes"`
	LikeActive    bool  `json:"like_active"`
	DislikeActive bool  `json:"dislike_active"`
}

// Service computes newsfeeds and applies reactions.
type Service struct {
	db    *gorm.DB
	graph *social.Graph
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, graph: social.NewGraph(db)}
}

// Newsfeed returns the union of the user's own posts and posts authored by
// current friends, newest first. Friends' posts are included regardless of
// their visibility flag; only friendship governs inclusion.
func (s *Service) Newsfeed(userID uint, page, limit int) ([]models.Post, int64, error) {
	friendIDs, err := s.graph.FriendIDs(userID)
	if err != nil {
		return nil, 0, err
	}
	authorIDs := append(friendIDs, userID)

	query := s.db.Model(&models.Post{}).Where("user_id IN ?", authorIDs)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	offset := (page - 1) * limit
	err = query.
		Preload("User").
		Preload("Likes").
		Preload("Dislikes").
		Preload("Comments").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ToggleReaction applies toggle semantics for the given kind: setting one
// reaction clears the other, and setting the same kind again clears it.
// The whole read-modify-write runs inside one transaction.
func (s *Service) ToggleReaction(postID, userID uint, kind ReactionKind) (*ReactionCounts, error) {
	if kind != ReactionLike && kind != ReactionDislike {
		return nil, ErrUnknownReaction
	}

	var counts ReactionCounts
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			return err
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		liked, err := inReactionSet(tx, "post_likes", postID, userID)
		if err != nil {
			return err
		}
		disliked, err := inReactionSet(tx, "post_dislikes", postID, userID)
		if err != nil {
			return err
		}

		likes := tx.Model(&post).Association("Likes")
		dislikes := tx.Model(&post).Association("Dislikes")

		switch kind {
		case ReactionLike:
			if disliked {
				if err := dislikes.Delete(&user); err != nil {
					return err
				}
			}
			if liked {
				if err := likes.Delete(&user); err != nil {
					return err
				}
				counts.LikeActive = false
			} else {
				if err := likes.Append(&user); err != nil {
					return err
				}
				counts.LikeActive = true
			}
		case ReactionDislike:
			if liked {
				if err := likes.Delete(&user); err != nil {
					return err
				}
			}
			if disliked {
				if err := dislikes.Delete(&user); err != nil {
					return err
				}
				counts.DislikeActive = false
			} else {
				if err := dislikes.Append(&user); err != nil {
					return err
				}
				counts.DislikeActive = true
			}
		}

		counts.Likes = tx.Model(&post).Association("Likes").Count()
		counts.Dislikes = tx.Model(&post).Association("Dislikes").Count()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// inReactionSet checks membership in one of the reaction join tables.
func inReactionSet(tx *gorm.DB, table string, postID, userID uint) (bool, error) {
	var count int64
	err := tx.Table(table).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}
