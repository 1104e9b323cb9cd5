// Package messaging maps user pairs to direct-message threads and manages
// the content rows inside them.
package messaging

import (
	"errors"
	"strings"

	"linkup/backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrNotParticipant = errors.New("user is not a participant of this thread")
	ErrEmptyContent   = errors.New("message content is empty")
	ErrSelfThread     = errors.New("cannot open a thread with yourself")
)

// Service resolves threads and appends content.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FindOrCreateThread returns the single thread for the unordered user pair,
// creating it with (sender=a, receiver=b) on first contact. The canonical
// pair columns carry a unique index, so if both users race on first contact
// one insert fails and the winner's thread is re-fetched.
func (s *Service) FindOrCreateThread(a, b uint) (*models.Message, error) {
	if a == b {
		return nil, ErrSelfThread
	}

	if thread, err := s.findByPair(a, b); err == nil {
		return thread, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	thread := &models.Message{SenderID: a, ReceiverID: b}
	if err := s.db.Create(thread).Error; err != nil {
		// Lost the race: the other participant created the thread first.
		if isUniqueViolation(err) {
			return s.findByPair(a, b)
		}
		return nil, err
	}
	return thread, nil
}

func (s *Service) findByPair(a, b uint) (*models.Message, error) {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	var thread models.Message
	err := s.db.
		Where("pair_low_id = ? AND pair_high_id = ?", lo, hi).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// Thread loads a thread the given user participates in.
func (s *Service) Thread(threadID, userID uint) (*models.Message, error) {
	var thread models.Message
	err := s.db.
		Preload("Sender").Preload("Receiver").
		First(&thread, threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	if thread.SenderID != userID && thread.ReceiverID != userID {
		return nil, ErrNotParticipant
	}
	return &thread, nil
}

// Threads lists every thread the user participates in, most recently
// active first.
func (s *Service) Threads(userID uint) ([]models.Message, error) {
	var threads []models.Message
	err := s.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Preload("Sender").Preload("Sender.Profile").
		Preload("Receiver").Preload("Receiver.Profile").
		Order("updated_at DESC").
		Find(&threads).Error
	return threads, err
}

// Contents returns the thread's content rows in creation order.
func (s *Service) Contents(threadID uint) ([]models.MessageContent, error) {
	var contents []models.MessageContent
	err := s.db.
		Where("message_id = ?", threadID).
		Order("created_at ASC").
		Find(&contents).Error
	return contents, err
}

// AppendContent adds a content row tagged with the author's thread role.
// The role is derived from which side of the thread the author occupies,
// not from the author's identity. The thread row is touched so thread
// lists order by recency.
func (s *Service) AppendContent(threadID, authorID uint, text string) (*models.MessageContent, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	thread, err := s.Thread(threadID, authorID)
	if err != nil {
		return nil, err
	}

	content := &models.MessageContent{
		MessageID: thread.ID,
		FromUser:  thread.RoleOf(authorID),
		Content:   text,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return err
		}
		// Bump updated_at on the thread itself.
		return tx.Model(&models.Message{}).
			Where("id = ?", thread.ID).
			Update("updated_at", content.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// MarkLatestRead marks the single most recent content row as read, but only
// when the viewer is the counterpart of whoever authored it. Read state is
// tracked on the latest row only, not per-message for the whole thread.
func (s *Service) MarkLatestRead(threadID, viewerID uint) error {
	thread, err := s.Thread(threadID, viewerID)
	if err != nil {
		return err
	}

	var latest models.MessageContent
	err = s.db.
		Where("message_id = ?", thread.ID).
		Order("created_at DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // empty thread, nothing to mark
	}
	if err != nil {
		return err
	}
	if latest.IsRead {
		return nil
	}
	if thread.RoleOf(viewerID) == latest.FromUser {
		return nil // own message, leave unread for the counterpart
	}

	return s.db.Model(&latest).Update("is_read", true).Error
}

// MarkThreadRead marks every content row in the thread as read.
func (s *Service) MarkThreadRead(threadID, viewerID uint) error {
	thread, err := s.Thread(threadID, viewerID)
	if err != nil {
		return err
	}
	return s.db.Model(&models.MessageContent{}).
		Where("message_id = ?", thread.ID).
		Update("is_read", true).Error
}

// DeleteThread removes the thread and its content rows. Only participants
// may delete a thread. The deletes are unscoped: a soft-deleted thread
// would keep occupying the unique pair index and block the pair from ever
// opening a new thread.
func (s *Service) DeleteThread(threadID, userID uint) error {
	thread, err := s.Thread(threadID, userID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("message_id = ?", thread.ID).Delete(&models.MessageContent{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Message{}, thread.ID).Error
	})
}

// HasUnread reports whether the latest content row is an unread message
// authored by the counterpart of the given viewer.
func (s *Service) HasUnread(threadID, viewerID uint) (bool, error) {
	thread, err := s.Thread(threadID, viewerID)
	if err != nil {
		return false, err
	}

	var latest models.MessageContent
	err = s.db.
		Where("message_id = ?", thread.ID).
		Order("created_at DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !latest.IsRead && latest.FromUser != thread.RoleOf(viewerID), nil
}

// isUniqueViolation detects duplicate-key failures across the postgres and
// sqlite drivers without importing either one here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
