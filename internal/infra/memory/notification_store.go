package memory

import (
	"context"
	"sync"
	"time"

	"linguahub/internal/domain"
)

// NotificationStore is an in-memory implementation of
// app.NotificationStore. Each mailbox is held in append order and
// listed newest first.
type NotificationStore struct {
	mu        sync.RWMutex
	mailboxes map[string][]domain.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{mailboxes: make(map[string][]domain.Notification)}
}

func (s *NotificationStore) Append(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mailboxes[n.Recipient] = append(s.mailboxes[n.Recipient], *n)
	return nil
}

func (s *NotificationStore) ListByRecipient(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	box := s.mailboxes[userID]
	out := make([]domain.Notification, 0, len(box))
	for i := len(box) - 1; i >= 0; i-- {
		out = append(out, box[i])
	}
	return out, nil
}

// MarkRead filters on the owner, so a foreign id is indistinguishable
// from a missing one.
func (s *NotificationStore) MarkRead(_ context.Context, userID, id string, at time.Time) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := s.mailboxes[userID]
	for i := range box {
		if box[i].ID == id {
			box[i].Read = true
			box[i].ReadAt = &at
			return box[i], nil
		}
	}
	return domain.Notification{}, domain.ErrNotificationNotFound
}

func (s *NotificationStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mailboxes, userID)
	return nil
}
