package memory

import (
	"context"
	"sync"

	"linguahub/internal/domain"
)

// MessageStore is an in-memory implementation of app.MessageStore.
// Messages are held per room in append order.
type MessageStore struct {
	mu    sync.RWMutex
	rooms map[string][]domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{rooms: make(map[string][]domain.Message)}
}

func (s *MessageStore) Append(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[msg.RoomKey] = append(s.rooms[msg.RoomKey], *msg)
	return nil
}

func (s *MessageStore) History(_ context.Context, roomKey string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.rooms[roomKey]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]domain.Message, len(log))
	copy(out, log)
	return out, nil
}
