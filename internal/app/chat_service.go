package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"linguahub/internal/domain"
	"linguahub/internal/realtime"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ChatService owns the direct-message send flow and history reads.
type ChatService struct {
	messages MessageStore
	users    UserDirectory
	publish  Publisher
	presence Presence
	now      func() time.Time
}

func NewChatService(messages MessageStore, users UserDirectory, publish Publisher, presence Presence) *ChatService {
	return &ChatService{messages: messages, users: users, publish: publish, presence: presence, now: time.Now}
}

// NewChatServiceWithClock is test-only for deterministic timestamps.
func NewChatServiceWithClock(messages MessageStore, users UserDirectory, publish Publisher, presence Presence, now func() time.Time) *ChatService {
	s := NewChatService(messages, users, publish, presence)
	s.now = now
	return s
}

// messageEvent is the chat:message wire payload.
type messageEvent struct {
	ID        string    `json:"_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// messageNudge is the lightweight notification-shaped event pushed to
// the recipient's personal channel so they see an indicator even when
// not viewing the room. Never persisted.
type messageNudge struct {
	ID        string                  `json:"_id"`
	Kind      domain.NotificationKind `json:"kind"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	From      string                  `json:"from"`
	CreatedAt time.Time               `json:"createdAt"`
}

// Send persists a message and then fans it out: the room receives
// chat:message and the recipient's personal channel receives a
// notification:new nudge. Persistence is the durability boundary;
// dispatch is a side effect with no rollback, and an offline recipient
// is not an error.
func (s *ChatService) Send(ctx context.Context, from, to, text string) (domain.Message, realtime.DeliveryReport, error) {
	text = strings.TrimSpace(text)
	if to == "" {
		return domain.Message{}, realtime.DeliveryReport{}, domain.ErrMissingRecipient
	}
	if text == "" {
		return domain.Message{}, realtime.DeliveryReport{}, domain.ErrEmptyMessage
	}
	if _, err := s.users.GetUser(ctx, to); err != nil {
		return domain.Message{}, realtime.DeliveryReport{}, err
	}

	msg := domain.Message{
		ID:        uuid.NewString(),
		RoomKey:   domain.RoomKey(from, to),
		From:      from,
		To:        to,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Append(ctx, &msg); err != nil {
		return domain.Message{}, realtime.DeliveryReport{}, err
	}

	report := s.publish.PublishToRoom(msg.RoomKey, "chat:message", messageEvent{
		ID: msg.ID, From: msg.From, To: msg.To, Text: msg.Text, CreatedAt: msg.CreatedAt,
	})
	s.publish.PublishToUser(to, "notification:new", messageNudge{
		ID:        msg.ID,
		Kind:      domain.NotificationMessage,
		Title:     "New message",
		Body:      msg.Text,
		From:      msg.From,
		CreatedAt: msg.CreatedAt,
	})
	return msg, report, nil
}

// History returns the last limit messages with a peer, oldest first.
// limit defaults to 50 and is capped at 200.
func (s *ChatService) History(ctx context.Context, userID, peerID string, limit int) ([]domain.Message, error) {
	if peerID == "" {
		return nil, domain.ErrMissingRecipient
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.messages.History(ctx, domain.RoomKey(userID, peerID), limit)
}

// Peer is a conversation partner together with live presence.
type Peer struct {
	domain.User
	Online bool `json:"online"`
}

// Peers lists the conversation partners available to a user: tutors for
// learners and learners for tutors, each flagged with presence.
func (s *ChatService) Peers(ctx context.Context, userID string) ([]Peer, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	peerRole := domain.RoleTutor
	if u.Role == domain.RoleTutor {
		peerRole = domain.RoleLearner
	}
	users, err := s.users.ListByRole(ctx, peerRole)
	if err != nil {
		return nil, err
	}
	out := make([]Peer, len(users))
	for i, p := range users {
		out[i] = Peer{User: p, Online: s.presence.Online(p.ID)}
	}
	return out, nil
}
