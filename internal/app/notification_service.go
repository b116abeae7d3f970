package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"linguahub/internal/domain"
	"linguahub/internal/realtime"
)

// NotificationService owns the per-user mailbox and the producer path:
// persist first, then best-effort live dispatch.
type NotificationService struct {
	store   NotificationStore
	publish Publisher
	now     func() time.Time
}

func NewNotificationService(store NotificationStore, publish Publisher) *NotificationService {
	return &NotificationService{store: store, publish: publish, now: time.Now}
}

// NewNotificationServiceWithClock is test-only for deterministic timestamps.
func NewNotificationServiceWithClock(store NotificationStore, publish Publisher, now func() time.Time) *NotificationService {
	return &NotificationService{store: store, publish: publish, now: now}
}

// Notify creates an unread notification and immediately attempts live
// dispatch to the recipient's personal channel. Dispatch failure never
// blocks persistence; the report says how many live connections took it.
func (s *NotificationService) Notify(ctx context.Context, recipient string, kind domain.NotificationKind, title, body string, meta map[string]string) (domain.Notification, realtime.DeliveryReport, error) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Meta:      meta,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Append(ctx, &n); err != nil {
		return domain.Notification{}, realtime.DeliveryReport{}, err
	}
	report := s.publish.PublishToUser(recipient, "notification:new", n)
	log.Debug().
		Str("recipient", recipient).
		Str("kind", string(kind)).
		Int("delivered", report.Delivered).
		Int("targets", report.Targets).
		Msg("notification dispatched")
	return n, report, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.store.ListByRecipient(ctx, userID)
}

// MarkRead transitions one of the caller's notifications to read.
// Another user's notification is indistinguishable from a missing one.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (domain.Notification, error) {
	return s.store.MarkRead(ctx, userID, id, s.now().UTC())
}

// ClearAll deletes every notification of the user regardless of read
// state. Clearing an empty mailbox succeeds.
func (s *NotificationService) ClearAll(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
