package app

import (
	"context"
	"time"

	"linguahub/internal/domain"
	"linguahub/internal/realtime"
)

// MessageStore is the append-only per-room message log.
type MessageStore interface {
	Append(ctx context.Context, msg *domain.Message) error
	// History returns the most recent limit messages of a room, ordered
	// oldest to newest.
	History(ctx context.Context, roomKey string, limit int) ([]domain.Message, error)
}

// NotificationStore is the per-user mailbox of discrete event records.
type NotificationStore interface {
	Append(ctx context.Context, n *domain.Notification) error
	// ListByRecipient returns the user's notifications, newest first.
	ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error)
	// MarkRead transitions exactly one record owned by userID. A missing
	// or foreign id yields domain.ErrNotificationNotFound.
	MarkRead(ctx context.Context, userID, id string, at time.Time) (domain.Notification, error)
	// Clear deletes all of the user's notifications. Idempotent.
	Clear(ctx context.Context, userID string) error
}

// TestStore owns test definitions.
type TestStore interface {
	CreateTest(ctx context.Context, t *domain.Test) error
	GetTest(ctx context.Context, id string) (domain.Test, error)
	// ListLive returns published tests, optionally filtered by language,
	// newest first.
	ListLive(ctx context.Context, language string) ([]domain.Test, error)
	ListByTutor(ctx context.Context, tutorID string) ([]domain.Test, error)
	// SetLive publishes or unpublishes a test owned by tutorID.
	SetLive(ctx context.Context, id, tutorID string, live bool) (domain.Test, error)
	// DeleteTest removes a test owned by tutorID together with its
	// submissions.
	DeleteTest(ctx context.Context, id, tutorID string) error
}

// SubmissionStore owns graded attempts.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s *domain.Submission) error
	GetSubmission(ctx context.Context, id string) (domain.Submission, error)
	ListByTest(ctx context.Context, testID string) ([]domain.Submission, error)
	ListByLearner(ctx context.Context, learnerID string) ([]domain.Submission, error)
	SetComment(ctx context.Context, id, comment string) error
	// CountByTest returns submission counts keyed by test id.
	CountByTest(ctx context.Context, testIDs []string) (map[string]int, error)
	// TimesInWindow returns the createdAt instants of the learner's
	// submissions inside [from, to].
	TimesInWindow(ctx context.Context, learnerID string, from, to time.Time) ([]time.Time, error)
}

// DoubtStore owns the Q&A records.
type DoubtStore interface {
	CreateDoubt(ctx context.Context, d *domain.Doubt) error
	GetDoubt(ctx context.Context, id string) (domain.Doubt, error)
	UpdateDoubt(ctx context.Context, d domain.Doubt) error
	// ListByTutor returns assigned doubts, open first then newest first.
	ListByTutor(ctx context.Context, tutorID string) ([]domain.Doubt, error)
	ListByLearner(ctx context.Context, learnerID string) ([]domain.Doubt, error)
}

// UserDirectory is the external account service consumed by the core.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// TestContentRepository is the cached read path for serving and scoring
// test content (backed by memory or Redis in front of the store).
type TestContentRepository interface {
	GetTest(ctx context.Context, id string) (domain.Test, error)
	// Invalidate drops the cached entry after a mutation.
	Invalidate(ctx context.Context, id string)
}

// Publisher is the outbound half of the realtime dispatcher. Publishing
// is best-effort; the report is informational and never an error.
type Publisher interface {
	PublishToRoom(roomKey, event string, payload any) realtime.DeliveryReport
	PublishToUser(userID, event string, payload any) realtime.DeliveryReport
}

// Presence reports whether a user currently holds a live connection.
type Presence interface {
	Online(userID string) bool
}
