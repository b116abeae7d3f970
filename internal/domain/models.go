package domain

import "time"

// Role distinguishes the two kinds of platform users.
type Role string

const (
	RoleLearner Role = "learner"
	RoleTutor   Role = "tutor"
)

// User is the directory view of an account. The core treats it as an
// opaque, equality-comparable identity plus a role.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Message is one direct-chat message. Immutable after creation except
// for ReadAt.
type Message struct {
	ID        string     `json:"_id"`
	RoomKey   string     `json:"roomKey"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// NotificationKind tags the producer event behind a notification.
type NotificationKind string

const (
	NotificationMessage       NotificationKind = "message"
	NotificationDoubt         NotificationKind = "doubt"
	NotificationDoubtAnswered NotificationKind = "doubt-answered"
	NotificationComment       NotificationKind = "comment"
)

// Notification is one mailbox entry. Created unread; only Read/ReadAt
// ever change, and bulk clear deletes.
type Notification struct {
	ID        string            `json:"_id"`
	Recipient string            `json:"recipient"`
	Kind      NotificationKind  `json:"kind"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Meta      map[string]string `json:"meta,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"createdAt"`
	ReadAt    *time.Time        `json:"readAt,omitempty"`
}

// Question is an MCQ with the correct option index embedded. The answer
// index must never leave the server in learner-facing payloads.
type Question struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
}

// PublicQuestion is the sanitized, answer-free view served to learners.
type PublicQuestion struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Public strips the answer index.
func (q Question) Public(index int) PublicQuestion {
	return PublicQuestion{Index: index, Prompt: q.Prompt, Options: q.Options}
}

// Test is a tutor-owned timed quiz. Questions are fixed at creation.
type Test struct {
	ID          string     `json:"_id"`
	Tutor       string     `json:"tutor"`
	Title       string     `json:"title"`
	Language    string     `json:"language"`
	DurationSec int        `json:"durationSec"`
	Questions   []Question `json:"questions"`
	IsLive      bool       `json:"isLive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Answer is one choice in a submission, addressed by question position.
type Answer struct {
	QuestionIndex int `json:"qIndex"`
	OptionIndex   int `json:"optionIndex"`
}

// Submission is one graded attempt. Immutable except for the tutor
// comment.
type Submission struct {
	ID        string    `json:"_id"`
	TestID    string    `json:"test"`
	Learner   string    `json:"learner"`
	Answers   []Answer  `json:"answers"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DoubtStatus tracks the Q&A lifecycle.
type DoubtStatus string

const (
	DoubtOpen     DoubtStatus = "open"
	DoubtAnswered DoubtStatus = "answered"
)

// Doubt is a learner question routed to either the AI assistant or an
// assigned tutor.
type Doubt struct {
	ID          string      `json:"_id"`
	Learner     string      `json:"learner"`
	Tutor       string      `json:"tutor,omitempty"`
	TestID      string      `json:"test,omitempty"`
	Question    string      `json:"question"`
	AnswerAI    string      `json:"answerAI,omitempty"`
	AnswerTutor string      `json:"answerTutor,omitempty"`
	Status      DoubtStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Heatmap is a calendar-day histogram of submission counts over an
// inclusive trailing window. Days with zero submissions carry no key;
// consumers treat missing days as zero.
type Heatmap struct {
	Start  string         `json:"start"`
	End    string         `json:"end"`
	Days   int            `json:"days"`
	Counts map[string]int `json:"counts"`
}
