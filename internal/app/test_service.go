package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"linguahub/internal/ai"
	"linguahub/internal/domain"
)

// TestService owns the test-taking and scoring flow plus the tutor-side
// test management operations.
type TestService struct {
	tests         TestStore
	subs          SubmissionStore
	content       TestContentRepository
	users         UserDirectory
	notifications *NotificationService
	generator     ai.Generator
	now           func() time.Time
}

func NewTestService(tests TestStore, subs SubmissionStore, content TestContentRepository, users UserDirectory, notifications *NotificationService, generator ai.Generator) *TestService {
	return &TestService{
		tests: tests, subs: subs, content: content, users: users,
		notifications: notifications, generator: generator, now: time.Now,
	}
}

// NewTestServiceWithClock is test-only for deterministic timestamps.
func NewTestServiceWithClock(tests TestStore, subs SubmissionStore, content TestContentRepository, users UserDirectory, notifications *NotificationService, generator ai.Generator, now func() time.Time) *TestService {
	s := NewTestService(tests, subs, content, users, notifications, generator)
	s.now = now
	return s
}

// CreateTestInput is the tutor-supplied test definition.
type CreateTestInput struct {
	Title       string            `json:"title"`
	Language    string            `json:"language"`
	DurationSec int               `json:"durationSec"`
	Questions   []domain.Question `json:"questions"`
	IsLive      bool              `json:"isLive"`
}

// TestSummary is the learner-facing listing row.
type TestSummary struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Language    string `json:"language"`
	DurationSec int    `json:"durationSec"`
	IsLive      bool   `json:"isLive"`
	TutorName   string `json:"tutorName"`
}

// TutorTest is the owner-facing listing row with submission volume.
type TutorTest struct {
	domain.Test
	SubmissionsCount int `json:"submissionsCount"`
}

// PublicTest is a test with answer indexes stripped, safe to serve to a
// learner about to take (or review) it.
type PublicTest struct {
	ID          string                  `json:"_id"`
	Title       string                  `json:"title"`
	Language    string                  `json:"language"`
	DurationSec int                     `json:"durationSec"`
	Questions   []domain.PublicQuestion `json:"questions"`
}

// CompletedTest links a learner's submission to its test metadata.
type CompletedTest struct {
	SubmissionID string    `json:"submissionId"`
	TestID       string    `json:"testId"`
	Title        string    `json:"title"`
	Language     string    `json:"language"`
	DurationSec  int       `json:"durationSec"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	TakenAt      time.Time `json:"takenAt"`
}

// Create validates and stores a new test owned by the tutor.
func (s *TestService) Create(ctx context.Context, tutorID string, in CreateTestInput) (domain.Test, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Language) == "" {
		return domain.Test{}, fmt.Errorf("%w: title and language are required", domain.ErrValidation)
	}
	if in.DurationSec <= 0 {
		return domain.Test{}, fmt.Errorf("%w: durationSec must be positive", domain.ErrValidation)
	}
	if len(in.Questions) == 0 {
		return domain.Test{}, fmt.Errorf("%w: at least one question is required", domain.ErrValidation)
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) < 2 {
			return domain.Test{}, fmt.Errorf("%w: question %d needs a prompt and at least two options", domain.ErrValidation, i)
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return domain.Test{}, fmt.Errorf("%w: question %d answer index out of range", domain.ErrValidation, i)
		}
	}

	t := domain.Test{
		ID:          uuid.NewString(),
		Tutor:       tutorID,
		Title:       strings.TrimSpace(in.Title),
		Language:    strings.TrimSpace(in.Language),
		DurationSec: in.DurationSec,
		Questions:   in.Questions,
		IsLive:      in.IsLive,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.tests.CreateTest(ctx, &t); err != nil {
		return domain.Test{}, err
	}
	return t, nil
}

// ListLive returns published tests for learners, enriched with the
// owning tutor's display name.
func (s *TestService) ListLive(ctx context.Context, language string) ([]TestSummary, error) {
	tests, err := s.tests.ListLive(ctx, language)
	if err != nil {
		return nil, err
	}
	out := make([]TestSummary, 0, len(tests))
	for _, t := range tests {
		name := ""
		if tutor, err := s.users.GetUser(ctx, t.Tutor); err == nil {
			name = tutor.Name
		}
		out = append(out, TestSummary{
			ID: t.ID, Title: t.Title, Language: t.Language,
			DurationSec: t.DurationSec, IsLive: t.IsLive, TutorName: name,
		})
	}
	return out, nil
}

// ListMine returns the tutor's tests with submission counts.
func (s *TestService) ListMine(ctx context.Context, tutorID string) ([]TutorTest, error) {
	tests, err := s.tests.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
	}
	counts, err := s.subs.CountByTest(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TutorTest, len(tests))
	for i, t := range tests {
		out[i] = TutorTest{Test: t, SubmissionsCount: counts[t.ID]}
	}
	return out, nil
}

// Get serves the sanitized question set. The answer index never appears
// in this payload. A non-live test is still viewable for review; only
// Submit checks isLive.
func (s *TestService) Get(ctx context.Context, id string) (PublicTest, error) {
	t, err := s.content.GetTest(ctx, id)
	if err != nil {
		return PublicTest{}, err
	}
	public := make([]domain.PublicQuestion, len(t.Questions))
	for i, q := range t.Questions {
		public[i] = q.Public(i)
	}
	return PublicTest{
		ID: t.ID, Title: t.Title, Language: t.Language,
		DurationSec: t.DurationSec, Questions: public,
	}, nil
}

// SetLive publishes or unpublishes the tutor's test.
func (s *TestService) SetLive(ctx context.Context, tutorID, id string, live bool) (domain.Test, error) {
	t, err := s.tests.SetLive(ctx, id, tutorID, live)
	if err != nil {
		return domain.Test{}, err
	}
	s.content.Invalidate(ctx, id)
	return t, nil
}

// Delete removes the tutor's test and every submission against it.
func (s *TestService) Delete(ctx context.Context, tutorID, id string) error {
	if err := s.tests.DeleteTest(ctx, id, tutorID); err != nil {
		return err
	}
	s.content.Invalidate(ctx, id)
	return nil
}

// Submit scores one attempt against a live test and records exactly one
// immutable submission. Out-of-range and duplicate question indexes are
// ignored rather than rejected, and repeat attempts by the same learner
// each produce their own record. No server-side deadline is enforced;
// the countdown is client-side.
func (s *TestService) Submit(ctx context.Context, learnerID, testID string, answers []domain.Answer) (domain.Submission, error) {
	t, err := s.content.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Submission{}, domain.ErrTestNotLive
		}
		return domain.Submission{}, err
	}
	if !t.IsLive {
		return domain.Submission{}, domain.ErrTestNotLive
	}

	total := len(t.Questions)
	score := 0
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= total || seen[a.QuestionIndex] {
			continue
		}
		seen[a.QuestionIndex] = true
		if a.OptionIndex == t.Questions[a.QuestionIndex].AnswerIndex {
			score++
		}
	}

	sub := domain.Submission{
		ID:        uuid.NewString(),
		TestID:    t.ID,
		Learner:   learnerID,
		Answers:   answers,
		Score:     score,
		Total:     total,
		CreatedAt: s.now().UTC(),
	}
	if err := s.subs.CreateSubmission(ctx, &sub); err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

// Completed lists the learner's graded attempts with test metadata.
// Submissions whose test was deleted are dropped.
func (s *TestService) Completed(ctx context.Context, learnerID string) ([]CompletedTest, error) {
	subs, err := s.subs.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	out := make([]CompletedTest, 0, len(subs))
	for _, sub := range subs {
		t, err := s.tests.GetTest(ctx, sub.TestID)
		if err != nil {
			continue
		}
		out = append(out, CompletedTest{
			SubmissionID: sub.ID,
			TestID:       t.ID,
			Title:        t.Title,
			Language:     t.Language,
			DurationSec:  t.DurationSec,
			Score:        sub.Score,
			Total:        sub.Total,
			TakenAt:      sub.CreatedAt,
		})
	}
	return out, nil
}

// Submissions lists attempts against a test, owner only.
func (s *TestService) Submissions(ctx context.Context, tutorID, testID string) ([]domain.Submission, error) {
	t, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if t.Tutor != tutorID {
		return nil, domain.ErrTestNotFound
	}
	return s.subs.ListByTest(ctx, testID)
}

// Comment sets the tutor's comment on a submission against one of their
// tests and notifies the learner.
func (s *TestService) Comment(ctx context.Context, tutorID, submissionID, comment string) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.ErrEmptyComment
	}
	sub, err := s.subs.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	t, err := s.tests.GetTest(ctx, sub.TestID)
	if err != nil {
		return err
	}
	if t.Tutor != tutorID {
		return domain.ErrTestNotFound
	}
	if err := s.subs.SetComment(ctx, submissionID, comment); err != nil {
		return err
	}
	_, _, err = s.notifications.Notify(ctx, sub.Learner, domain.NotificationComment,
		fmt.Sprintf("New comment on %q", t.Title), comment,
		map[string]string{"submissionId": sub.ID, "testId": t.ID})
	return err
}

// Generate asks the AI collaborator for a fresh question set. The count
// is clamped to [1, 20] as the product caps generation size.
func (s *TestService) Generate(ctx context.Context, sourceLanguage, targetLanguage string, count int, difficulty string) ([]domain.Question, error) {
	if strings.TrimSpace(sourceLanguage) == "" || strings.TrimSpace(targetLanguage) == "" {
		return nil, fmt.Errorf("%w: sourceLanguage and targetLanguage are required", domain.ErrValidation)
	}
	if count < 1 {
		count = 5
	}
	if count > 20 {
		count = 20
	}
	if difficulty == "" {
		difficulty = "Beginner"
	}
	return s.generator.GenerateQuestions(ctx, sourceLanguage, targetLanguage, count, difficulty)
}
