package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"linguahub/internal/ai"
	"linguahub/internal/domain"
)

// DoubtService routes learner questions to the AI assistant or an
// assigned human tutor, with notification fan-out on both legs.
type DoubtService struct {
	doubts        DoubtStore
	users         UserDirectory
	tests         TestStore
	notifications *NotificationService
	assistant     ai.Assistant
	now           func() time.Time
}

func NewDoubtService(doubts DoubtStore, users UserDirectory, tests TestStore, notifications *NotificationService, assistant ai.Assistant) *DoubtService {
	return &DoubtService{
		doubts: doubts, users: users, tests: tests,
		notifications: notifications, assistant: assistant, now: time.Now,
	}
}

// AskTutor records an open doubt assigned to a tutor and notifies them.
func (s *DoubtService) AskTutor(ctx context.Context, learnerID, tutorID, testID, question string) (domain.Doubt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Doubt{}, domain.ErrEmptyQuestion
	}
	if tutorID == "" {
		return domain.Doubt{}, domain.ErrMissingRecipient
	}
	tutor, err := s.users.GetUser(ctx, tutorID)
	if err != nil || tutor.Role != domain.RoleTutor {
		return domain.Doubt{}, domain.ErrUserNotFound
	}

	d := domain.Doubt{
		ID:        uuid.NewString(),
		Learner:   learnerID,
		Tutor:     tutor.ID,
		TestID:    testID,
		Question:  question,
		Status:    domain.DoubtOpen,
		CreatedAt: s.now().UTC(),
	}
	if err := s.doubts.CreateDoubt(ctx, &d); err != nil {
		return domain.Doubt{}, err
	}

	_, _, err = s.notifications.Notify(ctx, tutor.ID, domain.NotificationDoubt,
		"New doubt asked", clip(question, 120),
		map[string]string{"doubtId": d.ID, "learnerId": learnerID, "testId": testID})
	if err != nil {
		return domain.Doubt{}, err
	}
	return d, nil
}

// AskAI answers the doubt via the AI collaborator and stores the
// exchange for history. An unconfigured or failing AI surfaces as
// domain.ErrAIUnavailable; nothing is stored in that case.
func (s *DoubtService) AskAI(ctx context.Context, learnerID, testID, question string) (domain.Doubt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Doubt{}, domain.ErrEmptyQuestion
	}

	var contextTest *domain.Test
	if testID != "" {
		if t, err := s.tests.GetTest(ctx, testID); err == nil {
			contextTest = &t
		}
	}

	answer, err := s.assistant.AnswerFreeform(ctx, question, contextTest)
	if err != nil {
		return domain.Doubt{}, err
	}

	d := domain.Doubt{
		ID:        uuid.NewString(),
		Learner:   learnerID,
		TestID:    testID,
		Question:  question,
		AnswerAI:  strings.TrimSpace(answer),
		Status:    domain.DoubtAnswered,
		CreatedAt: s.now().UTC(),
	}
	if err := s.doubts.CreateDoubt(ctx, &d); err != nil {
		return domain.Doubt{}, err
	}
	return d, nil
}

// Inbox lists doubts assigned to the tutor, open first.
func (s *DoubtService) Inbox(ctx context.Context, tutorID string) ([]domain.Doubt, error) {
	return s.doubts.ListByTutor(ctx, tutorID)
}

// Mine lists the learner's doubt history, newest first.
func (s *DoubtService) Mine(ctx context.Context, learnerID string) ([]domain.Doubt, error) {
	return s.doubts.ListByLearner(ctx, learnerID)
}

// Answer records the assigned tutor's reply and notifies the learner.
func (s *DoubtService) Answer(ctx context.Context, tutorID, doubtID, answer string) (domain.Doubt, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return domain.Doubt{}, domain.ErrEmptyQuestion
	}
	d, err := s.doubts.GetDoubt(ctx, doubtID)
	if err != nil {
		return domain.Doubt{}, err
	}
	if d.Tutor == "" || d.Tutor != tutorID {
		return domain.Doubt{}, domain.ErrNotAssignedTutor
	}

	d.AnswerTutor = answer
	d.Status = domain.DoubtAnswered
	if err := s.doubts.UpdateDoubt(ctx, d); err != nil {
		return domain.Doubt{}, err
	}

	_, _, err = s.notifications.Notify(ctx, d.Learner, domain.NotificationDoubtAnswered,
		"Doubt answered", "Your tutor replied to your doubt.",
		map[string]string{"doubtId": d.ID})
	if err != nil {
		return domain.Doubt{}, err
	}
	return d, nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
