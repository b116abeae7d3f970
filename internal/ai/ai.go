// Package ai declares the interfaces the core consumes from the
// question-generation and doubt-answering services. Prompt construction
// and retry logic live behind these interfaces, outside the core.
package ai

import (
	"context"

	"linguahub/internal/domain"
)

// Generator produces translation MCQs for tutors drafting a test.
type Generator interface {
	GenerateQuestions(ctx context.Context, sourceLanguage, targetLanguage string, count int, difficulty string) ([]domain.Question, error)
}

// Assistant answers a freeform learner doubt, optionally grounded in a
// test the doubt refers to.
type Assistant interface {
	AnswerFreeform(ctx context.Context, question string, contextTest *domain.Test) (string, error)
}

// Unconfigured is the default collaborator when no AI backend is wired.
// Every call fails with domain.ErrAIUnavailable, which the transport
// maps to a 502-shaped response.
type Unconfigured struct{}

func (Unconfigured) GenerateQuestions(context.Context, string, string, int, string) ([]domain.Question, error) {
	return nil, domain.ErrAIUnavailable
}

func (Unconfigured) AnswerFreeform(context.Context, string, *domain.Test) (string, error) {
	return "", domain.ErrAIUnavailable
}
