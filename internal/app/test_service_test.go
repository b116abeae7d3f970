package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"linguahub/internal/ai"
	"linguahub/internal/app"
	"linguahub/internal/domain"
	"linguahub/internal/infra/memory"
	"linguahub/internal/realtime"
)

type fakeGenerator struct {
	lastCount      int
	lastDifficulty string
}

func (g *fakeGenerator) GenerateQuestions(_ context.Context, _, _ string, count int, difficulty string) ([]domain.Question, error) {
	g.lastCount = count
	g.lastDifficulty = difficulty
	out := make([]domain.Question, count)
	for i := range out {
		out[i] = domain.Question{Prompt: "generated", Options: []string{"a", "b"}, AnswerIndex: 0}
	}
	return out, nil
}

type testFixture struct {
	store         *memory.TestStore
	tests         *app.TestService
	notifications *app.NotificationService
	generator     *fakeGenerator
}

func newTestFixture() *testFixture {
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)
	store := memory.NewTestStore()
	users := memory.NewUserDirectory([]domain.User{
		{ID: "l1", Name: "Alice", Role: domain.RoleLearner},
		{ID: "t1", Name: "Bob", Role: domain.RoleTutor},
		{ID: "t2", Name: "Carol", Role: domain.RoleTutor},
	})
	clock := testClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	notifications := app.NewNotificationServiceWithClock(memory.NewNotificationStore(), dispatcher, clock)
	generator := &fakeGenerator{}
	content := memory.NewTestRepository(store, 5*time.Minute)
	tests := app.NewTestServiceWithClock(store, store, content, users, notifications, generator, clock)
	return &testFixture{store: store, tests: tests, notifications: notifications, generator: generator}
}

func (fx *testFixture) createLiveTest(t *testing.T) domain.Test {
	t.Helper()
	created, err := fx.tests.Create(context.Background(), "t1", app.CreateTestInput{
		Title:       "Dutch basics",
		Language:    "Dutch",
		DurationSec: 300,
		IsLive:      true,
		Questions: []domain.Question{
			{Prompt: "hello?", Options: []string{"dag", "hallo", "doei"}, AnswerIndex: 1},
			{Prompt: "bye?", Options: []string{"doei", "hallo"}, AnswerIndex: 0},
			{Prompt: "thanks?", Options: []string{"graag", "nee", "dank"}, AnswerIndex: 2},
		},
	})
	if err != nil {
		t.Fatalf("create test failed: %v", err)
	}
	return created
}

func TestSubmitScoresAgainstAnswerKey(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	sub, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{
		{QuestionIndex: 0, OptionIndex: 1},
		{QuestionIndex: 1, OptionIndex: 1},
		{QuestionIndex: 2, OptionIndex: 2},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.Score != 2 || sub.Total != 3 {
		t.Fatalf("expected score 2/3, got %d/%d", sub.Score, sub.Total)
	}
}

func TestSubmitIgnoresDuplicateAndOutOfRangeAnswers(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	sub, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{
		{QuestionIndex: 0, OptionIndex: 1}, // correct, counts
		{QuestionIndex: 0, OptionIndex: 0}, // duplicate, ignored
		{QuestionIndex: 7, OptionIndex: 1}, // out of range, ignored
		{QuestionIndex: -1, OptionIndex: 0},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.Score != 1 || sub.Total != 3 {
		t.Fatalf("expected score 1/3, got %d/%d", sub.Score, sub.Total)
	}
	if len(sub.Answers) != 4 {
		t.Fatalf("the raw answer sheet is kept as submitted, got %d entries", len(sub.Answers))
	}
}

func TestSubmitRequiresLiveTest(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()

	if _, err := fx.tests.Submit(ctx, "l1", "missing", nil); !errors.Is(err, domain.ErrTestNotLive) {
		t.Fatalf("missing test must read as not live, got %v", err)
	}

	created, err := fx.tests.Create(ctx, "t1", app.CreateTestInput{
		Title: "Draft", Language: "Dutch", DurationSec: 60, IsLive: false,
		Questions: []domain.Question{{Prompt: "p", Options: []string{"a", "b"}, AnswerIndex: 0}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{{QuestionIndex: 0, OptionIndex: 0}}); !errors.Is(err, domain.ErrTestNotLive) {
		t.Fatalf("unpublished test must reject submissions, got %v", err)
	}

	subs, err := fx.store.ListByTest(ctx, created.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("a rejected attempt must not store a submission, got %d", len(subs))
	}
}

func TestSubmitAllowsRepeatAttempts(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	answers := []domain.Answer{{QuestionIndex: 0, OptionIndex: 1}}
	if _, err := fx.tests.Submit(ctx, "l1", created.ID, answers); err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}
	if _, err := fx.tests.Submit(ctx, "l1", created.ID, answers); err != nil {
		t.Fatalf("second attempt failed: %v", err)
	}
	subs, err := fx.store.ListByTest(ctx, created.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("each attempt gets its own record, got %d", len(subs))
	}
}

func TestGetServesSanitizedQuestions(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	public, err := fx.tests.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(public.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(public.Questions))
	}
	for i, q := range public.Questions {
		if q.Index != i {
			t.Fatalf("question %d carries index %d", i, q.Index)
		}
		if q.Prompt == "" || len(q.Options) < 2 {
			t.Fatalf("sanitized question %d lost its content: %+v", i, q)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()

	cases := []app.CreateTestInput{
		{Language: "Dutch", DurationSec: 60, Questions: []domain.Question{{Prompt: "p", Options: []string{"a", "b"}}}},
		{Title: "T", Language: "Dutch", DurationSec: 0, Questions: []domain.Question{{Prompt: "p", Options: []string{"a", "b"}}}},
		{Title: "T", Language: "Dutch", DurationSec: 60},
		{Title: "T", Language: "Dutch", DurationSec: 60, Questions: []domain.Question{{Prompt: "p", Options: []string{"a"}}}},
		{Title: "T", Language: "Dutch", DurationSec: 60, Questions: []domain.Question{{Prompt: "p", Options: []string{"a", "b"}, AnswerIndex: 5}}},
	}
	for i, in := range cases {
		if _, err := fx.tests.Create(ctx, "t1", in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestDeleteCascadesToSubmissions(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	sub, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{{QuestionIndex: 0, OptionIndex: 1}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := fx.tests.Delete(ctx, "t2", created.ID); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("foreign tutor must not delete, got %v", err)
	}
	if err := fx.tests.Delete(ctx, "t1", created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := fx.store.GetSubmission(ctx, sub.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("submissions must go with their test, got %v", err)
	}
	if _, err := fx.tests.Submit(ctx, "l1", created.ID, nil); !errors.Is(err, domain.ErrTestNotLive) {
		t.Fatalf("deleted test must reject submissions, got %v", err)
	}
}

func TestSubmissionsVisibleToOwnerOnly(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	if _, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{{QuestionIndex: 0, OptionIndex: 1}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := fx.tests.Submissions(ctx, "t2", created.ID); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("foreign tutor must see not-found, got %v", err)
	}
	subs, err := fx.tests.Submissions(ctx, "t1", created.ID)
	if err != nil {
		t.Fatalf("submissions failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
}

func TestCommentNotifiesLearner(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	sub, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{{QuestionIndex: 0, OptionIndex: 1}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := fx.tests.Comment(ctx, "t1", sub.ID, "   "); !errors.Is(err, domain.ErrEmptyComment) {
		t.Fatalf("expected empty comment error, got %v", err)
	}
	if err := fx.tests.Comment(ctx, "t2", sub.ID, "nope"); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("foreign tutor must not comment, got %v", err)
	}
	if err := fx.tests.Comment(ctx, "t1", sub.ID, "good effort"); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	stored, err := fx.store.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get submission failed: %v", err)
	}
	if stored.Comment != "good effort" {
		t.Fatalf("expected comment stored, got %q", stored.Comment)
	}

	list, err := fx.notifications.List(ctx, "l1")
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if len(list) != 1 || list[0].Kind != domain.NotificationComment {
		t.Fatalf("expected a comment notification, got %+v", list)
	}
}

func TestCompletedDropsDeletedTests(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	kept := fx.createLiveTest(t)
	gone := fx.createLiveTest(t)

	for _, id := range []string{kept.ID, gone.ID} {
		if _, err := fx.tests.Submit(ctx, "l1", id, []domain.Answer{{QuestionIndex: 0, OptionIndex: 1}}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := fx.tests.Delete(ctx, "t1", gone.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	completed, err := fx.tests.Completed(ctx, "l1")
	if err != nil {
		t.Fatalf("completed failed: %v", err)
	}
	if len(completed) != 1 || completed[0].TestID != kept.ID {
		t.Fatalf("expected only the surviving test, got %+v", completed)
	}
	if completed[0].Score != 1 || completed[0].Total != 3 {
		t.Fatalf("expected 1/3, got %d/%d", completed[0].Score, completed[0].Total)
	}
}

func TestListMineCountsSubmissions(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	created := fx.createLiveTest(t)

	for i := 0; i < 2; i++ {
		if _, err := fx.tests.Submit(ctx, "l1", created.ID, []domain.Answer{{QuestionIndex: 0, OptionIndex: 1}}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	mine, err := fx.tests.ListMine(ctx, "t1")
	if err != nil {
		t.Fatalf("list mine failed: %v", err)
	}
	if len(mine) != 1 || mine[0].SubmissionsCount != 2 {
		t.Fatalf("expected 2 submissions counted, got %+v", mine)
	}
}

func TestGenerateClampsCountAndDefaultsDifficulty(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()

	if _, err := fx.tests.Generate(ctx, "", "Dutch", 5, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := fx.tests.Generate(ctx, "English", "Dutch", 100, "Advanced"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if fx.generator.lastCount != 20 || fx.generator.lastDifficulty != "Advanced" {
		t.Fatalf("expected count clamped to 20, got %d/%q", fx.generator.lastCount, fx.generator.lastDifficulty)
	}

	if _, err := fx.tests.Generate(ctx, "English", "Dutch", 0, ""); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if fx.generator.lastCount != 5 || fx.generator.lastDifficulty != "Beginner" {
		t.Fatalf("expected defaults 5/Beginner, got %d/%q", fx.generator.lastCount, fx.generator.lastDifficulty)
	}
}

func TestGenerateUnconfigured(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture()
	svc := app.NewTestService(fx.store, fx.store, memory.NewTestRepository(fx.store, time.Minute),
		memory.NewUserDirectory(nil), fx.notifications, ai.Unconfigured{})

	if _, err := svc.Generate(ctx, "English", "Dutch", 5, ""); !errors.Is(err, domain.ErrAIUnavailable) {
		t.Fatalf("expected AI unavailable, got %v", err)
	}
}
