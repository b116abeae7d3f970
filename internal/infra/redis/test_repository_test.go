package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"linguahub/internal/domain"
	"linguahub/internal/infra/memory"
)

func TestTestRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{TestLoader: seededStore(t)}
	repo := NewTestRepository(client, loader, time.Minute)

	if _, err := repo.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("get test: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	got, err := repo.GetTest(context.Background(), "test-1")
	if err != nil {
		t.Fatalf("get test 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if got.ID != "test-1" || len(got.Questions) != 1 || got.Questions[0].AnswerIndex != 1 {
		t.Fatalf("cached content must round-trip intact, got %+v", got)
	}

	if !mr.Exists("test:test-1:content") {
		t.Fatalf("expected content key in redis")
	}
}

func TestTestRepositoryInvalidateDropsKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	store := seededStore(t)
	loader := &countingLoader{TestLoader: store}
	repo := NewTestRepository(client, loader, time.Minute)

	if _, err := repo.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("get test: %v", err)
	}
	if _, err := store.SetLive(context.Background(), "test-1", "t1", false); err != nil {
		t.Fatalf("set live: %v", err)
	}

	repo.Invalidate(context.Background(), "test-1")
	if mr.Exists("test:test-1:content") {
		t.Fatalf("expected content key dropped")
	}

	got, err := repo.GetTest(context.Background(), "test-1")
	if err != nil {
		t.Fatalf("get test after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
	if got.IsLive {
		t.Fatalf("expected the mutation visible after invalidate")
	}
}

type countingLoader struct {
	TestLoader
	calls int
}

func (l *countingLoader) GetTest(ctx context.Context, id string) (domain.Test, error) {
	l.calls++
	return l.TestLoader.GetTest(ctx, id)
}

func seededStore(t *testing.T) *memory.TestStore {
	t.Helper()
	store := memory.NewTestStore()
	err := store.CreateTest(context.Background(), &domain.Test{
		ID: "test-1", Tutor: "t1", Title: "Dutch basics", Language: "Dutch", IsLive: true,
		Questions: []domain.Question{{Prompt: "hello?", Options: []string{"dag", "hallo"}, AnswerIndex: 1}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
