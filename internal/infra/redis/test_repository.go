package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"linguahub/internal/domain"
)

// TestLoader fetches test content from the backing store.
type TestLoader interface {
	GetTest(ctx context.Context, id string) (domain.Test, error)
}

// TestRepository caches test content in Redis and falls back to a
// loader on cache miss. The full test, answer keys included, is stored
// as JSON under test:{id}:content; the cache is server-side only and
// never serves answer keys to clients.
type TestRepository struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewTestRepository(client *redis.Client, loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, id string) (domain.Test, error) {
	key := r.contentKey(id)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var test domain.Test
		if err := json.Unmarshal(raw, &test); err == nil {
			return test, nil
		}
		// corrupt entry, fall through and refill
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var test domain.Test
			if err := json.Unmarshal(raw, &test); err == nil {
				return test, nil
			}
		}

		test, err := r.loader.GetTest(ctx, id)
		if err != nil {
			return domain.Test{}, err
		}

		if raw, err := json.Marshal(test); err == nil {
			// best-effort fill; a cache write failure is not a read failure
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

// Invalidate drops the cached content after a mutation.
func (r *TestRepository) Invalidate(ctx context.Context, id string) {
	_ = r.client.Del(ctx, r.contentKey(id)).Err()
}

func (r *TestRepository) contentKey(id string) string {
	return "test:" + id + ":content"
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
