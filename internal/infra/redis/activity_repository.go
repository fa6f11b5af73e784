package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sprint-quiz-service/internal/domain"
	"sprint-quiz-service/internal/infra/memory"
)

// ActivityRepository caches activities in Redis and falls back to a loader on cache miss.
// Activities are stored as JSON: SET activity:{activityID} {json} EX ttl
// Events are never cached so that closing an event takes effect at once.
type ActivityRepository struct {
	client *redis.Client
	loader memory.ActivityLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewActivityRepository(client *redis.Client, loader memory.ActivityLoader, ttl time.Duration) *ActivityRepository {
	return &ActivityRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ActivityRepository) GetActivity(ctx context.Context, activityID string) (domain.Activity, error) {
	if a, ok := r.cached(ctx, activityID); ok {
		return a, nil
	}

	result, err, _ := r.sf.Do(activityID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if a, ok := r.cached(ctx, activityID); ok {
			return a, nil
		}

		activity, err := r.loader.LoadActivity(ctx, activityID)
		if err != nil {
			return domain.Activity{}, err
		}

		if payload, err := json.Marshal(activity); err == nil {
			_ = r.client.Set(ctx, activityKey(activityID), payload, r.ttlWithJitter()).Err()
		}
		return activity, nil
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return result.(domain.Activity), nil
}

func (r *ActivityRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return r.loader.LoadEvent(ctx, eventID)
}

// Invalidate drops a cached activity.
func (r *ActivityRepository) Invalidate(ctx context.Context, activityID string) error {
	return r.client.Del(ctx, activityKey(activityID)).Err()
}

func (r *ActivityRepository) cached(ctx context.Context, activityID string) (domain.Activity, bool) {
	payload, err := r.client.Get(ctx, activityKey(activityID)).Bytes()
	if err != nil {
		return domain.Activity{}, false
	}
	var a domain.Activity
	if err := json.Unmarshal(payload, &a); err != nil {
		return domain.Activity{}, false
	}
	return a, true
}

func (r *ActivityRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func activityKey(activityID string) string {
	return "activity:" + activityID
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
