package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sprint-quiz-service/internal/domain"
)

// ActivityLoader fetches activities and events from a backing store.
type ActivityLoader interface {
	LoadActivity(ctx context.Context, activityID string) (domain.Activity, error)
	LoadEvent(ctx context.Context, eventID string) (domain.Event, error)
}

// ActivityRepository caches activities with TTL to avoid repeated DB hits.
// Events carry the open/closed switch and are always read through.
type ActivityRepository struct {
	loader ActivityLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedActivity
}

type cachedActivity struct {
	activity  domain.Activity
	expiresAt time.Time
}

func NewActivityRepository(loader ActivityLoader, ttl time.Duration) *ActivityRepository {
	return &ActivityRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedActivity),
	}
}

func (r *ActivityRepository) GetActivity(ctx context.Context, activityID string) (domain.Activity, error) {
	if a, ok := r.cached(activityID); ok {
		return a, nil
	}

	result, err, _ := r.sf.Do(activityID, func() (interface{}, error) {
		if a, ok := r.cached(activityID); ok {
			return a, nil
		}

		activity, err := r.loader.LoadActivity(ctx, activityID)
		if err != nil {
			return domain.Activity{}, err
		}

		r.mu.Lock()
		r.cache[activityID] = cachedActivity{
			activity:  activity,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
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

// Invalidate drops a cached activity, e.g. after an admin edit.
func (r *ActivityRepository) Invalidate(_ context.Context, activityID string) error {
	r.mu.Lock()
	delete(r.cache, activityID)
	r.mu.Unlock()
	return nil
}

func (r *ActivityRepository) cached(activityID string) (domain.Activity, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[activityID]; ok && entry.expiresAt.After(now) {
		return entry.activity, true
	}
	return domain.Activity{}, false
}

func (r *ActivityRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticActivityLoader is a simple loader backed by in-memory maps (useful for tests/demos).
type StaticActivityLoader struct {
	mu         sync.RWMutex
	events     map[string]domain.Event
	activities map[string]domain.Activity
}

func NewStaticActivityLoader(events []domain.Event, activities []domain.Activity) *StaticActivityLoader {
	l := &StaticActivityLoader{
		events:     make(map[string]domain.Event, len(events)),
		activities: make(map[string]domain.Activity, len(activities)),
	}
	for _, e := range events {
		l.events[e.ID] = e
	}
	for _, a := range activities {
		l.activities[a.ID] = a
	}
	return l
}

func (l *StaticActivityLoader) LoadActivity(_ context.Context, activityID string) (domain.Activity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.activities[activityID]; ok {
		return a, nil
	}
	return domain.Activity{}, domain.ErrActivityNotFound
}

func (l *StaticActivityLoader) LoadEvent(_ context.Context, eventID string) (domain.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.events[eventID]; ok {
		return e, nil
	}
	return domain.Event{}, domain.ErrEventNotFound
}

// SetActivityFrozen releases (or withdraws) an activity for submissions.
func (l *StaticActivityLoader) SetActivityFrozen(_ context.Context, activityID string, frozen bool) (domain.Activity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.activities[activityID]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	a.IsFrozen = frozen
	l.activities[activityID] = a
	return a, nil
}

// UpdateEvent applies the non-nil switches of update.
func (l *StaticActivityLoader) UpdateEvent(_ context.Context, eventID string, update domain.EventUpdate) (domain.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	if update.IsOpen != nil {
		e.IsOpen = *update.IsOpen
	}
	if update.LeaderboardVisibility != nil {
		e.LeaderboardVisibility = *update.LeaderboardVisibility
	}
	l.events[eventID] = e
	return e, nil
}

// SetEventOpen flips an event's open switch.
func (l *StaticActivityLoader) SetEventOpen(eventID string, open bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.events[eventID]; ok {
		e.IsOpen = open
		l.events[eventID] = e
	}
}

func (l *StaticActivityLoader) SetLeaderboardVisibility(eventID string, v domain.LeaderboardVisibility) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.events[eventID]; ok {
		e.LeaderboardVisibility = v
		l.events[eventID] = e
	}
}
