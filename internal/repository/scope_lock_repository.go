package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

const scopeLockPrefix = "timetable:lock:"

// ScopeLockRepository serializes generation runs for a scope across API replicas.
type ScopeLockRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScopeLockRepository constructs the repository. The ttl bounds how long a
// crashed holder can block a scope.
func NewScopeLockRepository(client *redis.Client, ttl time.Duration) *ScopeLockRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScopeLockRepository{client: client, ttl: ttl}
}

// TryAcquire takes the lock for scope without waiting. ok is false when the
// scope is held elsewhere. The returned release function is safe to call once.
func (r *ScopeLockRepository) TryAcquire(ctx context.Context, scope string) (release func(), ok bool, err error) {
	if r.client == nil {
		return func() {}, true, nil
	}
	key := scopeLockPrefix + scope
	token := uuid.NewString()

	acquired, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire scope lock %s: %w", scope, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release = func() {
		// Released with a fresh context: the request context may already be done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err()
	}
	return release, true, nil
}
