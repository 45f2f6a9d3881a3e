package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("lock_not_acquired")

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a single-key Redis lock. The holder is identified by a random
// token so an expired holder cannot release a lock taken over by another.
type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Lock retries TryLock with exponential backoff until the lock is taken or
// wait has elapsed. It returns ErrLockNotAcquired on timeout.
func (l *Locker) Lock(ctx context.Context, key string, ttl, wait time.Duration) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	token, err := backoff.Retry(ctx, func() (string, error) {
		token, ok, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		if !ok {
			return "", ErrLockNotAcquired
		}
		return token, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxElapsedTime(wait))
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			return "", ErrLockNotAcquired
		}
		return "", err
	}
	return token, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}
