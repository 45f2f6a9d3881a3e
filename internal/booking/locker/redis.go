package locker

import (
	"context"
	"time"

	"github.com/andreasgmg/fornet/internal/ratelimit"
	"go.uber.org/zap"
)

// Redis shares booking locks between instances. The TTL bounds how long a
// crashed holder can block a resource.
type Redis struct {
	locker *ratelimit.Locker
	ttl    time.Duration
	wait   time.Duration
	log    *zap.Logger
}

func NewRedis(locker *ratelimit.Locker, ttl, wait time.Duration, log *zap.Logger) *Redis {
	return &Redis{locker: locker, ttl: ttl, wait: wait, log: log}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token, err := r.locker.Lock(ctx, key, r.ttl, r.wait)
	if err != nil {
		return nil, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.locker.Release(releaseCtx, key, token); err != nil {
			r.log.Warn("failed to release booking lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
