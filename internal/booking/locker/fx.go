package locker

import (
	"time"

	"github.com/andreasgmg/fornet/internal/booking/domain"
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("booking.locker",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Redis  *ratelimit.Locker `optional:"true"`
}

// New picks the Redis locker when a Redis client is configured and falls back
// to the in-process locker otherwise.
func New(p Params) domain.Locker {
	ttl := time.Duration(p.Config.Booking.LockTTLSeconds) * time.Second
	wait := time.Duration(p.Config.Booking.LockWaitSeconds) * time.Second
	log := p.Log.Named("booking.locker")

	if p.Redis != nil {
		log.Info("using redis booking locker")
		return NewRedis(p.Redis, ttl, wait, log)
	}
	log.Info("using in-process booking locker")
	return NewLocal(wait)
}
