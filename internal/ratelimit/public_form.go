package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/observability/metrics"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// One bucket per endpoint, site and client address.
const keyPublicForm = "fornet:form:%s:%s:%s"

// PublicFormLimiter throttles anonymous writes on tenant sites (bookings,
// contact forms, password attempts) per site and client address.
type PublicFormLimiter struct {
	enabled bool
	bucket  *tokenBucket
	log     *zap.Logger
	metrics *metrics.Metrics
}

type PublicFormParams struct {
	fx.In

	Config  config.Config
	Client  *redis.Client `optional:"true"`
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func NewPublicFormLimiter(p PublicFormParams) *PublicFormLimiter {
	limitCfg := p.Config.RateLimit
	enabled := limitCfg.Enabled && p.Client != nil && limitCfg.PublicFormRate > 0 && limitCfg.PublicFormBurst > 0
	if limitCfg.Enabled && !enabled {
		p.Log.Warn("public form rate limiting requested but redis or limits are not configured")
	}
	return &PublicFormLimiter{
		enabled: enabled,
		bucket:  newTokenBucket(scripter(p.Client), limitCfg.PublicFormRate, limitCfg.PublicFormBurst),
		log:     p.Log.Named("ratelimit.public_form"),
		metrics: p.Metrics,
	}
}

func (l *PublicFormLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow fails open when Redis errors so a cache outage does not take the
// public sites down.
func (l *PublicFormLimiter) Allow(ctx context.Context, endpoint, subdomain, clientIP string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}

	key := fmt.Sprintf(keyPublicForm, endpoint, strings.ToLower(strings.TrimSpace(subdomain)), strings.TrimSpace(clientIP))
	res, err := l.bucket.take(ctx, key)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("endpoint", endpoint), zap.Error(err))
		return true, 0
	}
	if !res.allowed {
		l.metrics.RecordRateLimitDenied(ctx, endpoint, "public_form")
		return false, res.retryAfter
	}
	l.metrics.RecordRateLimitAllowed(ctx, endpoint)
	return true, 0
}

// scripter avoids wrapping a nil *redis.Client in a non-nil interface.
func scripter(client *redis.Client) redis.Scripter {
	if client == nil {
		return nil
	}
	return client
}
