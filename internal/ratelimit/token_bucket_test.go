package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreasgmg/fornet/internal/config"
	"go.uber.org/zap"
)

func TestBucketTTL(t *testing.T) {
	if got := bucketTTL(0.2, 5); got != 50*time.Second {
		t.Fatalf("expected 50s, got %s", got)
	}
	if got := bucketTTL(100, 1); got != time.Second {
		t.Fatalf("expected floor of 1s, got %s", got)
	}
	if got := bucketTTL(0, 0); got != time.Second {
		t.Fatalf("expected 1s for invalid input, got %s", got)
	}
}

func TestRefillWait(t *testing.T) {
	if got := refillWait(1.2, 1); got != 0 {
		t.Fatalf("expected no wait with a whole token left, got %s", got)
	}
	if got := refillWait(0.5, 0.5); got != time.Second {
		t.Fatalf("expected 1s, got %s", got)
	}
	if got := refillWait(0, 0.2); got != 5*time.Second {
		t.Fatalf("expected 5s, got %s", got)
	}
}

func TestBucketWithoutRedis(t *testing.T) {
	if _, err := newTokenBucket(nil, 1, 1).take(context.Background(), "k"); !errors.Is(err, errBucketUnavailable) {
		t.Fatalf("expected errBucketUnavailable, got %v", err)
	}
	if scripter(nil) != nil {
		t.Fatalf("expected nil client to stay a nil scripter")
	}
}

func TestPublicFormLimiterDisabledAllows(t *testing.T) {
	limiter := NewPublicFormLimiter(PublicFormParams{
		Config: config.Config{RateLimit: config.RateLimitConfig{Enabled: true, PublicFormRate: 1, PublicFormBurst: 1}},
		Log:    zap.NewNop(),
	})
	if limiter.Enabled() {
		t.Fatalf("expected limiter without redis to be disabled")
	}
	ok, wait := limiter.Allow(context.Background(), "booking", "tvattstugan", "127.0.0.1")
	if !ok || wait != 0 {
		t.Fatalf("expected disabled limiter to allow")
	}
}

func TestNilLockerReleaseIsNoop(t *testing.T) {
	var l *Locker
	if err := l.Release(context.Background(), "k", "t"); err != nil {
		t.Fatalf("expected nil locker release to be a no-op, got %v", err)
	}
	if _, _, err := l.TryLock(context.Background(), "k", time.Second); err == nil {
		t.Fatalf("expected nil locker to refuse locking")
	}
}
