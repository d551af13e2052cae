package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiterIsSharedPerProvider(t *testing.T) {
	l := NewProviderLimiter(DefaultConfig())

	if l.Limiter("google_flights") != l.Limiter("google_flights") {
		t.Error("expected the same limiter for one provider")
	}
	if l.Limiter("google_flights") == l.Limiter("flightapi") {
		t.Error("expected separate limiters per provider")
	}
}

func TestWaitHonoursBurst(t *testing.T) {
	l := NewProviderLimiter(Config{RequestsPerSecond: 0.001, BurstSize: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx, "p"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "p"); err == nil {
		t.Error("expected the third wait to fail once the burst is spent")
	}
}

func TestSetProviderLimitUnlimited(t *testing.T) {
	l := NewProviderLimiter(Config{RequestsPerSecond: 0.001, BurstSize: 1})
	l.SetProviderLimit("local", 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 50; i++ {
		if err := l.Wait(ctx, "local"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
}
