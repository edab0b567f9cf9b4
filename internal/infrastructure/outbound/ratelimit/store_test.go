package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/ratelimit"
)

func TestStore_AllowWithinBurst(t *testing.T) {
	store := ratelimit.NewTokenBucketStore(time.Minute)
	defer store.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if !store.Allow(ctx, "GET:/a", 1, 3) {
			t.Fatalf("expected request %d within burst to be allowed", i)
		}
	}
}

func TestStore_DeniedOverBurst(t *testing.T) {
	store := ratelimit.NewTokenBucketStore(time.Minute)
	defer store.Stop()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		store.Allow(ctx, "GET:/a", 0.001, 2)
	}
	if store.Allow(ctx, "GET:/a", 0.001, 2) {
		t.Error("expected the request over burst to be denied")
	}
}

func TestStore_PerKeyIsolation(t *testing.T) {
	store := ratelimit.NewTokenBucketStore(time.Minute)
	defer store.Stop()

	ctx := context.Background()
	store.Allow(ctx, "GET:/a", 0.001, 1)
	if store.Allow(ctx, "GET:/a", 0.001, 1) {
		t.Fatal("expected key a to be exhausted")
	}
	if !store.Allow(ctx, "GET:/b", 0.001, 1) {
		t.Error("expected key b to be unaffected")
	}
}

func TestStore_PolicyParamsUpdated(t *testing.T) {
	store := ratelimit.NewTokenBucketStore(time.Minute)
	defer store.Stop()

	ctx := context.Background()
	store.Allow(ctx, "GET:/a", 0.001, 1)
	if store.Allow(ctx, "GET:/a", 0.001, 1) {
		t.Fatal("expected the single-token bucket to be exhausted")
	}

	// A raised burst takes effect on the next call.
	if !store.Allow(ctx, "GET:/a", 0.001, 5) {
		t.Error("expected the updated burst to admit the request")
	}
}

func TestStore_Evict(t *testing.T) {
	store := ratelimit.NewTokenBucketStore(time.Minute)
	defer store.Stop()

	ctx := context.Background()
	store.Allow(ctx, "GET:/a", 1, 1)
	if store.Len() != 1 {
		t.Fatalf("expected one limiter, got %d", store.Len())
	}

	// Nothing is older than the TTL yet.
	store.Evict()
	if store.Len() != 1 {
		t.Errorf("expected the fresh limiter to survive eviction, got %d", store.Len())
	}
}
