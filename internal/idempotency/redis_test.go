package idempotency

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewRedisStore(client, ttl), m
}

func TestRedisStoreClaimRelease(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	claimed, err := store.Claim(ctx, "/api/tasks", "k1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = store.Claim(ctx, "/api/tasks", "k1")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed {
		t.Fatal("expected duplicate claim to be rejected")
	}

	other, err := store.Claim(ctx, "/api/users", "k1")
	if err != nil {
		t.Fatalf("claim other scope: %v", err)
	}
	if !other {
		t.Fatal("keys must be namespaced by scope")
	}

	if err := store.Release(ctx, "/api/tasks", "k1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	claimed, err = store.Claim(ctx, "/api/tasks", "k1")
	if err != nil {
		t.Fatalf("claim after release: %v", err)
	}
	if !claimed {
		t.Fatal("expected claim after release to succeed")
	}
}

func TestRedisStoreKeysExpire(t *testing.T) {
	store, m := newTestStore(t, time.Minute)
	ctx := context.Background()

	if _, err := store.Claim(ctx, "scope", "k"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if ttl := m.TTL("idem:scope:k"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	m.FastForward(2 * time.Minute)

	claimed, err := store.Claim(ctx, "scope", "k")
	if err != nil {
		t.Fatalf("claim after expiry: %v", err)
	}
	if !claimed {
		t.Fatal("expected key to be claimable after ttl")
	}
}

func TestOpen(t *testing.T) {
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	store, err := Open(context.Background(), "redis://"+m.Addr()+"/0", time.Minute)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := Open(context.Background(), "://bad", time.Minute); err == nil {
		t.Fatal("expected parse error")
	}
}
