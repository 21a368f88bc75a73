package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "attribution:inv-1:1:2024-01-01", []byte(`{"tvpi":"1.1"}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, found, err := cache.Get(ctx, "attribution:inv-1:1:2024-01-01")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !found || string(val) != `{"tvpi":"1.1"}` {
		t.Fatalf("expected cached value, got found=%v val=%s", found, val)
	}

	if !mr.Exists(cachePrefix + "attribution:inv-1:1:2024-01-01") {
		t.Fatalf("expected key to be namespaced with %q", cachePrefix)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	val, found, err := NewCache(client).Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("expected no error on miss, got %v", err)
	}
	if found || val != nil {
		t.Fatalf("expected miss, got found=%v val=%s", found, val)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, found, _ := cache.Get(ctx, "short"); found {
		t.Fatalf("expected key to expire")
	}
}

func TestCacheGetReportsConnectionError(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	mr.Close()

	if _, _, err := NewCache(client).Get(context.Background(), "foo"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
