package session

import (
	"context"
	"os"
	"strconv"
	"testing"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisStorageIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			db = n
		}
	}

	ctx := context.Background()
	client, err := ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), db)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	defer client.Close()

	storage := NewRedisStorage(client, "go-todo:test:"+t.Name()+":")
	defer func() { _ = storage.Delete(ctx, tokenKey, userKey) }()

	if _, ok, err := storage.Get(ctx, tokenKey); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err = storage.Set(ctx, map[string]string{tokenKey: "tok"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	store := mustStore(t, storage, nil)
	if store.Token() != "tok" {
		t.Fatalf("expected token from redis, got %q", store.Token())
	}
	if err = store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := storage.Get(ctx, tokenKey); ok {
		t.Fatalf("expected token deleted from redis")
	}
}
