package statcache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client. Unit tests skip when no local
// Redis is running; the integration tests cover the same paths against a
// containerized instance.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil, time.Minute)
}

func TestManager_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	key := Key{Index: "logs", StateVersion: 7}
	entry := &Entry{
		Stats:    []byte(`{"docs": 1234, "store_bytes": 56789}`),
		Expires:  time.Now().Add(5 * time.Minute),
		CachedAt: time.Now(),
	}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(retrieved.Stats) != string(entry.Stats) {
		t.Errorf("Stats mismatch: got %s, want %s", retrieved.Stats, entry.Stats)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)

	_, err := manager.Get(context.Background(), Key{Index: "nonexistent", StateVersion: 1})
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Get_VersionMiss(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	entry := &Entry{Stats: []byte(`{"docs": 1}`)}
	if err := manager.Set(ctx, Key{Index: "logs", StateVersion: 1}, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Same index under a newer cluster-state version must miss.
	_, err := manager.Get(ctx, Key{Index: "logs", StateVersion: 2})
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for new state version, got %v", err)
	}
}

func TestManager_Set_ExpiredEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	key := Key{Index: "logs", StateVersion: 7}
	entry := &Entry{
		Stats:   []byte(`{"docs": 1}`),
		Expires: time.Now().Add(-time.Hour), // Already expired
	}

	// Set silently skips expired entries.
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Set_DefaultTTL(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	key := Key{Index: "logs", StateVersion: 7}
	if err := manager.Set(ctx, key, &Entry{Stats: []byte(`{}`)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	ttl := retrieved.TTL()
	if ttl <= 50*time.Second || ttl > time.Minute {
		t.Errorf("entry TTL = %v, want roughly the manager TTL", ttl)
	}
}

func TestManager_Delete(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()

	key := Key{Index: "logs", StateVersion: 7}
	if err := manager.Set(ctx, key, &Entry{Stats: []byte(`{}`)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}

	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)

	if err := manager.Set(context.Background(), Key{Index: "logs"}, nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}
