package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xfinds/xfinds-backend/pkg/redis"
)

type memoryLockStore struct {
	data map[string]string
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryLockStore) Update(_ context.Context, key string, _ time.Duration, _ int, fn redis.UpdateFunc) error {
	current, exists := m.data[key]
	next, err := fn(current, exists)
	if errors.Is(err, redis.ErrDeleteKey) {
		delete(m.data, key)
		return nil
	}
	if err != nil {
		return err
	}
	m.data[key] = next
	return nil
}

func TestRedisLockExclusive(t *testing.T) {
	store := &memoryLockStore{data: map[string]string{}}
	ctx := context.Background()

	first, err := NewRedisLock(store, "xf:lock:catalog-sync", 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "xf:lock:catalog-sync", time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire ok=%v err=%v", ok, err)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second holder must not acquire")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, held := store.data["xf:lock:catalog-sync"]; !held {
		t.Fatal("non-owner release must not drop the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected lock to be free after release")
	}
}

func TestRedisLockReportsExpiredLease(t *testing.T) {
	store := &memoryLockStore{data: map[string]string{}}
	ctx := context.Background()
	first, _ := NewRedisLock(store, "xf:lock:catalog-sync", time.Minute)
	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatal("expected first acquire")
	}

	// The lease expires mid-run and another worker takes it.
	delete(store.data, "xf:lock:catalog-sync")
	second, _ := NewRedisLock(store, "xf:lock:catalog-sync", time.Minute)
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected second acquire after expiry")
	}

	if err := first.Release(ctx); !errors.Is(err, ErrLockLost) {
		t.Fatalf("expected ErrLockLost, got %v", err)
	}
	if _, held := store.data["xf:lock:catalog-sync"]; !held {
		t.Fatal("stale holder must not free the successor's lease")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("second release should be a no-op, got %v", err)
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected lease to be gone, got %v", store.data)
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected error without client")
	}
	if _, err := NewRedisLock(&memoryLockStore{}, "", 0); err == nil {
		t.Fatal("expected error without key")
	}
}

func TestLocalLockAlwaysGrants(t *testing.T) {
	var lock Lock = LocalLock{}
	for i := 0; i < 2; i++ {
		if ok, err := lock.Acquire(context.Background()); err != nil || !ok {
			t.Fatalf("acquire %d ok=%v err=%v", i, ok, err)
		}
	}
}
