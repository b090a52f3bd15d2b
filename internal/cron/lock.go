package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xfinds/xfinds-backend/pkg/redis"
)

const defaultLockTTL = 15 * time.Minute

// ErrLockLost means the lock expired and may now belong to another worker.
var ErrLockLost = errors.New("cron lock lost before release")

// Lock coordinates exclusive cron runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Update(ctx context.Context, key string, ttl time.Duration, attempts int, fn redis.UpdateFunc) error
}

// RedisLock is a lease keyed by a random owner token. Only the holder of the token
// may delete it, so a run that outlives the TTL cannot free a successor's lease.
type RedisLock struct {
	client lockStore
	key    string
	ttl    time.Duration
	owner  string
}

func NewRedisLock(client lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.owner = token
	}
	return ok, nil
}

// Release deletes the lease when this lock still owns it and returns ErrLockLost when
// it expired first.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	token := l.owner
	l.owner = ""
	err := l.client.Update(ctx, l.key, l.ttl, 1, func(current string, exists bool) (string, error) {
		if !exists || current != token {
			return "", ErrLockLost
		}
		return "", redis.ErrDeleteKey
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrLockLost), errors.Is(err, redis.ErrUpdateConflict):
		return ErrLockLost
	default:
		return fmt.Errorf("release %s: %w", l.key, err)
	}
}

// LocalLock always grants the lock. Used for per-process jobs such as cache warming.
type LocalLock struct{}

func (LocalLock) Acquire(context.Context) (bool, error) { return true, nil }

func (LocalLock) Release(context.Context) error { return nil }
