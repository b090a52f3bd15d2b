package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/pkg/redis"
)

// redisClient is the subset of pkg/redis the cart store relies on.
type redisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Update(ctx context.Context, key string, ttl time.Duration, attempts int, fn redis.UpdateFunc) error
	CartKey(sessionID string) string
}

// RedisStore keeps each cart as a JSON document under its own key. Mutations run as
// optimistic transactions so concurrent tabs cannot interleave partial updates.
type RedisStore struct {
	client   redisClient
	ttl      time.Duration
	attempts int
}

func NewRedisStore(client redisClient, ttl time.Duration, attempts int) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl, attempts: attempts}, nil
}

func (r *RedisStore) Items(ctx context.Context, sessionID string) ([]Item, error) {
	raw, err := r.client.Get(ctx, r.client.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("read cart: %w", err)
	}
	return decodeItems(raw, true)
}

func (r *RedisStore) Add(ctx context.Context, sessionID string, item Item) ([]Item, error) {
	return r.mutate(ctx, sessionID, func(items []Item) ([]Item, error) {
		return addItem(items, item), nil
	})
}

func (r *RedisStore) Remove(ctx context.Context, sessionID, offerID string) ([]Item, error) {
	return r.mutate(ctx, sessionID, func(items []Item) ([]Item, error) {
		return removeItem(items, offerID)
	})
}

func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *RedisStore) Replace(ctx context.Context, sessionID string, items []Item) ([]Item, error) {
	next := normalizeItems(items)
	return r.mutate(ctx, sessionID, func([]Item) ([]Item, error) {
		return next, nil
	})
}

func (r *RedisStore) UpdateItemAgent(ctx context.Context, sessionID, offerID, agentID string, price, shipFee decimal.Decimal, link string) (Item, error) {
	var updated Item
	_, err := r.mutate(ctx, sessionID, func(items []Item) ([]Item, error) {
		next, item, err := updateItemAgent(items, offerID, agentID, price, shipFee, link)
		if err != nil {
			return nil, err
		}
		updated = item
		return next, nil
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

func (r *RedisStore) mutate(ctx context.Context, sessionID string, fn func([]Item) ([]Item, error)) ([]Item, error) {
	var result []Item
	err := r.client.Update(ctx, r.client.CartKey(sessionID), r.ttl, r.attempts, func(current string, exists bool) (string, error) {
		items, err := decodeItems(current, exists)
		if err != nil {
			return "", err
		}
		next, err := fn(items)
		if err != nil {
			return "", err
		}
		result = next
		if len(next) == 0 {
			return "", redis.ErrDeleteKey
		}
		buf, err := json.Marshal(next)
		if err != nil {
			return "", fmt.Errorf("encode cart: %w", err)
		}
		return string(buf), nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return CloneItems(result), nil
}

func decodeItems(raw string, exists bool) ([]Item, error) {
	if !exists || raw == "" {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
