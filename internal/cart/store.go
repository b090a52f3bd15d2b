package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when an offer id is not present in the cart.
var ErrItemNotFound = errors.New("cart item not found")

// Store persists carts keyed by an anonymous session id. Every mutation is atomic per
// session; UpdateItemAgent swaps agent and offer snapshot together.
type Store interface {
	Items(ctx context.Context, sessionID string) ([]Item, error)
	Add(ctx context.Context, sessionID string, item Item) ([]Item, error)
	Remove(ctx context.Context, sessionID, offerID string) ([]Item, error)
	Clear(ctx context.Context, sessionID string) error
	Replace(ctx context.Context, sessionID string, items []Item) ([]Item, error)
	UpdateItemAgent(ctx context.Context, sessionID, offerID, agentID string, price, shipFee decimal.Decimal, link string) (Item, error)
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Item)}
}

func (m *MemoryStore) Items(_ context.Context, sessionID string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CloneItems(m.carts[sessionID]), nil
}

func (m *MemoryStore) Add(_ context.Context, sessionID string, item Item) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := addItem(m.carts[sessionID], item)
	m.carts[sessionID] = items
	return CloneItems(items), nil
}

func (m *MemoryStore) Remove(_ context.Context, sessionID, offerID string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, err := removeItem(m.carts[sessionID], offerID)
	if err != nil {
		return nil, err
	}
	m.store(sessionID, items)
	return CloneItems(items), nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, sessionID string, items []Item) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := normalizeItems(items)
	m.store(sessionID, next)
	return CloneItems(next), nil
}

func (m *MemoryStore) UpdateItemAgent(_ context.Context, sessionID, offerID, agentID string, price, shipFee decimal.Decimal, link string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, updated, err := updateItemAgent(m.carts[sessionID], offerID, agentID, price, shipFee, link)
	if err != nil {
		return Item{}, err
	}
	m.store(sessionID, items)
	return updated, nil
}

func (m *MemoryStore) store(sessionID string, items []Item) {
	if len(items) == 0 {
		delete(m.carts, sessionID)
		return
	}
	m.carts[sessionID] = items
}

// addItem merges item into items, bumping the quantity when a line for the same product,
// agent and variant already exists.
func addItem(items []Item, item Item) []Item {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	out := CloneItems(items)
	key := item.LineKey()
	for i := range out {
		if out[i].LineKey() == key {
			out[i].Quantity = out[i].Units() + item.Quantity
			return out
		}
	}
	return append(out, CloneItems([]Item{item})...)
}

func removeItem(items []Item, offerID string) ([]Item, error) {
	out := make([]Item, 0, len(items))
	found := false
	for _, it := range items {
		if it.OfferID == offerID {
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		return nil, ErrItemNotFound
	}
	return out, nil
}

// updateItemAgent moves the line to another agent's offer. When the cart already holds a
// line for that product, agent and variant the two are merged into the earlier one.
func updateItemAgent(items []Item, offerID, agentID string, price, shipFee decimal.Decimal, link string) ([]Item, Item, error) {
	idx := -1
	for i := range items {
		if items[i].OfferID == offerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, Item{}, ErrItemNotFound
	}

	out := CloneItems(items)
	moved := out[idx].Reassign(agentID, price, shipFee, link)
	key := moved.LineKey()
	for j := range out {
		if j == idx || out[j].LineKey() != key {
			continue
		}
		keep, drop := j, idx
		if idx < j {
			keep, drop = idx, j
		}
		merged := moved
		merged.Quantity = out[idx].Units() + out[j].Units()
		if keep == j {
			merged.OfferID = out[j].OfferID
		}
		out[keep] = merged
		out = append(out[:drop], out[drop+1:]...)
		return out, merged, nil
	}
	out[idx] = moved
	return out, moved, nil
}

// normalizeItems collapses duplicate lines and clamps quantities.
func normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = addItem(out, it)
	}
	return out
}
