package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"gofinances/internal/core"
)

// TransactionStore is the repository surface the cache sits in front of.
type TransactionStore interface {
	Load(ctx context.Context, userID string) ([]core.Transaction, error)
	Append(ctx context.Context, userID string, tx core.Transaction) error
}

// Transactions is a read-through cache of per-user transaction lists.
// Appends made through it invalidate the user's entry; any other write
// becomes visible within ttl.
type Transactions struct {
	next TransactionStore
	lru  *LRUCache[[]core.Transaction]

	// gens counts appends per user. A Load only fills the cache when no
	// append completed while it was reading the store.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewTransactions(next TransactionStore, maxUsers int, ttl time.Duration) *Transactions {
	return &Transactions{
		next: next,
		lru:  NewLRUCache[[]core.Transaction](maxUsers, ttl),
		gens: make(map[string]uint64),
	}
}

// Load returns a copy so callers may reorder the result freely.
func (t *Transactions) Load(ctx context.Context, userID string) ([]core.Transaction, error) {
	if txs, ok := t.lru.Get(userID); ok {
		return slices.Clone(txs), nil
	}

	t.mu.Lock()
	gen := t.gens[userID]
	t.mu.Unlock()

	txs, err := t.next.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.gens[userID] == gen {
		t.lru.Set(userID, slices.Clone(txs))
	}
	t.mu.Unlock()
	return txs, nil
}

func (t *Transactions) Append(ctx context.Context, userID string, tx core.Transaction) error {
	if err := t.next.Append(ctx, userID, tx); err != nil {
		return err
	}
	t.mu.Lock()
	t.gens[userID]++
	t.lru.Delete(userID)
	t.mu.Unlock()
	return nil
}

// Cleaner exposes the underlying LRU for a Manager.
func (t *Transactions) Cleaner() Cleaner {
	return t.lru
}
