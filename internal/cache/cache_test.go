package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"gofinances/internal/core"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	now = now.Add(30 * time.Second)
	c.Set("b", "z")

	now = now.Add(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0 (a already removed by Get)", n)
	}

	now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.cleanOnce(); n != 1 {
		t.Errorf("cleanOnce() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
}

type countingStore struct {
	txs   map[string][]core.Transaction
	loads int
	err   error

	// When set, Load signals entered after reading and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (s *countingStore) Load(_ context.Context, userID string) ([]core.Transaction, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	txs := append([]core.Transaction(nil), s.txs[userID]...)
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	return txs, nil
}

func (s *countingStore) Append(_ context.Context, userID string, tx core.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.txs[userID] = append(s.txs[userID], tx)
	return nil
}

func TestTransactionsReadThrough(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{txs: map[string][]core.Transaction{
		"u1": {{ID: "a", Name: "Pizza"}},
	}}
	cached := NewTransactions(store, 8, time.Minute)

	for i := 0; i < 3; i++ {
		txs, err := cached.Load(ctx, "u1")
		if err != nil || len(txs) != 1 {
			t.Fatalf("Load() = %v, %v", txs, err)
		}
	}
	if store.loads != 1 {
		t.Errorf("store loads = %d, want 1", store.loads)
	}

	txs, _ := cached.Load(ctx, "u1")
	txs[0].Name = "mutated"
	again, _ := cached.Load(ctx, "u1")
	if again[0].Name != "Pizza" {
		t.Error("cached list must not be shared with callers")
	}

	if err := cached.Append(ctx, "u1", core.Transaction{ID: "b"}); err != nil {
		t.Fatal(err)
	}
	txs, _ = cached.Load(ctx, "u1")
	if len(txs) != 2 || store.loads != 2 {
		t.Errorf("append should invalidate: len=%d loads=%d", len(txs), store.loads)
	}
}

func TestTransactionsDoesNotCacheErrors(t *testing.T) {
	store := &countingStore{txs: map[string][]core.Transaction{}, err: errors.New("down")}
	cached := NewTransactions(store, 8, time.Minute)

	if _, err := cached.Load(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
	store.err = nil
	if _, err := cached.Load(context.Background(), "u1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.loads != 2 {
		t.Errorf("store loads = %d, want 2", store.loads)
	}
}

func TestTransactionsLoadRacingAppend(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{
		txs:     map[string][]core.Transaction{},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	cached := NewTransactions(store, 8, time.Minute)

	done := make(chan []core.Transaction)
	go func() {
		txs, _ := cached.Load(ctx, "u1")
		done <- txs
	}()

	// The Load has read the empty list and is still in flight.
	<-store.entered
	if err := cached.Append(ctx, "u1", core.Transaction{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	close(store.release)
	if stale := <-done; len(stale) != 0 {
		t.Fatalf("in-flight load = %d transactions, want the pre-append list", len(stale))
	}

	store.entered = nil
	txs, err := cached.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("after append got %d transactions, want 1", len(txs))
	}
}
