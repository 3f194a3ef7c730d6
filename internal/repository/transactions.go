// Package repository maps per-user transaction lists and resume snapshots
// onto the key-value store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gofinances/internal/core"
	"gofinances/internal/storage"
)

const DefaultNamespace = "@gofinances"

// TransactionRepository reads and appends the ordered transaction list of
// each user.
type TransactionRepository struct {
	store     storage.Store
	namespace string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTransactionRepository(store storage.Store, namespace string) *TransactionRepository {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	return &TransactionRepository{
		store:     store,
		namespace: namespace,
		locks:     make(map[string]*sync.Mutex),
	}
}

// TransactionsKey returns "<namespace>:transactions_user:<userID>".
func (r *TransactionRepository) TransactionsKey(userID string) string {
	return fmt.Sprintf("%s:transactions_user:%s", r.namespace, userID)
}

// ResumeKey returns "<namespace>:resume_user:<userID>:<yyyy-mm>".
func (r *TransactionRepository) ResumeKey(userID string, year, month int) string {
	return fmt.Sprintf("%s:resume_user:%s:%04d-%02d", r.namespace, userID, year, month)
}

// Load returns the full transaction list of userID. A missing key is an
// empty list, not an error.
func (r *TransactionRepository) Load(ctx context.Context, userID string) ([]core.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrEmptyUserID
	}
	return r.load(ctx, r.TransactionsKey(userID))
}

func (r *TransactionRepository) load(ctx context.Context, key string) ([]core.Transaction, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []core.Transaction{}, nil
	}

	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions %s: %w", key, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Append adds tx to the end of userID's list. Appends to the same key are
// serialised within this process.
func (r *TransactionRepository) Append(ctx context.Context, userID string, tx core.Transaction) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrEmptyUserID
	}
	key := r.TransactionsKey(userID)

	lock := r.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	txs, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	txs = append(txs, tx)

	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := r.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transaction appended",
		"user_id", userID,
		"transaction_id", tx.ID,
		"type", tx.Type,
		"count", len(txs))
	return nil
}

func (r *TransactionRepository) keyLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}
