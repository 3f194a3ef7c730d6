package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ResumeSnapshot is a precomputed monthly category breakdown.
type ResumeSnapshot struct {
	UserID     string             `json:"user_id"`
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	TotalCents int64              `json:"total_cents"`
	Categories []SnapshotCategory `json:"categories"`
	ComputedAt time.Time          `json:"computed_at"`
}

type SnapshotCategory struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	TotalCents int64  `json:"total_cents"`
	Percent    string `json:"percent"`
}

func (r *TransactionRepository) SaveResume(ctx context.Context, snap ResumeSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode resume snapshot: %w", err)
	}
	key := r.ResumeKey(snap.UserID, snap.Year, snap.Month)
	if err := r.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write resume snapshot: %w", err)
	}
	return nil
}

// LoadResume returns the stored snapshot; ok is false when none exists.
func (r *TransactionRepository) LoadResume(ctx context.Context, userID string, year, month int) (ResumeSnapshot, bool, error) {
	raw, ok, err := r.store.Get(ctx, r.ResumeKey(userID, year, month))
	if err != nil {
		return ResumeSnapshot{}, false, fmt.Errorf("read resume snapshot: %w", err)
	}
	if !ok {
		return ResumeSnapshot{}, false, nil
	}
	var snap ResumeSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return ResumeSnapshot{}, false, fmt.Errorf("decode resume snapshot: %w", err)
	}
	return snap, true, nil
}
