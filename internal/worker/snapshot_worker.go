// Package worker handles transaction events off the message queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gofinances/internal/amqp"
	"gofinances/internal/core"
	"gofinances/internal/repository"
	"gofinances/internal/sheets"
)

// SnapshotStore is the part of the transaction repository the worker needs.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) ([]core.Transaction, error)
	SaveResume(ctx context.Context, snap repository.ResumeSnapshot) error
}

// SnapshotWorker keeps monthly resume snapshots current and mirrors new
// transactions to a spreadsheet when an exporter is configured.
type SnapshotWorker struct {
	store    SnapshotStore
	exporter sheets.TransactionExporter
	cfg      core.AggregationConfig
	now      func() time.Time
}

// NewSnapshotWorker creates the worker. exporter may be nil.
func NewSnapshotWorker(store SnapshotStore, exporter sheets.TransactionExporter, cfg core.AggregationConfig) *SnapshotWorker {
	if cfg.Catalog == nil {
		cfg.Catalog = core.DefaultCatalog()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SnapshotWorker{
		store:    store,
		exporter: exporter,
		cfg:      cfg,
		now:      time.Now,
	}
}

// HandleTransactionCreated recomputes the resume of the transaction's month
// and exports the transaction. A returned error causes the message to be requeued;
// both steps are safe to repeat except the export, which runs last.
func (w *SnapshotWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	slog.InfoContext(ctx, "Processing transaction.created message",
		"component", "worker",
		"user_id", msg.UserID,
		"transaction_id", msg.TransactionID)

	txs, err := w.store.Load(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	local := msg.Date.In(w.cfg.Location)
	snap := w.snapshot(msg.UserID, txs, local.Year(), int(local.Month()))
	if err := w.store.SaveResume(ctx, snap); err != nil {
		return fmt.Errorf("save resume snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Resume snapshot updated",
		"component", "worker",
		"user_id", msg.UserID,
		"year", snap.Year,
		"month", snap.Month,
		"categories", len(snap.Categories),
		"total_cents", snap.TotalCents)

	if w.exporter == nil {
		return nil
	}

	tx, ok := find(txs, msg.TransactionID)
	if !ok {
		slog.WarnContext(ctx, "Transaction not found in stored list, skipping export",
			"component", "worker",
			"user_id", msg.UserID,
			"transaction_id", msg.TransactionID)
		return nil
	}

	if _, err := w.exporter.AppendTransaction(ctx, msg.UserID, tx); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

func (w *SnapshotWorker) snapshot(userID string, txs []core.Transaction, year, month int) repository.ResumeSnapshot {
	b := core.ComputeCategoryTotals(txs, month, year, w.cfg)

	cats := make([]repository.SnapshotCategory, 0, len(b.Categories))
	for _, c := range b.Categories {
		cats = append(cats, repository.SnapshotCategory{
			Key:        c.Key,
			Name:       c.Name,
			Color:      c.Color,
			TotalCents: c.Total.Cents,
			Percent:    c.Percent,
		})
	}

	return repository.ResumeSnapshot{
		UserID:     userID,
		Year:       year,
		Month:      month,
		TotalCents: b.Total.Cents,
		Categories: cats,
		ComputedAt: w.now().UTC(),
	}
}

func find(txs []core.Transaction, id string) (core.Transaction, bool) {
	for _, tx := range txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}
