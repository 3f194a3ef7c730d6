package services

import (
	"context"
	"log/slog"
	"time"

	"gofinances/internal/core"
	"gofinances/internal/format"
)

// TransactionLoader reads a user's stored transaction list.
type TransactionLoader interface {
	Load(ctx context.Context, userID string) ([]core.Transaction, error)
}

// TransactionRow is a transaction formatted for the dashboard list.
type TransactionRow struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Amount   string        `json:"amount"`
	Type     string        `json:"type"`
	Category core.Category `json:"category"`
	Date     string        `json:"date"`
}

// HighlightCard is one of the three dashboard cards.
type HighlightCard struct {
	Amount          string `json:"amount"`
	LastTransaction string `json:"lastTransaction"`
	TotalCents      int64  `json:"totalCents"`
}

type Dashboard struct {
	UserID       string           `json:"userId"`
	Entries      HighlightCard    `json:"entries"`
	Expenses     HighlightCard    `json:"expensives"`
	Total        HighlightCard    `json:"total"`
	Transactions []TransactionRow `json:"transactions"`
	Skipped      int              `json:"skipped"`
	// Degraded is set when the stored list could not be read and an empty
	// list was summarised instead.
	Degraded bool `json:"degraded"`
}

type ResumeCategory struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	TotalCents     int64  `json:"totalCents"`
	TotalFormatted string `json:"totalFormatted"`
	Percent        string `json:"percent"`
}

type Resume struct {
	UserID         string           `json:"userId"`
	Year           int              `json:"year"`
	Month          int              `json:"month"`
	Period         string           `json:"period"`
	TotalCents     int64            `json:"totalCents"`
	TotalFormatted string           `json:"totalFormatted"`
	Categories     []ResumeCategory `json:"categories"`
	Skipped        int              `json:"skipped"`
	Degraded       bool             `json:"degraded"`
}

// SummaryService recomputes dashboard and resume views from the stored list.
// Nothing is cached: every call reloads and re-aggregates.
type SummaryService struct {
	loader TransactionLoader
	cfg    core.AggregationConfig
}

func NewSummaryService(loader TransactionLoader, cfg core.AggregationConfig) *SummaryService {
	if cfg.Catalog == nil {
		cfg.Catalog = core.DefaultCatalog()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SummaryService{loader: loader, cfg: cfg}
}

// Catalog returns the category catalog used for aggregation.
func (s *SummaryService) Catalog() core.Catalog {
	return s.cfg.Catalog
}

func (s *SummaryService) load(ctx context.Context, userID string) ([]core.Transaction, bool, error) {
	if userID == "" {
		return nil, false, core.ErrEmptyUserID
	}
	txs, err := s.loader.Load(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		slog.WarnContext(ctx, "Failed to load transactions, using empty list",
			"component", "summary", "user_id", userID, "error", err)
		return []core.Transaction{}, true, nil
	}
	return txs, false, nil
}

// Dashboard is the refresh command of the dashboard screen.
func (s *SummaryService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	txs, degraded, err := s.load(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	h := core.ComputeHighlights(txs, s.cfg)
	logSkipped(ctx, userID, h.Skipped)

	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, s.row(tx))
	}

	return Dashboard{
		UserID:       userID,
		Entries:      card(h.Entries),
		Expenses:     card(h.Expenses),
		Total:        card(h.Net),
		Transactions: rows,
		Skipped:      len(h.Skipped),
		Degraded:     degraded,
	}, nil
}

// Resume is the per-category breakdown of one month's expenses.
func (s *SummaryService) Resume(ctx context.Context, userID string, year, month int) (Resume, error) {
	txs, degraded, err := s.load(ctx, userID)
	if err != nil {
		return Resume{}, err
	}

	b := core.ComputeCategoryTotals(txs, month, year, s.cfg)
	logSkipped(ctx, userID, b.Skipped)

	cats := make([]ResumeCategory, 0, len(b.Categories))
	for _, c := range b.Categories {
		cats = append(cats, ResumeCategory{
			Key:            c.Key,
			Name:           c.Name,
			Color:          c.Color,
			TotalCents:     c.Total.Cents,
			TotalFormatted: c.TotalFormatted,
			Percent:        c.Percent,
		})
	}

	return Resume{
		UserID:         userID,
		Year:           year,
		Month:          month,
		Period:         format.MonthYear(year, month),
		TotalCents:     b.Total.Cents,
		TotalFormatted: format.Currency(b.Total.Cents),
		Categories:     cats,
		Skipped:        len(b.Skipped),
		Degraded:       degraded,
	}, nil
}

func (s *SummaryService) row(tx core.Transaction) TransactionRow {
	r := TransactionRow{
		ID:     tx.ID,
		Name:   tx.Name,
		Amount: string(tx.Amount),
		Type:   string(tx.Type),
	}
	if m, err := tx.Amount.Money(); err == nil {
		r.Amount = format.Currency(m.Cents)
	}
	if cat, ok := s.cfg.Catalog.Lookup(tx.Category); ok {
		r.Category = cat
	} else {
		r.Category = core.Category{Key: tx.Category, Name: core.Uncategorized.Name, Color: core.Uncategorized.Color}
	}
	if !tx.Date.IsZero() {
		r.Date = format.ShortDate(tx.Date.In(s.cfg.Location))
	}
	return r
}

func card(h core.Highlight) HighlightCard {
	return HighlightCard{
		Amount:          h.Amount,
		LastTransaction: h.LastTransaction,
		TotalCents:      h.Total.Cents,
	}
}

func logSkipped(ctx context.Context, userID string, skipped []core.SkippedRecord) {
	for _, sk := range skipped {
		slog.WarnContext(ctx, "Skipped transaction during aggregation",
			"component", "summary", "user_id", userID, "transaction_id", sk.ID, "error", sk.Err)
	}
}
