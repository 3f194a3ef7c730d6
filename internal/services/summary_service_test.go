package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gofinances/internal/core"
)

type fakeLoader struct {
	txs []core.Transaction
	err error
}

func (f *fakeLoader) Load(ctx context.Context, userID string) ([]core.Transaction, error) {
	return f.txs, f.err
}

func sampleTxs() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Name: "Salário", Amount: "1000", Type: core.Income, Category: "salary", Date: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)},
		{ID: "2", Name: "Pizza", Amount: "40", Type: core.Expense, Category: "food", Date: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)},
		{ID: "3", Name: "Cinema", Amount: "20", Type: core.Expense, Category: "leisure", Date: time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC)},
	}
}

func TestSummaryService_Dashboard(t *testing.T) {
	svc := NewSummaryService(&fakeLoader{txs: sampleTxs()}, core.DefaultAggregationConfig())

	d, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"entries amount", d.Entries.Amount, "R$ 1.000,00"},
		{"entries last", d.Entries.LastTransaction, "Última entrada dia 5 de janeiro"},
		{"expenses amount", d.Expenses.Amount, "R$ 60,00"},
		{"expenses last", d.Expenses.LastTransaction, "Última saída dia 12 de janeiro"},
		{"total amount", d.Total.Amount, "R$ 940,00"},
		{"total interval", d.Total.LastTransaction, "01 a 12 de janeiro"},
		{"row amount", d.Transactions[1].Amount, "R$ 40,00"},
		{"row date", d.Transactions[1].Date, "10/01/24"},
		{"row category", d.Transactions[1].Category.Name, "Alimentação"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if len(d.Transactions) != 3 || d.Transactions[0].ID != "1" {
		t.Errorf("rows must keep stored order, got %+v", d.Transactions)
	}
	if d.Degraded {
		t.Error("Degraded should be false")
	}
}

func TestSummaryService_DashboardDegradesOnStorageError(t *testing.T) {
	svc := NewSummaryService(&fakeLoader{err: errors.New("disk gone")}, core.DefaultAggregationConfig())

	d, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if !d.Degraded {
		t.Error("expected Degraded")
	}
	if d.Entries.Amount != "R$ 0,00" || d.Entries.LastTransaction != core.NoTransactionsMessage {
		t.Errorf("unexpected empty card: %+v", d.Entries)
	}
	if d.Transactions == nil || len(d.Transactions) != 0 {
		t.Errorf("expected empty non-nil rows, got %v", d.Transactions)
	}
}

func TestSummaryService_CancelledContext(t *testing.T) {
	svc := NewSummaryService(&fakeLoader{err: context.Canceled}, core.DefaultAggregationConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Dashboard(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSummaryService_EmptyUser(t *testing.T) {
	svc := NewSummaryService(&fakeLoader{}, core.DefaultAggregationConfig())
	if _, err := svc.Resume(context.Background(), "", 2024, 1); !errors.Is(err, core.ErrEmptyUserID) {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestSummaryService_Resume(t *testing.T) {
	txs := append(sampleTxs(), core.Transaction{
		ID: "4", Name: "Broken", Amount: "abc", Type: core.Expense, Category: "food",
		Date: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	})
	svc := NewSummaryService(&fakeLoader{txs: txs}, core.DefaultAggregationConfig())

	r, err := svc.Resume(context.Background(), "u1", 2024, 1)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if r.Period != "janeiro, 2024" {
		t.Errorf("Period = %q", r.Period)
	}
	if r.TotalCents != 6000 || r.TotalFormatted != "R$ 60,00" {
		t.Errorf("total = %d %q", r.TotalCents, r.TotalFormatted)
	}
	if len(r.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %+v", r.Categories)
	}
	if r.Categories[0].Key != "food" || r.Categories[0].Percent != "67%" {
		t.Errorf("first category = %+v", r.Categories[0])
	}
	if r.Categories[1].Key != "leisure" || r.Categories[1].Percent != "33%" {
		t.Errorf("second category = %+v", r.Categories[1])
	}
	if r.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", r.Skipped)
	}
}

func TestSummaryService_ResumeOtherMonthEmpty(t *testing.T) {
	svc := NewSummaryService(&fakeLoader{txs: sampleTxs()}, core.DefaultAggregationConfig())

	r, err := svc.Resume(context.Background(), "u1", 2024, 2)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if len(r.Categories) != 0 || r.TotalCents != 0 {
		t.Errorf("expected empty resume, got %+v", r)
	}
}
