package core

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
}

func sampleTransactions() []Transaction {
	return []Transaction{
		{ID: "1", Name: "Salary", Amount: "100", Type: Income, Category: "salary", Date: day(2024, 1, 5)},
		{ID: "2", Name: "Lunch", Amount: "40", Type: Expense, Category: "food", Date: day(2024, 1, 10)},
	}
}

func TestComputeHighlightsScenario(t *testing.T) {
	got := ComputeHighlights(sampleTransactions(), DefaultAggregationConfig())

	if got.Entries.Amount != "R$ 100,00" {
		t.Errorf("entries amount = %q", got.Entries.Amount)
	}
	if got.Expenses.Amount != "R$ 40,00" {
		t.Errorf("expenses amount = %q", got.Expenses.Amount)
	}
	if got.Net.Amount != "R$ 60,00" {
		t.Errorf("net amount = %q", got.Net.Amount)
	}
	if got.Entries.LastTransaction != "Última entrada dia 5 de janeiro" {
		t.Errorf("entries last = %q", got.Entries.LastTransaction)
	}
	if got.Expenses.LastTransaction != "Última saída dia 10 de janeiro" {
		t.Errorf("expenses last = %q", got.Expenses.LastTransaction)
	}
	if got.Net.LastTransaction != "01 a 10 de janeiro" {
		t.Errorf("net interval = %q", got.Net.LastTransaction)
	}
	if len(got.Skipped) != 0 {
		t.Errorf("unexpected skipped: %v", got.Skipped)
	}
}

func TestComputeHighlightsEmpty(t *testing.T) {
	got := ComputeHighlights(nil, DefaultAggregationConfig())

	if got.Entries.LastDate.Valid || got.Expenses.LastDate.Valid {
		t.Fatalf("expected sentinel last dates, got %+v / %+v", got.Entries.LastDate, got.Expenses.LastDate)
	}
	if got.Entries.LastTransaction != NoTransactionsMessage || got.Expenses.LastTransaction != NoTransactionsMessage {
		t.Errorf("expected no-transactions messages, got %q / %q", got.Entries.LastTransaction, got.Expenses.LastTransaction)
	}
	if got.Net.Total.Cents != 0 || got.Net.Amount != "R$ 0,00" {
		t.Errorf("net = %d %q", got.Net.Total.Cents, got.Net.Amount)
	}
	if got.Net.LastTransaction != "" {
		t.Errorf("expected empty interval, got %q", got.Net.LastTransaction)
	}
}

func TestComputeHighlightsNetIdentity(t *testing.T) {
	cases := [][]Transaction{
		sampleTransactions(),
		{{ID: "a", Amount: "10.10", Type: Expense, Date: day(2024, 2, 1)}},
		{{ID: "a", Amount: "0.01", Type: Income, Date: day(2024, 2, 1)}, {ID: "b", Amount: "99,99", Type: Income, Date: day(2024, 3, 1)}},
	}
	for i, txs := range cases {
		got := ComputeHighlights(txs, DefaultAggregationConfig())
		if got.Net.Total.Cents != got.Entries.Total.Cents-got.Expenses.Total.Cents {
			t.Fatalf("case %d: net %d != %d - %d", i, got.Net.Total.Cents, got.Entries.Total.Cents, got.Expenses.Total.Cents)
		}
	}
}

func TestComputeHighlightsLatestDateWins(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "1", Type: Expense, Date: day(2024, 3, 20)},
		{ID: "2", Amount: "1", Type: Expense, Date: day(2024, 2, 28)},
		{ID: "3", Amount: "1", Type: Expense, Date: day(2024, 3, 2)},
	}
	got := ComputeHighlights(txs, DefaultAggregationConfig())
	if !got.Expenses.LastDate.Time.Equal(day(2024, 3, 20)) {
		t.Fatalf("last expense = %v", got.Expenses.LastDate.Time)
	}
	if got.Entries.LastTransaction != NoTransactionsMessage {
		t.Fatalf("entries should be empty, got %q", got.Entries.LastTransaction)
	}
}

func TestComputeHighlightsSkipsMalformed(t *testing.T) {
	txs := append(sampleTransactions(),
		Transaction{ID: "bad", Amount: "abc", Type: Expense, Date: day(2024, 1, 11)},
		Transaction{ID: "odd", Amount: "5", Type: "transfer", Date: day(2024, 1, 11)},
	)
	got := ComputeHighlights(txs, DefaultAggregationConfig())

	if got.Expenses.Total.Cents != 4000 {
		t.Fatalf("malformed amount leaked into total: %d", got.Expenses.Total.Cents)
	}
	if len(got.Skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %v", got.Skipped)
	}
	if got.Skipped[0].ID != "bad" || !errors.Is(got.Skipped[0].Err, ErrMalformedAmount) {
		t.Errorf("unexpected first skip: %+v", got.Skipped[0])
	}
	if got.Skipped[1].ID != "odd" || !errors.Is(got.Skipped[1].Err, ErrInvalidType) {
		t.Errorf("unexpected second skip: %+v", got.Skipped[1])
	}
	// The malformed expense must not move the last expense date either.
	if got.Expenses.LastTransaction != "Última saída dia 10 de janeiro" {
		t.Errorf("expenses last = %q", got.Expenses.LastTransaction)
	}
}

func TestComputeHighlightsDoesNotMutateAndIsIdempotent(t *testing.T) {
	txs := sampleTransactions()
	before := append([]Transaction(nil), txs...)

	a := ComputeHighlights(txs, DefaultAggregationConfig())
	b := ComputeHighlights(txs, DefaultAggregationConfig())

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("not idempotent:\n%+v\n%+v", a, b)
	}
	if !reflect.DeepEqual(txs, before) {
		t.Fatalf("input mutated")
	}
}

func TestComputeHighlightsUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	txs := []Transaction{{ID: "1", Amount: "1", Type: Expense, Date: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)}}
	cfg := DefaultAggregationConfig()
	cfg.Location = loc

	got := ComputeHighlights(txs, cfg)
	if got.Expenses.LastTransaction != "Última saída dia 31 de janeiro" {
		t.Fatalf("expected local date, got %q", got.Expenses.LastTransaction)
	}
}

func TestComputeCategoryTotalsScenario(t *testing.T) {
	got := ComputeCategoryTotals(sampleTransactions(), 1, 2024, DefaultAggregationConfig())

	if len(got.Categories) != 1 {
		t.Fatalf("expected 1 category, got %+v", got.Categories)
	}
	c := got.Categories[0]
	if c.Key != "food" || c.Total.Cents != 4000 || c.Percent != "100%" {
		t.Fatalf("unexpected category total: %+v", c)
	}
	if c.TotalFormatted != "R$ 40,00" || c.Name != "Alimentação" {
		t.Fatalf("unexpected display fields: %+v", c)
	}
}

func TestComputeCategoryTotalsSameCategorySummed(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "25.50", Type: Expense, Category: "car", Date: day(2024, 5, 1)},
		{ID: "2", Amount: "74.50", Type: Expense, Category: "car", Date: day(2024, 5, 30)},
	}
	got := ComputeCategoryTotals(txs, 5, 2024, DefaultAggregationConfig())
	if len(got.Categories) != 1 || got.Categories[0].Total.Cents != 10000 || got.Categories[0].Percent != "100%" {
		t.Fatalf("unexpected: %+v", got.Categories)
	}
}

func TestComputeCategoryTotalsFiltersAndOrders(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "10", Type: Expense, Category: "leisure", Date: day(2024, 1, 3)},
		{ID: "2", Amount: "30", Type: Expense, Category: "purchases", Date: day(2024, 1, 4)},
		{ID: "3", Amount: "60", Type: Expense, Category: "food", Date: day(2024, 1, 5)},
		{ID: "4", Amount: "500", Type: Income, Category: "salary", Date: day(2024, 1, 5)},
		{ID: "5", Amount: "999", Type: Expense, Category: "food", Date: day(2024, 2, 1)},
		{ID: "6", Amount: "999", Type: Expense, Category: "food", Date: day(2023, 1, 1)},
	}
	got := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())

	var keys []string
	var pcts []string
	for _, c := range got.Categories {
		keys = append(keys, c.Key)
		pcts = append(pcts, c.Percent)
	}
	if !reflect.DeepEqual(keys, []string{"purchases", "food", "leisure"}) {
		t.Fatalf("expected catalog order, got %v", keys)
	}
	if !reflect.DeepEqual(pcts, []string{"30%", "60%", "10%"}) {
		t.Fatalf("unexpected percents %v", pcts)
	}
	if got.Total.Cents != 10000 {
		t.Fatalf("month total = %d", got.Total.Cents)
	}

	sorted := SortByTotal(got.Categories)
	if sorted[0].Key != "food" || got.Categories[0].Key != "purchases" {
		t.Fatalf("SortByTotal should sort a copy: %v / %v", sorted[0].Key, got.Categories[0].Key)
	}
}

func TestComputeCategoryTotalsPercentRounding(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "1", Type: Expense, Category: "food", Date: day(2024, 1, 1)},
		{ID: "2", Amount: "1", Type: Expense, Category: "car", Date: day(2024, 1, 1)},
		{ID: "3", Amount: "1", Type: Expense, Category: "leisure", Date: day(2024, 1, 1)},
	}
	got := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	var sum int64
	for _, c := range got.Categories {
		if c.Percent != "33%" {
			t.Errorf("%s: %s", c.Key, c.Percent)
		}
		sum += c.PercentValue
	}
	if sum < 99 || sum > 101 {
		t.Fatalf("percent sum out of tolerance: %d", sum)
	}
}

func TestComputeCategoryTotalsNeverEmitsNonPositive(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "0", Type: Expense, Category: "food", Date: day(2024, 1, 1)},
		{ID: "2", Amount: "0.00", Type: Expense, Category: "car", Date: day(2024, 1, 1)},
	}
	got := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	if len(got.Categories) != 0 {
		t.Fatalf("expected no categories for a zero month, got %+v", got.Categories)
	}

	got = ComputeCategoryTotals(nil, 1, 2024, DefaultAggregationConfig())
	if len(got.Categories) != 0 || got.Total.Cents != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}

func TestComputeCategoryTotalsUnknownCategory(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "50", Type: Expense, Category: "food", Date: day(2024, 1, 1)},
		{ID: "2", Amount: "50", Type: Expense, Category: "pets", Date: day(2024, 1, 1)},
	}

	got := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	if len(got.Categories) != 1 || got.Categories[0].Percent != "50%" {
		t.Fatalf("unknown key should count toward the total only: %+v", got.Categories)
	}

	cfg := DefaultAggregationConfig()
	cfg.IncludeUncategorized = true
	got = ComputeCategoryTotals(txs, 1, 2024, cfg)
	if len(got.Categories) != 2 || got.Categories[1].Key != Uncategorized.Key || got.Categories[1].Percent != "50%" {
		t.Fatalf("expected trailing uncategorized bucket: %+v", got.Categories)
	}
}

func TestComputeCategoryTotalsSkipsMalformed(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: "40", Type: Expense, Category: "food", Date: day(2024, 1, 1)},
		{ID: "2", Amount: "forty", Type: Expense, Category: "food", Date: day(2024, 1, 1)},
	}
	got := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	if got.Total.Cents != 4000 || len(got.Skipped) != 1 || got.Skipped[0].ID != "2" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestComputeCategoryTotalsIdempotent(t *testing.T) {
	txs := sampleTransactions()
	a := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	b := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("not idempotent")
	}
}

func TestAggregationWithLargestAmounts(t *testing.T) {
	largest := MaxAmount.String()
	var txs []Transaction
	for i := 0; i < 3; i++ {
		txs = append(txs, Transaction{ID: string(rune('a' + i)), Name: "Imóvel", Amount: AmountText(largest), Type: Expense, Category: "purchases", Date: day(2024, 1, 10+i)})
	}
	for _, tx := range txs {
		if err := tx.Validate(DefaultCatalog()); err != nil {
			t.Fatalf("largest amount should validate: %v", err)
		}
	}

	h := ComputeHighlights(txs, DefaultAggregationConfig())
	if h.Expenses.Total.Cents != 300_000_000_000_000 {
		t.Errorf("expense total = %d", h.Expenses.Total.Cents)
	}
	if h.Expenses.Amount != "R$ 3.000.000.000.000,00" {
		t.Errorf("expense amount = %q", h.Expenses.Amount)
	}
	if h.Net.Amount != "-R$ 3.000.000.000.000,00" {
		t.Errorf("net amount = %q", h.Net.Amount)
	}

	b := ComputeCategoryTotals(txs, 1, 2024, DefaultAggregationConfig())
	if len(b.Categories) != 1 || b.Categories[0].PercentValue != 100 {
		t.Fatalf("breakdown = %+v", b.Categories)
	}
	if b.Categories[0].TotalFormatted != "R$ 3.000.000.000.000,00" {
		t.Errorf("category total = %q", b.Categories[0].TotalFormatted)
	}
}

func TestAggregationTotalsNeverWrap(t *testing.T) {
	// Records persisted before the amount cap still sum without wrapping.
	big := Money{Cents: math.MaxInt64 / 2}
	total := Money{}
	for i := 0; i < 3; i++ {
		total = total.Add(big)
	}
	if total.Cents != math.MaxInt64 {
		t.Fatalf("total = %d, want saturation at MaxInt64", total.Cents)
	}
}
