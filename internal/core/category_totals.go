package core

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"gofinances/internal/format"
)

// ComputeCategoryTotals breaks down the expenses of year/month by category.
//
// Categories are visited in catalog order and only those with a strictly
// positive sum are emitted. Percent is the share of the month's expense total
// rounded half-up to an integer. When the month has no expenses the result is
// empty, so no percentage is ever computed against a zero total.
func ComputeCategoryTotals(txs []Transaction, month, year int, cfg AggregationConfig) CategoryBreakdown {
	loc := cfg.location()
	out := CategoryBreakdown{Year: year, Month: month}

	byKey := make(map[string]Money)
	var unknown Money
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		d := tx.Date.In(loc)
		if d.Year() != year || int(d.Month()) != month {
			continue
		}
		m, err := tx.Amount.Money()
		if err != nil {
			out.Skipped = append(out.Skipped, SkippedRecord{ID: tx.ID, Err: fmt.Errorf("%w: %q", err, tx.Amount)})
			continue
		}
		out.Total = out.Total.Add(m)
		if _, ok := cfg.Catalog.Lookup(tx.Category); ok {
			byKey[tx.Category] = byKey[tx.Category].Add(m)
		} else {
			unknown = unknown.Add(m)
		}
	}

	if out.Total.Cents <= 0 {
		return out
	}

	for _, cat := range cfg.Catalog {
		if sum := byKey[cat.Key]; sum.Cents > 0 {
			out.Categories = append(out.Categories, newCategoryTotal(cat, sum.Cents, out.Total.Cents))
			// A catalog with duplicated keys must not count the same spend twice.
			delete(byKey, cat.Key)
		}
	}
	if cfg.IncludeUncategorized && unknown.Cents > 0 {
		out.Categories = append(out.Categories, newCategoryTotal(Uncategorized, unknown.Cents, out.Total.Cents))
	}

	return out
}

func newCategoryTotal(cat Category, cents, totalCents int64) CategoryTotal {
	pct := decimal.New(cents, 0).Mul(decimal.New(100, 0)).Div(decimal.New(totalCents, 0)).Round(0).IntPart()
	return CategoryTotal{
		Key:            cat.Key,
		Name:           cat.Name,
		Color:          cat.Color,
		Total:          Money{Cents: cents},
		TotalFormatted: format.Currency(cents),
		PercentValue:   pct,
		Percent:        format.Percent(pct),
	}
}

// SortByTotal returns a copy of totals ordered by descending Total. Ties keep
// catalog order.
func SortByTotal(totals []CategoryTotal) []CategoryTotal {
	sorted := slices.Clone(totals)
	slices.SortStableFunc(sorted, func(a, b CategoryTotal) int {
		switch {
		case a.Total.Cents > b.Total.Cents:
			return -1
		case a.Total.Cents < b.Total.Cents:
			return 1
		}
		return 0
	})
	return sorted
}
