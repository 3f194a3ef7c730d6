package core

import (
	"fmt"
	"time"

	"gofinances/internal/format"
)

// ComputeHighlights sums income and expenses, finds the latest date of each
// and formats the three dashboard cards. The input slice is not modified.
//
// Records with a malformed amount or an unknown type contribute nothing and
// are reported in Skipped.
func ComputeHighlights(txs []Transaction, cfg AggregationConfig) HighlightSummary {
	loc := cfg.location()

	var (
		sum     HighlightSummary
		income  Money
		expense Money
		lastIn  LastDate
		lastOut LastDate
	)

	for _, tx := range txs {
		if !tx.Type.Valid() {
			sum.Skipped = append(sum.Skipped, SkippedRecord{ID: tx.ID, Err: fmt.Errorf("%w: %q", ErrInvalidType, tx.Type)})
			continue
		}
		m, err := tx.Amount.Money()
		if err != nil {
			sum.Skipped = append(sum.Skipped, SkippedRecord{ID: tx.ID, Err: fmt.Errorf("%w: %q", err, tx.Amount)})
			continue
		}
		switch tx.Type {
		case Income:
			income = income.Add(m)
			lastIn = latest(lastIn, tx.Date)
		case Expense:
			expense = expense.Add(m)
			lastOut = latest(lastOut, tx.Date)
		}
	}

	sum.Entries = Highlight{
		Total:           income,
		Amount:          format.Currency(income.Cents),
		LastDate:        lastIn,
		LastTransaction: describeLast(lastIn, lastEntryFormat, loc),
	}
	sum.Expenses = Highlight{
		Total:           expense,
		Amount:          format.Currency(expense.Cents),
		LastDate:        lastOut,
		LastTransaction: describeLast(lastOut, lastExpenseFormat, loc),
	}

	net := income.Sub(expense)
	sum.Net = Highlight{
		Total:    net,
		Amount:   format.Currency(net.Cents),
		LastDate: lastOut,
	}
	// The net card shows the statement period, which ends at the latest expense.
	if lastOut.Valid {
		sum.Net.LastTransaction = fmt.Sprintf(intervalFormat, format.DayMonth(lastOut.Time.In(loc)))
	}

	return sum
}

func latest(cur LastDate, t time.Time) LastDate {
	if !cur.Valid || t.After(cur.Time) {
		return LastDate{Time: t, Valid: true}
	}
	return cur
}

func describeLast(d LastDate, layout string, loc *time.Location) string {
	if !d.Valid {
		return NoTransactionsMessage
	}
	return fmt.Sprintf(layout, format.DayMonth(d.Time.In(loc)))
}
