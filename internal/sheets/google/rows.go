package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gofinances/internal/core"
)

// transactionRow renders the A:F columns: date, user, name, type, category, amount.
// Expenses are written as negative amounts so sheet sums give the balance.
func transactionRow(userID string, tx core.Transaction, catalog core.Catalog, loc *time.Location) ([]any, error) {
	m, err := tx.Amount.Money()
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if tx.Type == core.Expense {
		m = core.Money{}.Sub(m)
	}

	category := tx.Category
	if cat, ok := catalog.Lookup(tx.Category); ok {
		category = cat.Name
	}

	return []any{
		tx.Date.In(loc).Format("02/01/2006"),
		userID,
		tx.Name,
		typeLabel(tx.Type),
		category,
		sheetAmount(m),
	}, nil
}

func typeLabel(t core.TransactionType) string {
	switch t {
	case core.Income:
		return "Entrada"
	case core.Expense:
		return "Saída"
	default:
		return string(t)
	}
}

// sheetAmount renders cents with a comma decimal separator, e.g. "-12,90",
// matching what a pt-BR spreadsheet parses under USER_ENTERED.
func sheetAmount(m core.Money) string {
	return strings.Replace(m.String(), ".", ",", 1)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
