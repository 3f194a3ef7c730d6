package core

import (
	"time"
)

// Messages shown in place of a date when a partition is empty.
const (
	NoTransactionsMessage = "Não há transações"
	lastEntryFormat       = "Última entrada dia %s"
	lastExpenseFormat     = "Última saída dia %s"
	intervalFormat        = "01 a %s"
)

// AggregationConfig carries everything an aggregation pass needs besides
// the transactions themselves.
type AggregationConfig struct {
	Catalog  Catalog
	Location *time.Location
	// IncludeUncategorized surfaces expenses with unknown category keys as a
	// trailing Uncategorized bucket instead of dropping them from the breakdown.
	IncludeUncategorized bool
}

// DefaultAggregationConfig uses the built-in catalog and UTC.
func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{Catalog: DefaultCatalog(), Location: time.UTC}
}

func (c AggregationConfig) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// LastDate is the most recent transaction date of a partition. Valid is
// false when the partition is empty.
type LastDate struct {
	Time  time.Time
	Valid bool
}

// SkippedRecord is a transaction left out of an aggregation pass.
type SkippedRecord struct {
	ID  string
	Err error
}

// Highlight is one dashboard card.
type Highlight struct {
	Total           Money
	Amount          string // formatted Total
	LastDate        LastDate
	LastTransaction string // formatted LastDate, or the interval for the net card
}

// HighlightSummary is the result of ComputeHighlights.
type HighlightSummary struct {
	Entries  Highlight
	Expenses Highlight
	Net      Highlight
	Skipped  []SkippedRecord
}

// CategoryTotal is the spend of one category in a month.
type CategoryTotal struct {
	Key            string
	Name           string
	Color          string
	Total          Money
	TotalFormatted string
	PercentValue   int64
	Percent        string
}

// CategoryBreakdown is the result of ComputeCategoryTotals.
type CategoryBreakdown struct {
	Year  int
	Month int // 1-12
	// Total is the sum of every expense of the month, including those whose
	// category is not in the catalog.
	Total      Money
	Categories []CategoryTotal
	Skipped    []SkippedRecord
}
