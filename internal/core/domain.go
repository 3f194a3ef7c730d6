package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// AmountText is the amount exactly as it was persisted. Older records
	// carry a JSON number, newer ones a string; both decode into text.
	AmountText string

	Transaction struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Amount   AmountText      `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
		Date     time.Time       `json:"date"`
	}
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooShort    = errors.New("name too short (min 3 characters)")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrEmptyUserID     = errors.New("empty user id")
)

// Valid reports whether t is one of the two defined variants.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType accepts the canonical names plus the legacy
// positive/negative spelling.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "positive", "up":
		return Income, nil
	case "expense", "negative", "down":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := ParseTransactionType(raw); err == nil {
		*t = parsed
		return nil
	}
	// Keep unknown values so aggregation can report them instead of failing the whole list.
	*t = TransactionType(raw)
	return nil
}

func (a *AmountText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountText(s)
		return nil
	}
	if string(data) == "null" {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = AmountText(n.String())
	return nil
}

// Money parses the amount text. See ParseAmount.
func (a AmountText) Money() (Money, error) {
	return ParseAmount(string(a))
}

// Validate is applied at registration time. Aggregation never calls it:
// records already persisted are read back as they are.
func (t Transaction) Validate(catalog Catalog) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrEmptyName
	}
	n := utf8.RuneCountInString(name)
	if n < 3 {
		return ErrNameTooShort
	}
	if n > 200 {
		return ErrNameTooLong
	}
	m, err := t.Amount.Money()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if _, ok := catalog.Lookup(t.Category); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, t.Category)
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
