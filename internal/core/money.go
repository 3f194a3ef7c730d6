// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from the text
// stored with each transaction and converting them to cents.
package core

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// MaxAmount is the largest single amount accepted, one trillion reais.
var MaxAmount = decimal.New(1, 12)

// groupedInt matches an integer part with "." thousands separators.
var groupedInt = regexp.MustCompile(`^[1-9][0-9]{0,2}(\.[0-9]{3})+$`)

// ParseAmount converts a stored amount to cents with half-up rounding.
//
// Without a comma the dot is the decimal separator, as in stored amounts
// (12.34, 1500.50). With a comma, the comma is the decimal separator and
// dots may group thousands (1.234,56). Zero is accepted, negative,
// non-numeric or larger than MaxAmount is not and yields ErrMalformedAmount.
//
// Examples:
//
//	ParseAmount("12.34")    -> 1234
//	ParseAmount("12,345")   -> 1235 (rounds up)
//	ParseAmount("1.234,56") -> 123456
//	ParseAmount("1.234")    -> 123
//	ParseAmount("abc")      -> ErrMalformedAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrMalformedAmount
	}
	if intPart, frac, ok := strings.Cut(s, ","); ok {
		if strings.Contains(intPart, ".") {
			if !groupedInt.MatchString(intPart) {
				return Money{}, ErrMalformedAmount
			}
			intPart = strings.ReplaceAll(intPart, ".", "")
		}
		s = intPart + "." + frac
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrMalformedAmount
	}
	if d.IsNegative() || d.GreaterThan(MaxAmount) {
		return Money{}, ErrMalformedAmount
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// Validate requires a strictly positive amount, as registration does.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + o, saturating at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	switch {
	case o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && m.Cents < math.MinInt64-o.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o, saturating like Add.
func (m Money) Sub(o Money) Money {
	switch {
	case o.Cents > 0 && m.Cents < math.MinInt64+o.Cents:
		return Money{Cents: math.MinInt64}
	case o.Cents < 0 && m.Cents > math.MaxInt64+o.Cents:
		return Money{Cents: math.MaxInt64}
	}
	return Money{Cents: m.Cents - o.Cents}
}

// Reais returns the value as a float64 for chart payloads.
// Use cents for calculations.
func (m Money) Reais() float64 {
	return decimal.New(m.Cents, -2).InexactFloat64()
}

// String renders the plain decimal value, e.g. "40.5".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).String()
}
