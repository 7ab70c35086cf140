// Package money wraps go-money integer-minor-unit arithmetic with
// shopspring/decimal conversions for the currency cells of termsheet rows.
// Termsheet amounts arrive as human-formatted strings and leave as display
// strings; this package owns both directions.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes seen on termsheets.
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	AUD = "AUD"
	CHF = "CHF"
	JPY = "JPY"
)

// Money is a monetary value with currency, stored in minor units.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units and currency code.
func New(minorUnits int64, currencyCode string) *Money {
	return &Money{m: money.New(minorUnits, resolveCode(currencyCode))}
}

// NewFromDecimal converts a major-unit decimal amount to Money, rounding to
// the currency's fraction.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	code := resolveCode(currencyCode)
	currency := money.GetCurrency(code)
	minor := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(minor, code)
}

// NewFromString parses a human-formatted amount ("AUD 1,250,000.00",
// "$100,000.00") into Money.
func NewFromString(amount, currencyCode string) (*Money, error) {
	s := strings.TrimSpace(amount)
	for _, noise := range []string{"A$", "$", "€", "£", USD, EUR, GBP, AUD, CHF} {
		s = strings.ReplaceAll(s, noise, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewFromDecimal(d, currencyCode), nil
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsPositive reports whether the amount is greater than zero.
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// Display renders the grouped, dollar-prefixed form, e.g. "$1,234.56".
// Termsheet cells use the plain "$" grapheme for every currency, so the
// currency-specific prefix ("A$", "€") is deliberately not used; the
// currency still controls the fraction digits.
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	f := money.NewFormatter(m.m.Currency().Fraction, ".", ",", "$", "$1")
	return f.Format(m.m.Amount())
}

// ToDecimal converts back to a major-unit decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.m.Amount()).
		Div(decimal.New(1, int32(m.m.Currency().Fraction)))
}

// DisplayDecimal formats a major-unit decimal amount for a schema cell.
func DisplayDecimal(amount decimal.Decimal, currencyCode string) string {
	return NewFromDecimal(amount, currencyCode).Display()
}

func resolveCode(code string) string {
	if money.GetCurrency(code) == nil {
		return USD
	}
	return code
}
