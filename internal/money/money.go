// Package money provides the exact decimal amount type used for all
// balances and transaction values.
//
// Amounts are backed by arbitrary-precision decimals so that currency
// values never pass through binary floating point. Inputs are restricted
// to two fractional digits (minor units); arithmetic stays exact.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxScale is the number of fractional digits accepted on input.
// The ledger is single-currency with two minor-unit digits.
const maxScale = 2

// Amount is an exact decimal monetary value.
//
// The zero value is zero money and is ready to use. Amount is a value
// type: all operations return a new Amount and never mutate the receiver.
type Amount struct {
	value decimal.Decimal
}

// Parse converts a decimal string ("2500", "499.50") into an Amount.
// Returns an error for malformed input or more than two fractional digits.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Exponent() < -maxScale {
		return Amount{}, fmt.Errorf("parse amount %q: more than %d fractional digits", s, maxScale)
	}
	return Amount{value: d}, nil
}

// MustParse is Parse for compile-time constants in tests and seed data.
// Panics on malformed input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromMinorUnits builds an Amount from an integer count of minor units
// (e.g. 250000 -> 2500.00).
func FromMinorUnits(units int64) Amount {
	return Amount{value: decimal.New(units, -maxScale)}
}

// Zero is the zero amount.
func Zero() Amount { return Amount{} }

func (a Amount) Add(b Amount) Amount { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount         { return Amount{value: a.value.Neg()} }

func (a Amount) IsZero() bool     { return a.value.IsZero() }
func (a Amount) IsPositive() bool { return a.value.IsPositive() }
func (a Amount) IsNegative() bool { return a.value.IsNegative() }

func (a Amount) Equal(b Amount) bool       { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool    { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }

// String renders the amount with exactly two fractional digits ("2500.00").
// This is also the canonical wire and storage representation.
func (a Amount) String() string {
	return a.value.StringFixed(maxScale)
}

// MarshalJSON encodes the amount as a JSON string to keep the wire
// representation exact.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
