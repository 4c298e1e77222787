// Package money provides a fixed-point currency amount with exactly two
// decimal places. Amounts are backed by shopspring/decimal so that summing
// many line subtotals never accumulates binary floating-point drift.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable currency amount, always quantized to 2 decimals.
// The zero value is 0.00 and ready to use.
type Money struct {
	d decimal.Decimal
}

// Zero is the 0.00 amount.
var Zero = Money{}

// FromString parses a decimal literal like "100.00" or "99.9" and quantizes
// it to 2 decimal places (half-up).
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Money{d: d.Round(2)}, nil
}

// MustFromString is FromString for literals known to be valid; panics otherwise.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromFloat converts a float64 amount, quantized to 2 decimal places.
// Intended for request decoding; domain arithmetic stays in Money.
func FromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f).Round(2)}
}

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// MulInt returns the amount multiplied by an integer quantity (line subtotal).
func (m Money) MulInt(qty int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Add returns the sum of two amounts (invoice total).
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Float64 returns the amount as a float64 for response encoding.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String renders the amount with exactly two decimals, e.g. "500.00".
func (m Money) String() string { return m.d.StringFixed(2) }

// Value implements driver.Valuer; amounts are stored as their fixed string form.
func (m Money) Value() (driver.Value, error) { return m.String(), nil }

// Scan implements sql.Scanner, accepting the forms the sqlite and postgres
// drivers hand back for NUMERIC columns.
func (m *Money) Scan(value any) error {
	if value == nil {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("money: scan %T: %w", value, err)
	}
	m.d = d.Round(2)
	return nil
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both a JSON number and a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.d = d.Round(2)
	return nil
}

// GormDataType tells GORM which column type to use for Money fields.
func (Money) GormDataType() string { return "decimal(10,2)" }
