package domain

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (cents).
type Money int64

var errInvalidAmount = errors.New("invalid amount")

// ParseMoney reads a decimal string such as "4.50" or "4,5" into cents.
// Negative amounts and more than two decimals are rejected.
func ParseMoney(raw string) (Money, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0, errInvalidAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, errInvalidAmount
	}
	if d.IsNegative() || !d.Equal(d.Round(2)) {
		return 0, errInvalidAmount
	}
	return Money(d.Shift(2).IntPart()), nil
}

// MoneyFromFloat converts a JSON number price to cents, rounding half away from zero.
func MoneyFromFloat(value float64) (Money, error) {
	d := decimal.NewFromFloat(value)
	if d.IsNegative() {
		return 0, errInvalidAmount
	}
	return Money(d.Round(2).Shift(2).IntPart()), nil
}

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) Mul(quantity int) Money {
	return m * Money(quantity)
}

// MulChecked is Mul for non-negative operands; ok is false on overflow.
func (m Money) MulChecked(quantity int) (Money, bool) {
	if m < 0 || quantity < 0 {
		return 0, false
	}
	if quantity != 0 && m > Money(math.MaxInt64/int64(quantity)) {
		return 0, false
	}
	return m * Money(quantity), true
}

// AddChecked is Add for non-negative operands; ok is false on overflow.
func (m Money) AddChecked(other Money) (Money, bool) {
	if m < 0 || other < 0 || m > Money(math.MaxInt64)-other {
		return 0, false
	}
	return m + other, true
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount with two decimals, e.g. "13.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the amount followed by the currency code.
func (m Money) Format(currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return m.String()
	}
	return m.String() + " " + currency
}

func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}
