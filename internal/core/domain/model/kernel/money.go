package kernel

import (
	"fmt"

	"exportdocs/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places shown on documents.
const MoneyScale = 2

// MaxMoney bounds a single entered amount so that six pricing components
// still fit the stored numeric(14,2) subtotal.
var MaxMoney = decimal.New(1, 10)

// Money is a non-negative monetary amount. The zero value is a valid zero
// amount, which is what an unset pricing component means.
type Money struct {
	amount decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney wraps an entered amount. It must be non-negative, below MaxMoney
// and carry no more than MoneyScale decimal places.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() || amount.GreaterThanOrEqual(MaxMoney) {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), 0, MaxMoney.String())
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s has more than %d decimal places", amount.String(), MoneyScale))
	}
	return Money{amount: amount}, nil
}

// RestoreMoney rehydrates a computed amount, such as a total including VAT,
// without the limits applied to entered amounts.
func RestoreMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// MoneyFromString parses a decimal string such as "12.50".
// An empty string is treated as zero.
func MoneyFromString(s string) (Money, error) {
	if s == "" {
		return Zero(), nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%q is not a number: %w", s, err))
	}
	return NewMoney(amount)
}

// MoneyFromFloat converts a float amount. Prefer MoneyFromString for user input.
func MoneyFromFloat(f float64) (Money, error) {
	return NewMoney(decimal.NewFromFloat(f))
}

// MustMoney panics when s is not a valid amount. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal exposes the exact amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns the exact sum.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Mul scales the amount by a non-negative factor, e.g. a VAT rate.
func (m Money) Mul(factor decimal.Decimal) Money {
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	return Money{amount: m.amount.Mul(factor)}
}

// Round rounds half away from zero to MoneyScale places.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(MoneyScale)}
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal compares amounts numerically, so 1.5 equals 1.50.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String formats the amount with exactly MoneyScale places.
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}
