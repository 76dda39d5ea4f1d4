package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// MaxBalance is the ceiling for any single Money value, and therefore for
// any wallet balance.
var MaxBalance = decimal.RequireFromString("9999999999.99")

// Money is an immutable non-negative amount in a single currency, kept at two
// decimal places. Arithmetic returns new values.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney validates amount and wraps it. Amounts with more than two decimal
// places are rejected rather than silently rounded.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency.IsZero() {
		return Money{}, fmt.Errorf("%w: currency is required", ErrInvalidCurrencyCode)
	}
	if amount.Sign() < 0 {
		return Money{}, fmt.Errorf("%w: amount cannot be negative", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(moneyScale)) {
		return Money{}, fmt.Errorf("%w: amount %s has more than %d decimal places", ErrInvalidAmount, amount, moneyScale)
	}
	if amount.GreaterThan(MaxBalance) {
		return Money{}, fmt.Errorf("%w: amount %s exceeds the maximum allowed limit of %s", ErrLimitExceeded, amount, MaxBalance.StringFixed(moneyScale))
	}
	return Money{amount: amount.Round(moneyScale), currency: currency}, nil
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero.Round(moneyScale), currency: currency}
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.requireSameCurrency(other, "add"); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.requireSameCurrency(other, "subtract"); err != nil {
		return Money{}, err
	}
	if m.amount.LessThan(other.amount) {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", ErrInsufficientFunds, other, m)
	}
	return NewMoney(m.amount.Sub(other.amount), m.currency)
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.requireSameCurrency(other, "compare"); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

func (m Money) LessThan(other Money) (bool, error) {
	if err := m.requireSameCurrency(other, "compare"); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// String renders the amount with two decimals followed by the currency code.
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale) + " " + m.currency.Code()
}

func (m Money) requireSameCurrency(other Money, op string) error {
	if !m.currency.Equal(other.currency) {
		return fmt.Errorf("%w: cannot %s %s and %s", ErrCurrencyMismatch, op, m.currency, other.currency)
	}
	return nil
}
