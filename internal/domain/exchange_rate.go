package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExchangeRate converts Money from one currency into another.
type ExchangeRate struct {
	from Currency
	to   Currency
	rate decimal.Decimal
}

func NewExchangeRate(from, to Currency, rate decimal.Decimal) (ExchangeRate, error) {
	if from.IsZero() || to.IsZero() {
		return ExchangeRate{}, fmt.Errorf("%w: both currencies are required", ErrInvalidCurrencyCode)
	}
	if !rate.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("%w: got %s for %s/%s", ErrInvalidRate, rate, from, to)
	}
	return ExchangeRate{from: from, to: to, rate: rate}, nil
}

func (r ExchangeRate) From() Currency        { return r.from }
func (r ExchangeRate) To() Currency          { return r.to }
func (r ExchangeRate) Rate() decimal.Decimal { return r.rate }

// Convert multiplies money by the rate and rounds half-up to two decimals.
// The result is re-validated as Money, so a conversion above MaxBalance fails
// with ErrLimitExceeded.
func (r ExchangeRate) Convert(money Money) (Money, error) {
	if !money.Currency().Equal(r.from) {
		return Money{}, fmt.Errorf("%w: rate converts from %s but money is in %s", ErrCurrencyMismatch, r.from, money.Currency())
	}
	return NewMoney(money.Amount().Mul(r.rate).Round(moneyScale), r.to)
}
