// Package rates looks up currency exchange rates from an external source.
package rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=provider.go -destination=../mocks/rates/mock_provider.go -package=mock_rates

var ErrRateNotFound = errors.New("exchange rate not found")

// Provider returns how many units of to one unit of from buys.
type Provider interface {
	ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}
