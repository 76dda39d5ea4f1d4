package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	FirstName      string
	LastName       string
	InitialBalance decimal.Decimal
}

type ExchangeRequest struct {
	FromCurrency string
	ToCurrency   string
	Amount       decimal.Decimal
}

// Options tunes the exchange path. Zero values fall back to defaults.
type Options struct {
	// RateTimeout bounds the call to the rate provider.
	RateTimeout time.Duration
	// MaxAttempts is how many times an exchange is tried when it loses an
	// optimistic-lock race.
	MaxAttempts int
	// EventsTopic is where account events are published via the outbox.
	EventsTopic string
}

const (
	defaultRateTimeout = 5 * time.Second
	defaultMaxAttempts = 3
	defaultEventsTopic = "account_events"
)

func (o Options) withDefaults() Options {
	if o.RateTimeout <= 0 {
		o.RateTimeout = defaultRateTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.EventsTopic == "" {
		o.EventsTopic = defaultEventsTopic
	}
	return o
}
