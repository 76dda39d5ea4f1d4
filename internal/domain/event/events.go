package event

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeAccountOpened     = "AccountOpened"
	TypeCurrencyExchanged = "CurrencyExchanged"
	TypeExchangeRejected  = "ExchangeRejected"
)

// AccountOpenedEvent is published after a new account is persisted.
type AccountOpenedEvent struct {
	EventID        string          `json:"event_id"`
	AccountID      string          `json:"account_id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Timestamp      time.Time       `json:"timestamp"`
}

// CurrencyExchangedEvent is published after an exchange commits.
type CurrencyExchangedEvent struct {
	EventID      string          `json:"event_id"`
	RequestID    string          `json:"request_id,omitempty"`
	AccountID    string          `json:"account_id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Debited      decimal.Decimal `json:"debited"`
	Credited     decimal.Decimal `json:"credited"`
	Rate         decimal.Decimal `json:"rate"`
	Version      int64           `json:"version"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ExchangeRequestedEvent is the command consumed from the exchange requests
// topic.
type ExchangeRequestedEvent struct {
	RequestID    string          `json:"request_id"`
	AccountID    string          `json:"account_id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

// ExchangeRejectedEvent reports a command that failed a business rule.
type ExchangeRejectedEvent struct {
	EventID   string    `json:"event_id"`
	RequestID string    `json:"request_id"`
	AccountID string    `json:"account_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
