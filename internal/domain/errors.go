package domain

import "errors"

var (
	ErrInvalidAccountData      = errors.New("invalid account data")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountAlreadyExists    = errors.New("account already exists")
	ErrUnsupportedCurrency     = errors.New("unsupported currency")
	ErrSameCurrency            = errors.New("source and target currency cannot be the same")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrLimitExceeded           = errors.New("wallet balance limit exceeded")
	ErrCurrencyMismatch        = errors.New("currency mismatch")
	ErrRateUnavailable         = errors.New("exchange rate unavailable")
	ErrInvalidCurrencyCode     = errors.New("invalid currency code")
	ErrInvalidRate             = errors.New("exchange rate must be positive")
	ErrDuplicateWallet         = errors.New("account already holds a wallet in this currency")
	ErrConcurrentModification  = errors.New("account was modified concurrently")
	ErrMessageAlreadyProcessed = errors.New("message already processed")
	ErrOutboxMessageNotPending = errors.New("outbox message is not pending")
)

// IsBusinessRejection reports whether err is a domain rule violation that a
// caller can fix by changing its input, as opposed to an infrastructure or
// programming failure.
func IsBusinessRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidAccountData,
		ErrInvalidAmount,
		ErrAccountNotFound,
		ErrUnsupportedCurrency,
		ErrSameCurrency,
		ErrInsufficientFunds,
		ErrLimitExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
