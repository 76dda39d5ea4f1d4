package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountFactory opens new accounts with a single seeded wallet.
type AccountFactory struct {
	seedCurrency Currency
	newID        func() AccountID
}

func NewAccountFactory() *AccountFactory {
	return &AccountFactory{seedCurrency: PLN, newID: NewAccountID}
}

// Create validates the owner's name and the opening balance and returns an
// unsaved Account holding one wallet in the seed currency.
func (f *AccountFactory) Create(firstName, lastName string, initialBalance decimal.Decimal) (*Account, error) {
	name, err := NewPersonName(firstName, lastName)
	if err != nil {
		return nil, err
	}
	if !initialBalance.IsPositive() {
		return nil, fmt.Errorf("%w: initial balance must be greater than zero", ErrInvalidAccountData)
	}
	if !initialBalance.Equal(initialBalance.Round(2)) {
		return nil, fmt.Errorf("%w: initial balance %s has more than 2 decimal places", ErrInvalidAccountData, initialBalance)
	}
	opening, err := NewMoney(initialBalance, f.seedCurrency)
	if err != nil {
		return nil, fmt.Errorf("initial balance: %w", err)
	}

	account := &Account{id: f.newID(), name: name}
	if err := account.addWallet(newWallet(opening)); err != nil {
		return nil, err
	}
	return account, nil
}
