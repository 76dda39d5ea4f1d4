package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Wallet holds one currency's balance inside an Account. Its mutators are
// unexported: balances change only through the owning Account.
type Wallet struct {
	id        uuid.UUID
	accountID AccountID
	balance   Money
}

func newWallet(balance Money) *Wallet {
	return &Wallet{id: uuid.New(), balance: balance}
}

func (w *Wallet) ID() uuid.UUID        { return w.id }
func (w *Wallet) AccountID() AccountID { return w.accountID }
func (w *Wallet) Balance() Money       { return w.balance }
func (w *Wallet) Currency() Currency   { return w.balance.Currency() }

func (w *Wallet) hasCurrency(c Currency) bool {
	return w.balance.Currency().Equal(c)
}

func (w *Wallet) deposit(money Money) error {
	if !w.hasCurrency(money.Currency()) {
		return fmt.Errorf("%w: cannot deposit %s into %s wallet", ErrCurrencyMismatch, money.Currency(), w.Currency())
	}
	balance, err := w.balance.Add(money)
	if err != nil {
		return fmt.Errorf("deposit %s into %s wallet: %w", money, w.Currency(), err)
	}
	w.balance = balance
	return nil
}

func (w *Wallet) withdraw(money Money) error {
	if !w.hasCurrency(money.Currency()) {
		return fmt.Errorf("%w: cannot withdraw %s from %s wallet", ErrCurrencyMismatch, money.Currency(), w.Currency())
	}
	insufficient, err := w.balance.LessThan(money)
	if err != nil {
		return err
	}
	if insufficient {
		return fmt.Errorf("%w in %s wallet: available %s, requested %s", ErrInsufficientFunds, w.Currency(), w.balance, money)
	}
	balance, err := w.balance.Subtract(money)
	if err != nil {
		return fmt.Errorf("withdraw %s from %s wallet: %w", money, w.Currency(), err)
	}
	w.balance = balance
	return nil
}
