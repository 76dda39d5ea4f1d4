package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the aggregate root for a person's multi-currency balances. It
// owns its wallets, holds at most one wallet per currency, and is the only
// place where wallet balances change.
type Account struct {
	id      AccountID
	name    PersonName
	wallets []*Wallet
	version int64
}

func (a *Account) ID() AccountID    { return a.id }
func (a *Account) Name() PersonName { return a.name }

// Version is the persisted version the aggregate was loaded at. Zero means
// the account has never been saved.
func (a *Account) Version() int64 { return a.version }

// Wallets returns copies of the account's wallets in the order they were
// opened. Mutating the copies has no effect on the account.
func (a *Account) Wallets() []Wallet {
	out := make([]Wallet, 0, len(a.wallets))
	for _, w := range a.wallets {
		out = append(out, *w)
	}
	return out
}

// Balance returns the balance held in currency, if the account has such a
// wallet.
func (a *Account) Balance(currency Currency) (Money, bool) {
	w, ok := a.findWallet(currency)
	if !ok {
		return Money{}, false
	}
	return w.Balance(), true
}

// Exchange moves amountToExchange out of its currency's wallet and deposits
// the converted amount into the wallet for rate.To(), opening that wallet
// with a zero balance if needed. A source wallet is never created
// implicitly.
//
// The withdrawal is applied before the deposit. If any step fails the account
// is restored to the state it had before the call.
func (a *Account) Exchange(amountToExchange Money, rate ExchangeRate) (err error) {
	source, ok := a.findWallet(amountToExchange.Currency())
	if !ok {
		return fmt.Errorf("%w: no funds in currency %s, make a prior exchange or top up the account", ErrInsufficientFunds, amountToExchange.Currency())
	}

	amountToReceive, err := rate.Convert(amountToExchange)
	if err != nil {
		return fmt.Errorf("convert %s to %s: %w", amountToExchange, rate.To(), err)
	}

	saved := a.checkpoint()
	defer func() {
		if err != nil {
			a.restore(saved)
		}
	}()

	target, err := a.findOrOpenWallet(rate.To())
	if err != nil {
		return err
	}
	if err = source.withdraw(amountToExchange); err != nil {
		return err
	}
	if err = target.deposit(amountToReceive); err != nil {
		return err
	}
	return nil
}

func (a *Account) addWallet(w *Wallet) error {
	if _, exists := a.findWallet(w.Currency()); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWallet, w.Currency())
	}
	w.accountID = a.id
	a.wallets = append(a.wallets, w)
	return nil
}

func (a *Account) findWallet(currency Currency) (*Wallet, bool) {
	for _, w := range a.wallets {
		if w.hasCurrency(currency) {
			return w, true
		}
	}
	return nil, false
}

func (a *Account) findOrOpenWallet(currency Currency) (*Wallet, error) {
	if w, ok := a.findWallet(currency); ok {
		return w, nil
	}
	w := newWallet(ZeroMoney(currency))
	if err := a.addWallet(w); err != nil {
		return nil, err
	}
	return w, nil
}

type walletCheckpoint struct {
	wallets  []*Wallet
	balances []Money
}

func (a *Account) checkpoint() walletCheckpoint {
	cp := walletCheckpoint{
		wallets:  append([]*Wallet(nil), a.wallets...),
		balances: make([]Money, len(a.wallets)),
	}
	for i, w := range a.wallets {
		cp.balances[i] = w.balance
	}
	return cp
}

func (a *Account) restore(cp walletCheckpoint) {
	for i, w := range cp.wallets {
		w.balance = cp.balances[i]
	}
	a.wallets = cp.wallets
}

// AccountSnapshot is the flat persistent form of an Account.
type AccountSnapshot struct {
	ID        AccountID
	FirstName string
	LastName  string
	Version   int64
	Wallets   []WalletSnapshot
}

type WalletSnapshot struct {
	ID           uuid.UUID
	CurrencyCode string
	Balance      decimal.Decimal
}

func (a *Account) Snapshot() AccountSnapshot {
	s := AccountSnapshot{
		ID:        a.id,
		FirstName: a.name.FirstName(),
		LastName:  a.name.LastName(),
		Version:   a.version,
		Wallets:   make([]WalletSnapshot, 0, len(a.wallets)),
	}
	for _, w := range a.wallets {
		s.Wallets = append(s.Wallets, WalletSnapshot{
			ID:           w.id,
			CurrencyCode: w.Currency().Code(),
			Balance:      w.balance.Amount(),
		})
	}
	return s
}

// RehydrateAccount rebuilds a complete aggregate from storage, re-checking
// every invariant. A snapshot without wallets or with two wallets in the same
// currency is rejected.
func RehydrateAccount(s AccountSnapshot) (*Account, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidAccountData)
	}
	name, err := NewPersonName(s.FirstName, s.LastName)
	if err != nil {
		return nil, fmt.Errorf("rehydrate account %s: %w", s.ID, err)
	}
	if len(s.Wallets) == 0 {
		return nil, fmt.Errorf("%w: account %s has no wallets", ErrInvalidAccountData, s.ID)
	}

	account := &Account{id: s.ID, name: name, version: s.Version}
	for _, ws := range s.Wallets {
		currency, err := NewCurrency(ws.CurrencyCode)
		if err != nil {
			return nil, fmt.Errorf("rehydrate account %s: %w", s.ID, err)
		}
		balance, err := NewMoney(ws.Balance, currency)
		if err != nil {
			return nil, fmt.Errorf("rehydrate account %s wallet %s: %w", s.ID, currency, err)
		}
		if err := account.addWallet(&Wallet{id: ws.ID, balance: balance}); err != nil {
			return nil, fmt.Errorf("rehydrate account %s: %w", s.ID, err)
		}
	}
	return account, nil
}
