package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountView is the read-side projection of an account.
type AccountView struct {
	AccountID string       `json:"accountId"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Balances  []WalletView `json:"balances"`
}

type WalletView struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// ProjectAccount derives the read view from an account snapshot. Balances are
// ordered by currency code so every store produces the same shape.
func ProjectAccount(s AccountSnapshot) AccountView {
	view := AccountView{
		AccountID: s.ID.String(),
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Balances:  make([]WalletView, 0, len(s.Wallets)),
	}
	for _, w := range s.Wallets {
		view.Balances = append(view.Balances, WalletView{CurrencyCode: w.CurrencyCode, Balance: w.Balance})
	}
	sort.Slice(view.Balances, func(i, j int) bool {
		return view.Balances[i].CurrencyCode < view.Balances[j].CurrencyCode
	})
	return view
}

// BalanceOf returns the balance for code, if present.
func (v AccountView) BalanceOf(code string) (decimal.Decimal, bool) {
	for _, b := range v.Balances {
		if b.CurrencyCode == code {
			return b.Balance, true
		}
	}
	return decimal.Decimal{}, false
}
