package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(t *testing.T, initial string) *Account {
	t.Helper()
	account, err := NewAccountFactory().Create("Jan", "Kowalski", dec(initial))
	require.NoError(t, err)
	return account
}

func rate(t *testing.T, from, to Currency, value string) ExchangeRate {
	t.Helper()
	r, err := NewExchangeRate(from, to, dec(value))
	require.NoError(t, err)
	return r
}

func balanceMap(a *Account) map[string]string {
	out := map[string]string{}
	for _, w := range a.Wallets() {
		out[w.Currency().Code()] = w.Balance().Amount().StringFixed(2)
	}
	return out
}

func TestWallet_WithdrawDepositRoundTrip(t *testing.T) {
	w := newWallet(money(t, "250.40", PLN))
	amount := money(t, "100.15", PLN)

	require.NoError(t, w.withdraw(amount))
	assert.Equal(t, "150.25 PLN", w.Balance().String())
	require.NoError(t, w.deposit(amount))
	assert.Equal(t, "250.40 PLN", w.Balance().String())
}

func TestWallet_Rejections(t *testing.T) {
	w := newWallet(money(t, "10", PLN))

	assert.ErrorIs(t, w.withdraw(money(t, "10.01", PLN)), ErrInsufficientFunds)
	assert.ErrorIs(t, w.withdraw(money(t, "1", usd)), ErrCurrencyMismatch)
	assert.ErrorIs(t, w.deposit(money(t, "1", usd)), ErrCurrencyMismatch)
	assert.ErrorIs(t, w.deposit(money(t, "9999999999.99", PLN)), ErrLimitExceeded)
	assert.Equal(t, "10.00 PLN", w.Balance().String())
}

func TestAccountFactory_Create(t *testing.T) {
	account := newAccount(t, "1000")

	_, err := uuid.Parse(account.ID().String())
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Version())
	assert.Equal(t, "Jan", account.Name().FirstName())
	assert.Equal(t, map[string]string{"PLN": "1000.00"}, balanceMap(account))
	for _, w := range account.Wallets() {
		assert.Equal(t, account.ID(), w.AccountID())
	}
}

func TestAccountFactory_Rejections(t *testing.T) {
	f := NewAccountFactory()
	tests := []struct {
		name        string
		first, last string
		balance     string
		wantErr     error
	}{
		{"zero balance", "Jan", "Kowalski", "0", ErrInvalidAccountData},
		{"negative balance", "Jan", "Kowalski", "-1", ErrInvalidAccountData},
		{"balance above limit", "Jan", "Kowalski", "10000000000", ErrLimitExceeded},
		{"sub-cent balance", "Jan", "Kowalski", "1.001", ErrInvalidAccountData},
		{"blank first name", "", "Kowalski", "1", ErrInvalidAccountData},
		{"blank last name", "Jan", " \t", "1", ErrInvalidAccountData},
		{"first name too long", strings.Repeat("a", 51), "Kowalski", "1", ErrInvalidAccountData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Create(tt.first, tt.last, dec(tt.balance))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.Create(strings.Repeat("ż", 50), "Kowalski", dec("1"))
	assert.NoError(t, err, "50 multi-byte characters are within the limit")
}

func TestAccount_ExchangeRoundTrip(t *testing.T) {
	account := newAccount(t, "1000.00")

	require.NoError(t, account.Exchange(money(t, "400.00", PLN), rate(t, PLN, usd, "0.25")))
	assert.Equal(t, map[string]string{"PLN": "600.00", "USD": "100.00"}, balanceMap(account))

	require.NoError(t, account.Exchange(money(t, "100.00", usd), rate(t, usd, PLN, "4.00")))
	assert.Equal(t, map[string]string{"PLN": "1000.00", "USD": "0.00"}, balanceMap(account))
}

func TestAccount_ExchangeReusesTargetWallet(t *testing.T) {
	account := newAccount(t, "1000")

	require.NoError(t, account.Exchange(money(t, "200", PLN), rate(t, PLN, usd, "0.25")))
	require.NoError(t, account.Exchange(money(t, "100", PLN), rate(t, PLN, usd, "0.25")))

	assert.Len(t, account.Wallets(), 2)
	usdBalance, ok := account.Balance(usd)
	require.True(t, ok)
	assert.Equal(t, "75.00 USD", usdBalance.String())
}

func TestAccount_ExchangeFailuresLeaveAccountUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		amount  func(t *testing.T) Money
		rate    func(t *testing.T) ExchangeRate
		wantErr error
	}{
		{
			name:    "insufficient funds",
			amount:  func(t *testing.T) Money { return money(t, "500.01", PLN) },
			rate:    func(t *testing.T) ExchangeRate { return rate(t, PLN, usd, "0.25") },
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "no source wallet",
			amount:  func(t *testing.T) Money { return money(t, "1", eur) },
			rate:    func(t *testing.T) ExchangeRate { return rate(t, eur, usd, "1.07") },
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "rate from another currency",
			amount:  func(t *testing.T) Money { return money(t, "1", PLN) },
			rate:    func(t *testing.T) ExchangeRate { return rate(t, eur, usd, "1.07") },
			wantErr: ErrCurrencyMismatch,
		},
		{
			name:    "deposit above limit",
			amount:  func(t *testing.T) Money { return money(t, "50", usd) },
			rate:    func(t *testing.T) ExchangeRate { return rate(t, usd, PLN, "199999999.99") },
			wantErr: ErrLimitExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := newAccount(t, "500")
			require.NoError(t, account.Exchange(money(t, "400", PLN), rate(t, PLN, usd, "0.25")))
			before := balanceMap(account)

			err := account.Exchange(tt.amount(t), tt.rate(t))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, balanceMap(account))
		})
	}
}

func TestAccount_ExchangeLimitOnDepositRestoresWithdrawal(t *testing.T) {
	account := newAccount(t, "9999999999.99")
	require.NoError(t, account.Exchange(money(t, "100", PLN), rate(t, PLN, usd, "1")))

	err := account.Exchange(money(t, "100", usd), rate(t, usd, PLN, "2"))

	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, map[string]string{"PLN": "9999999899.99", "USD": "100.00"}, balanceMap(account))
}

func TestAccount_ExchangeIntoNewWalletRollsBackWallet(t *testing.T) {
	account := newAccount(t, "100")

	err := account.Exchange(money(t, "100.01", PLN), rate(t, PLN, eur, "0.23"))

	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Len(t, account.Wallets(), 1)
	_, ok := account.Balance(eur)
	assert.False(t, ok)
}

func TestAccount_WalletsAreCopies(t *testing.T) {
	account := newAccount(t, "100")

	wallets := account.Wallets()
	wallets[0].balance = money(t, "1", PLN)

	assert.Equal(t, map[string]string{"PLN": "100.00"}, balanceMap(account))
}

func TestAccount_SnapshotRehydrate(t *testing.T) {
	account := newAccount(t, "1000")
	require.NoError(t, account.Exchange(money(t, "400", PLN), rate(t, PLN, usd, "0.25")))

	snapshot := account.Snapshot()
	require.Len(t, snapshot.Wallets, 2)
	assert.Equal(t, "PLN", snapshot.Wallets[0].CurrencyCode)
	assert.Equal(t, "USD", snapshot.Wallets[1].CurrencyCode)

	snapshot.Version = 7
	restored, err := RehydrateAccount(snapshot)
	require.NoError(t, err)
	assert.Equal(t, account.ID(), restored.ID())
	assert.Equal(t, int64(7), restored.Version())
	assert.Equal(t, balanceMap(account), balanceMap(restored))
	for i, w := range restored.Wallets() {
		assert.Equal(t, snapshot.Wallets[i].ID, w.ID())
		assert.Equal(t, account.ID(), w.AccountID())
	}
}

func TestRehydrateAccount_Rejections(t *testing.T) {
	valid := newAccount(t, "10").Snapshot()
	walletIn := func(code, balance string) WalletSnapshot {
		return WalletSnapshot{ID: uuid.New(), CurrencyCode: code, Balance: dec(balance)}
	}

	tests := []struct {
		name    string
		mutate  func(s *AccountSnapshot)
		wantErr error
	}{
		{"missing id", func(s *AccountSnapshot) { s.ID = "" }, ErrInvalidAccountData},
		{"blank name", func(s *AccountSnapshot) { s.FirstName = "" }, ErrInvalidAccountData},
		{"no wallets", func(s *AccountSnapshot) { s.Wallets = nil }, ErrInvalidAccountData},
		{"duplicate currency", func(s *AccountSnapshot) {
			s.Wallets = append(s.Wallets, walletIn("PLN", "1"))
		}, ErrDuplicateWallet},
		{"negative balance", func(s *AccountSnapshot) { s.Wallets = []WalletSnapshot{walletIn("PLN", "-1")} }, ErrInvalidAmount},
		{"bad currency", func(s *AccountSnapshot) { s.Wallets = []WalletSnapshot{walletIn("PL", "1")} }, ErrInvalidCurrencyCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.Wallets = append([]WalletSnapshot(nil), valid.Wallets...)
			tt.mutate(&s)

			_, err := RehydrateAccount(s)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProjectAccount(t *testing.T) {
	account := newAccount(t, "1000")
	require.NoError(t, account.Exchange(money(t, "100", PLN), rate(t, PLN, usd, "0.25")))
	require.NoError(t, account.Exchange(money(t, "100", PLN), rate(t, PLN, eur, "0.23")))

	view := ProjectAccount(account.Snapshot())

	assert.Equal(t, account.ID().String(), view.AccountID)
	assert.Equal(t, "Jan", view.FirstName)
	assert.Equal(t, "Kowalski", view.LastName)
	codes := make([]string, 0, len(view.Balances))
	for _, b := range view.Balances {
		codes = append(codes, b.CurrencyCode)
	}
	assert.Equal(t, []string{"EUR", "PLN", "USD"}, codes)

	eurBalance, ok := view.BalanceOf("EUR")
	require.True(t, ok)
	assert.Equal(t, "23.00", eurBalance.StringFixed(2))
	_, ok = view.BalanceOf("GBP")
	assert.False(t, ok)
}

func TestIsBusinessRejection(t *testing.T) {
	assert.True(t, IsBusinessRejection(ErrInsufficientFunds))
	assert.True(t, IsBusinessRejection(ErrAccountNotFound))
	assert.False(t, IsBusinessRejection(ErrCurrencyMismatch))
	assert.False(t, IsBusinessRejection(ErrRateUnavailable))
	assert.False(t, IsBusinessRejection(ErrConcurrentModification))
}
