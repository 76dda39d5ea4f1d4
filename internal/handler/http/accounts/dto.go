package accounts_http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"currencyexchange/internal/domain"
)

type CreateAccountRequest struct {
	FirstName         string           `json:"firstName" validate:"required,max=50"`
	LastName          string           `json:"lastName" validate:"required,max=50"`
	InitialBalancePLN *decimal.Decimal `json:"initialBalancePLN" validate:"required"`
}

type ExchangeRequest struct {
	FromCurrency string           `json:"fromCurrency" validate:"required"`
	ToCurrency   string           `json:"toCurrency" validate:"required"`
	Amount       *decimal.Decimal `json:"amount" validate:"required"`
}

type BalanceResponse struct {
	CurrencyCode string      `json:"currencyCode"`
	Balance      json.Number `json:"balance"`
}

type AccountResponse struct {
	AccountID string            `json:"accountId"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Balances  []BalanceResponse `json:"balances"`
}

type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func newAccountResponse(view *domain.AccountView) AccountResponse {
	resp := AccountResponse{
		AccountID: view.AccountID,
		FirstName: view.FirstName,
		LastName:  view.LastName,
		Balances:  make([]BalanceResponse, 0, len(view.Balances)),
	}
	for _, b := range view.Balances {
		resp.Balances = append(resp.Balances, BalanceResponse{
			CurrencyCode: b.CurrencyCode,
			Balance:      json.Number(b.Balance.StringFixed(2)),
		})
	}
	return resp
}
