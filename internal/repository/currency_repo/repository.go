package currency_repo

import (
	"context"

	"currencyexchange/internal/domain"
)

type CurrencyRepository interface {
	ExistsTx(ctx context.Context, querier domain.Querier, code string) (bool, error)
	ListTx(ctx context.Context, querier domain.Querier) ([]string, error)
}
