package account_query_repo

import (
	"context"

	"currencyexchange/internal/domain"
)

// AccountQueryRepository serves the read projection. It reads the same store
// the write side commits to, so a read after a committed write sees it.
type AccountQueryRepository interface {
	GetByIDTx(ctx context.Context, querier domain.Querier, id domain.AccountID) (*domain.AccountView, error)
}
