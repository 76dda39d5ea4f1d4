package repository

import (
	"context"

	"currencyexchange/internal/domain"
)

// TxManager runs units of work against a store. fn receives a Querier bound to
// the transaction; if fn returns an error every write it made is discarded.
type TxManager interface {
	Querier() domain.Querier
	WithinTx(ctx context.Context, fn func(ctx context.Context, q domain.Querier) error) error
}
