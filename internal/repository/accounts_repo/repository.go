package accounts_repo

import (
	"context"

	"currencyexchange/internal/domain"
)

// AccountRepository is the write side of the account store. Accounts are
// always loaded and saved whole.
type AccountRepository interface {
	GetByIDTx(ctx context.Context, querier domain.Querier, id domain.AccountID) (*domain.Account, error)
	// GetByIDForUpdateTx loads the account and locks it until the surrounding
	// transaction ends.
	GetByIDForUpdateTx(ctx context.Context, querier domain.Querier, id domain.AccountID) (*domain.Account, error)
	// SaveTx inserts a never-saved account or updates an existing one if its
	// stored version still equals account.Version(). It returns the account
	// as persisted, with the new version.
	SaveTx(ctx context.Context, querier domain.Querier, account *domain.Account) (*domain.Account, error)
}
