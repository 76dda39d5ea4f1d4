package account_query_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"currencyexchange/internal/domain"
)

type accountQueryRepository struct{}

func NewAccountQueryRepository() *accountQueryRepository {
	return &accountQueryRepository{}
}

// GetByIDTx flattens an account and its wallets into a view with one query.
func (r *accountQueryRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id domain.AccountID) (*domain.AccountView, error) {
	query := `
		SELECT a.id, a.first_name, a.last_name, w.currency_code, w.balance
		FROM accounts a
		LEFT JOIN account_wallets w ON w.account_id = a.id
		WHERE a.id = $1
		ORDER BY w.currency_code
	`
	rows, err := querier.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query account view %s: %w", id, err)
	}
	defer rows.Close()

	var view *domain.AccountView
	for rows.Next() {
		var (
			accountID, firstName, lastName string
			currencyCode                   sql.NullString
			balance                        decimal.NullDecimal
		)
		if err := rows.Scan(&accountID, &firstName, &lastName, &currencyCode, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan account view %s: %w", id, err)
		}
		if view == nil {
			view = &domain.AccountView{
				AccountID: accountID,
				FirstName: firstName,
				LastName:  lastName,
				Balances:  []domain.WalletView{},
			}
		}
		if currencyCode.Valid && balance.Valid {
			view.Balances = append(view.Balances, domain.WalletView{
				CurrencyCode: currencyCode.String,
				Balance:      balance.Decimal,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account view %s: %w", id, err)
	}
	if view == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return view, nil
}
