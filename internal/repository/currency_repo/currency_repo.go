package currency_repo

import (
	"context"
	"fmt"
	"strings"

	"currencyexchange/internal/domain"
)

type currencyRepository struct{}

func NewCurrencyRepository() *currencyRepository {
	return &currencyRepository{}
}

func (r *currencyRepository) ExistsTx(ctx context.Context, querier domain.Querier, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM supported_currencies WHERE currency_code = $1)`
	var exists bool
	if err := querier.QueryRowContext(ctx, query, strings.ToUpper(code)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check supported currency %s: %w", code, err)
	}
	return exists, nil
}

func (r *currencyRepository) ListTx(ctx context.Context, querier domain.Querier) ([]string, error) {
	rows, err := querier.QueryContext(ctx, `SELECT currency_code FROM supported_currencies ORDER BY currency_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list supported currencies: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan supported currency: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating supported currencies: %w", err)
	}
	return codes, nil
}
