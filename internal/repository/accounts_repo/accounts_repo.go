package accounts_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"currencyexchange/internal/domain"
)

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id domain.AccountID) (*domain.Account, error) {
	return r.load(ctx, querier, id, false)
}

func (r *accountRepository) GetByIDForUpdateTx(ctx context.Context, querier domain.Querier, id domain.AccountID) (*domain.Account, error) {
	return r.load(ctx, querier, id, true)
}

func (r *accountRepository) load(ctx context.Context, querier domain.Querier, id domain.AccountID, forUpdate bool) (*domain.Account, error) {
	query := `
		SELECT id, first_name, last_name, version
		FROM accounts
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	snapshot := domain.AccountSnapshot{}
	var rawID string
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID,
		&snapshot.FirstName,
		&snapshot.LastName,
		&snapshot.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	snapshot.ID = domain.AccountID(rawID)

	walletsQuery := `
		SELECT id, currency_code, balance
		FROM account_wallets
		WHERE account_id = $1
		ORDER BY created_at, currency_code
	`
	rows, err := querier.QueryContext(ctx, walletsQuery, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets for account %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var w domain.WalletSnapshot
		if err := rows.Scan(&w.ID, &w.CurrencyCode, &w.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan wallet for account %s: %w", id, err)
		}
		snapshot.Wallets = append(snapshot.Wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets for account %s: %w", id, err)
	}

	return domain.RehydrateAccount(snapshot)
}

func (r *accountRepository) SaveTx(ctx context.Context, querier domain.Querier, account *domain.Account) (*domain.Account, error) {
	snapshot := account.Snapshot()
	now := time.Now()

	if snapshot.Version == 0 {
		query := `
			INSERT INTO accounts (id, first_name, last_name, version, created_at, updated_at)
			VALUES ($1, $2, $3, 1, $4, $4)
		`
		if _, err := querier.ExecContext(ctx, query, snapshot.ID.String(), snapshot.FirstName, snapshot.LastName, now); err != nil {
			if hasPQCode(err, pgerrcode.UniqueViolation) {
				return nil, fmt.Errorf("%w: %s", domain.ErrAccountAlreadyExists, snapshot.ID)
			}
			return nil, fmt.Errorf("failed to create account %s: %w", snapshot.ID, err)
		}
	} else {
		query := `
			UPDATE accounts
			SET version = version + 1, updated_at = $1
			WHERE id = $2 AND version = $3
		`
		res, err := querier.ExecContext(ctx, query, now, snapshot.ID.String(), snapshot.Version)
		if err != nil {
			if hasPQCode(err, pgerrcode.SerializationFailure) {
				return nil, fmt.Errorf("%w: %s", domain.ErrConcurrentModification, snapshot.ID)
			}
			return nil, fmt.Errorf("failed to update account %s: %w", snapshot.ID, err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s is no longer at version %d", domain.ErrConcurrentModification, snapshot.ID, snapshot.Version)
		}
	}

	walletQuery := `
		INSERT INTO account_wallets (id, account_id, currency_code, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`
	for _, w := range snapshot.Wallets {
		if _, err := querier.ExecContext(ctx, walletQuery, w.ID, snapshot.ID.String(), w.CurrencyCode, w.Balance, now); err != nil {
			if hasPQCode(err, pgerrcode.UniqueViolation) {
				return nil, fmt.Errorf("%w: %s in account %s", domain.ErrDuplicateWallet, w.CurrencyCode, snapshot.ID)
			}
			return nil, fmt.Errorf("failed to save %s wallet for account %s: %w", w.CurrencyCode, snapshot.ID, err)
		}
	}

	snapshot.Version++
	return domain.RehydrateAccount(snapshot)
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
