package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"currencyexchange/internal/domain"
)

// SQLTxManager runs units of work in database/sql transactions.
type SQLTxManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLTxManager(db *sql.DB, logger *zap.Logger) *SQLTxManager {
	return &SQLTxManager{db: db, logger: logger}
}

func (m *SQLTxManager) Querier() domain.Querier {
	return m.db
}

// WithinTx commits if fn returns nil and rolls back otherwise. A panic in fn
// rolls back and is re-raised.
func (m *SQLTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, q domain.Querier) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Recovered panic inside transaction, rolling back", zap.Any("panic", r))
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
			return fmt.Errorf("rollback failed after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
