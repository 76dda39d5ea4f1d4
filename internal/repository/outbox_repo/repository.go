package outbox_repo

import (
	"context"

	"currencyexchange/internal/domain"
)

type OutboxRepository interface {
	CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.OutboxMessage) error
	// GetPendingMessagesTx returns up to limit pending messages, oldest first.
	// Inside a transaction the rows stay locked until it ends.
	GetPendingMessagesTx(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error)
	// UpdateMessageStatusTx fails with domain.ErrOutboxMessageNotPending
	// unless the message is still pending.
	UpdateMessageStatusTx(ctx context.Context, querier domain.Querier, id string, status domain.OutboxMessageStatus) error
}
