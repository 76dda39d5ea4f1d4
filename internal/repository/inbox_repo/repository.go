package inbox_repo

import (
	"context"

	"currencyexchange/internal/domain"
)

type InboxRepository interface {
	// CreateMessageTx fails with domain.ErrMessageAlreadyProcessed if a
	// message with the same id was recorded before.
	CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.InboxMessage) error
	ExistsTx(ctx context.Context, querier domain.Querier, id string) (bool, error)
}
