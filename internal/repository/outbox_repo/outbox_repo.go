package outbox_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"currencyexchange/internal/domain"
)

const outboxColumns = `id, aggregate_id, aggregate_type, message_type, topic, key, payload, status, created_at, sent_at`

type outboxRepository struct{}

func NewOutboxRepository() *outboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.OutboxMessage) error {
	query := `INSERT INTO outbox_messages (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL)`

	// payload is jsonb, so it goes in as text rather than bytea.
	if _, err := querier.ExecContext(ctx, query,
		msg.ID,
		msg.AggregateID,
		msg.AggregateType,
		msg.MessageType,
		msg.Topic,
		msg.Key,
		string(msg.Payload),
		msg.Status,
		msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to queue %s outbox message for %s %s: %w", msg.MessageType, msg.AggregateType, msg.AggregateID, err)
	}
	return nil
}

// GetPendingMessagesTx locks the oldest pending rows. Rows locked by another
// relay are skipped, and ties on created_at are broken by id so a batch is
// deterministic.
func (r *outboxRepository) GetPendingMessagesTx(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	query := `SELECT ` + outboxColumns + `
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, domain.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		msg, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending outbox messages: %w", err)
	}
	return messages, nil
}

// UpdateMessageStatusTx moves a pending message to its final status. A
// message that is no longer pending is left untouched and reported.
func (r *outboxRepository) UpdateMessageStatusTx(ctx context.Context, querier domain.Querier, id string, status domain.OutboxMessageStatus) error {
	query := `UPDATE outbox_messages
		SET status = $1, sent_at = $2
		WHERE id = $3 AND status = $4`

	var sentAt sql.NullTime
	if status == domain.OutboxStatusSent {
		sentAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	res, err := querier.ExecContext(ctx, query, status, sentAt, id, domain.OutboxStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message %s as %s: %w", id, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for outbox message %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOutboxMessageNotPending, id)
	}
	return nil
}

func scanOutboxMessage(rows *sql.Rows) (domain.OutboxMessage, error) {
	var (
		msg    domain.OutboxMessage
		sentAt sql.NullTime
	)
	if err := rows.Scan(
		&msg.ID,
		&msg.AggregateID,
		&msg.AggregateType,
		&msg.MessageType,
		&msg.Topic,
		&msg.Key,
		&msg.Payload,
		&msg.Status,
		&msg.CreatedAt,
		&sentAt,
	); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("failed to scan outbox message: %w", err)
	}
	if sentAt.Valid {
		msg.SentAt = &sentAt.Time
	}
	return msg, nil
}
