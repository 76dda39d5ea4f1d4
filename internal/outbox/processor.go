package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"currencyexchange/internal/domain"
	kafka_infra "currencyexchange/internal/infrastructure/kafka"
	"currencyexchange/internal/repository"
	"currencyexchange/internal/repository/outbox_repo"
)

// Processor relays pending outbox messages to Kafka, oldest first. Delivery
// is at least once: a message is marked SENT only after the broker
// acknowledged it.
type Processor struct {
	txManager    repository.TxManager
	outboxRepo   outbox_repo.OutboxRepository
	producer     kafka_infra.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	batchSize    int
	logger       *zap.Logger
}

func NewProcessor(
	txManager repository.TxManager,
	outboxRepo outbox_repo.OutboxRepository,
	producer kafka_infra.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	batchSize int,
	logger *zap.Logger,
) *Processor {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Processor{
		txManager:    txManager,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start polls until ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor...", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox processor stopped.")
			return
		case <-ticker.C:
			if _, err := p.processOutboxMessages(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("Failed to process outbox messages", zap.Error(err))
			}
		}
	}
}

// processOutboxMessages relays one batch and returns how many messages were
// sent. The batch stops at the first message Kafka rejects so that later
// events for the same account are not published ahead of it.
func (p *Processor) processOutboxMessages(ctx context.Context) (int, error) {
	sent := 0
	err := p.txManager.WithinTx(ctx, func(ctx context.Context, q domain.Querier) error {
		fetchCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
		messages, err := p.outboxRepo.GetPendingMessagesTx(fetchCtx, q, p.batchSize)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to get pending outbox messages: %w", err)
		}
		if len(messages) == 0 {
			p.logger.Debug("No pending outbox messages found.")
			return nil
		}
		p.logger.Debug("Found pending outbox messages", zap.Int("count", len(messages)))

		for _, msg := range messages {
			if err := p.producer.Produce(ctx, msg.Topic, []byte(msg.Key), msg.Payload); err != nil {
				p.logger.Error("Failed to send message to Kafka",
					zap.String("message_id", msg.ID),
					zap.String("message_type", msg.MessageType),
					zap.String("topic", msg.Topic),
					zap.Error(err))
				return nil
			}
			if err := p.outboxRepo.UpdateMessageStatusTx(ctx, q, msg.ID, domain.OutboxStatusSent); err != nil {
				return fmt.Errorf("failed to mark outbox message %s as sent: %w", msg.ID, err)
			}
			sent++
			p.logger.Info("Outbox message relayed",
				zap.String("message_id", msg.ID),
				zap.String("message_type", msg.MessageType),
				zap.String("aggregate_id", msg.AggregateID),
				zap.String("topic", msg.Topic))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sent, nil
}
