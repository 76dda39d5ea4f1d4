package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"currencyexchange/internal/app/accounts"
	"currencyexchange/internal/domain/event"
	kafka_infra "currencyexchange/internal/infrastructure/kafka"
	"currencyexchange/internal/util"
)

// ExchangeRequestedMessageHandler executes exchange commands read from Kafka.
// A message is identified by its request id, or by its position in the topic
// when it has none, so redeliveries are recognised by the inbox.
func ExchangeRequestedMessageHandler(accountService accounts.AccountService, logger *zap.Logger) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		logger.Info("Received Kafka message for currency exchange",
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.String("key", string(msg.Key)),
		)

		var cmd event.ExchangeRequestedEvent
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			logger.Error("Failed to unmarshal Kafka message value to ExchangeRequestedEvent, skipping",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			return nil
		}

		messageID := cmd.RequestID
		if messageID == "" {
			messageID = util.MessageID(msg.Topic, msg.Partition, msg.Offset)
		}

		logger.Info("Processing ExchangeRequestedEvent",
			zap.String("message_id", messageID),
			zap.String("account_id", cmd.AccountID),
			zap.String("from", cmd.FromCurrency),
			zap.String("to", cmd.ToCurrency),
			zap.String("amount", cmd.Amount.String()),
		)

		if err := accountService.ProcessExchangeCommand(ctx, messageID, msg.Topic, cmd, msg.Value); err != nil {
			logger.Error("Failed to process exchange command",
				zap.String("message_id", messageID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to process exchange command %s: %w", messageID, err)
		}

		logger.Info("Successfully processed exchange command", zap.String("message_id", messageID))
		return nil
	}
}
