package queue

import (
	"context"

	"github.com/OFFIS-RIT/scholargraph/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const retriesHeader = "x-retries"

// Retries reads the redelivery counter of a message.
func Retries(headers amqp091.Table) int {
	switch v := headers[retriesHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// HandleProcessingError moves a failed message to the retry queue, or to the
// dead letter queue once it has been retried MaxRetries times. The original
// delivery is acked when the republish succeeded and requeued otherwise.
func HandleProcessingError(ctx context.Context, ch Publisher, msg amqp091.Delivery, queueName string) {
	retries := Retries(msg.Headers)

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}

	target := RetryQueue(queueName)
	if retries >= MaxRetries {
		target = DeadLetterQueue(queueName)
		logger.Warn("[Queue] Sending message to DLQ", "dlq", target, "retries", retries)
	} else {
		headers[retriesHeader] = int32(retries + 1)
	}

	if err := PublishFIFO(ctx, ch, target, msg.Body, headers); err != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", err)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
}
