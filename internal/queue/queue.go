package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/scholargraph/internal/util"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// GraphQueue carries asynchronous graph builds.
	GraphQueue = "graph_queue"

	// MaxRetries is the number of redeliveries before a message is moved to
	// the dead letter queue.
	MaxRetries = 10

	retryDelay = 10 * time.Second
)

// Queues lists every work queue the worker consumes.
var Queues = []string{GraphQueue}

// Publisher is implemented by *amqp091.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Declarer is implemented by *amqp091.Channel.
type Declarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
}

func connectionURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		util.GetEnv("RABBITMQ_USER"),
		util.GetEnv("RABBITMQ_PASSWORD"),
		util.GetEnvString("RABBITMQ_HOST", "localhost"),
		util.GetEnvString("RABBITMQ_PORT", "5672"),
	)
}

// Init connects to RabbitMQ using the RABBITMQ_* environment variables.
func Init(ctx context.Context) (*amqp091.Connection, error) {
	conn, err := util.RetryWithContext(ctx, util.DefaultBackoff, func(context.Context) (*amqp091.Connection, error) {
		return amqp091.Dial(connectionURL())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func RetryQueue(name string) string { return name + "_retry" }

func DeadLetterQueue(name string) string { return name + "_dlq" }

// SetupQueues declares every queue with its dead letter queue and a retry
// queue that hands messages back to the work queue after a delay.
func SetupQueues(ch Declarer, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := DeadLetterQueue(name)
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := RetryQueue(name)
		if _, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelay / time.Millisecond),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

// PublishFIFO publishes a persistent message to the default exchange.
func PublishFIFO(ctx context.Context, ch Publisher, queueName string, data []byte, headers amqp091.Table) error {
	return ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			Headers:      headers,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
