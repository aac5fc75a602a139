package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/scholargraph/internal/queue"
	"github.com/OFFIS-RIT/scholargraph/internal/setup"
	"github.com/OFFIS-RIT/scholargraph/internal/util"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnv("LOG_FORMAT") == "json",
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// The server owns the schema; the worker only connects.
	p, cleanup, err := setup.Pipeline(ctx, setup.Params{})
	if err != nil {
		logger.Fatal("Failed to set up pipeline", "err", err)
	}
	defer cleanup()

	// Init rabbitmq
	conn, err := queue.Init(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to queue", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	// prefetch=1 so a worker only holds one graph build at a time
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.GraphQueue,
		fmt.Sprintf("%s_consumer", queue.GraphQueue),
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.GraphQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.GraphQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.GraphQueue)
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.GraphQueue, "retries", queue.Retries(msg.Headers))

			if err := queue.ProcessGraphMessage(ctx, p, msg.Body); err != nil {
				logger.Error("Error processing message", "queue", queue.GraphQueue, "err", err)
				queue.HandleProcessingError(ctx, ch, msg, queue.GraphQueue)
				continue
			}

			if err := msg.Ack(false); err != nil {
				logger.Error("Failed to ack message", "err", err)
			}
			logger.Info("Message processed successfully", "queue", queue.GraphQueue, "duration", time.Since(startTime).Round(time.Millisecond))
		}
	}
}
