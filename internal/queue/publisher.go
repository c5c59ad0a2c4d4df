package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends orphaned blob keys to the blob.cleanup queue.  Each
// call dials the broker; orphans are rare, so no connection is kept open.
type Publisher struct {
	URL string
	Log *slog.Logger
}

func NewPublisher(url string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{URL: url, Log: log}
}

// Enqueue publishes a first-attempt cleanup event for key.
func (p *Publisher) Enqueue(ctx context.Context, key, reason string) error {
	return p.Publish(ctx, BlobCleanupEvent{Key: key, Reason: reason, QueuedAt: time.Now().UTC()})
}

// Publish sends ev as a persistent message.  Errors are logged and
// returned.
func (p *Publisher) Publish(ctx context.Context, ev BlobCleanupEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq dial failed", "error", err)
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq channel open failed", "error", err)
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareCleanupQueue(ch); err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq queue declare failed", "error", err)
		return err
	}
	if err := publish(ctx, ch, ev); err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq publish failed", "key", ev.Key, "error", err)
		return err
	}
	return nil
}

// declareCleanupQueue declares the work queue and its retry queue.  Both
// are durable so pending cleanups survive broker restarts; declaring is
// idempotent.
func declareCleanupQueue(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		CleanupQueue, // name
		true,         // durable
		false,        // autoDelete
		false,        // exclusive
		false,        // noWait
		nil,          // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if _, err := ch.QueueDeclare(RetryQueue, true, false, false, false, retryQueueArgs()); err != nil {
		return fmt.Errorf("retry queue declare: %w", err)
	}
	return nil
}

// retryQueueArgs routes expired messages from RetryQueue back to
// CleanupQueue through the default exchange.
func retryQueueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": CleanupQueue,
	}
}

func publish(ctx context.Context, ch *amqp.Channel, ev BlobCleanupEvent) error {
	msg, err := cleanupPublishing(ev, 0)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", CleanupQueue, false, false, msg)
}

// publishRetry parks ev on RetryQueue for delay before it is consumed
// again.
func publishRetry(ctx context.Context, ch *amqp.Channel, ev BlobCleanupEvent, delay time.Duration) error {
	msg, err := cleanupPublishing(ev, delay)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", RetryQueue, false, false, msg)
}

// cleanupPublishing builds the persistent JSON message for ev.  A positive
// delay becomes the per-message expiration in milliseconds.
func cleanupPublishing(ev BlobCleanupEvent, delay time.Duration) (amqp.Publishing, error) {
	body, err := encodeEvent(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if delay > 0 {
		msg.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}
	return msg, nil
}

func encodeEvent(ev BlobCleanupEvent) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal cleanup event: %w", err)
	}
	return body, nil
}
