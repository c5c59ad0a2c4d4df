package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultMaxAttempts bounds how often one key is retried before the
	// consumer gives up and leaves it in the bucket.
	DefaultMaxAttempts = 5
	defaultRetryDelay  = 5 * time.Second
	deleteTimeout      = 10 * time.Second
)

// BlobDeleter is the part of the blob store the consumer needs.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// CleanupConsumer drains the blob.cleanup queue and deletes each named
// blob.  Deleting an already missing blob succeeds, so redelivered
// messages are harmless.
type CleanupConsumer struct {
	URL         string
	Blobs       BlobDeleter
	Log         *slog.Logger
	MaxAttempts int
	RetryDelay  time.Duration
}

func NewCleanupConsumer(url string, blobs BlobDeleter, log *slog.Logger) *CleanupConsumer {
	if log == nil {
		log = slog.Default()
	}
	return &CleanupConsumer{
		URL:         url,
		Blobs:       blobs,
		Log:         log,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  defaultRetryDelay,
	}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff whenever the connection drops.
func (c *CleanupConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("blob-cleanup: failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("blob-cleanup: consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *CleanupConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.Log.Warn("blob-cleanup: set QoS failed", "error", err)
	}
	if err := declareCleanupQueue(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(CleanupQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, ch, d)
		}
	}
}

// deliver handles one delivery.  A failed delete is parked on RetryQueue
// with a higher attempt count and comes back after RetryDelay, so the
// consume loop never blocks on a retry.  The original is acked once the
// retry is published.
func (c *CleanupConsumer) deliver(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
	retry, err := c.handleMessage(ctx, d.Body)
	if err != nil {
		c.Log.Error("blob-cleanup: handle message failed", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if retry != nil {
		if err := publishRetry(ctx, ch, *retry, c.RetryDelay); err != nil {
			c.Log.Error("blob-cleanup: republish failed", "key", retry.Key, "error", err)
			_ = d.Nack(false, true)
			return
		}
	}
	_ = d.Ack(false)
}

// handleMessage deletes the blob named by body.  It returns the event to
// republish when the delete failed and attempts remain, and an error only
// for messages that can never succeed.
func (c *CleanupConsumer) handleMessage(ctx context.Context, body []byte) (*BlobCleanupEvent, error) {
	var ev BlobCleanupEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if strings.TrimSpace(ev.Key) == "" {
		return nil, errors.New("cleanup event without key")
	}

	dctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	err := c.Blobs.Delete(dctx, ev.Key)
	if err == nil {
		c.Log.Info("blob-cleanup: orphaned blob removed", "key", ev.Key, "attempt", ev.Attempt+1)
		return nil, nil
	}

	ev.Attempt++
	if ev.Attempt >= c.MaxAttempts {
		c.Log.Error("blob-cleanup: giving up on orphaned blob", "key", ev.Key, "attempts", ev.Attempt, "reason", ev.Reason, "error", err)
		return nil, nil
	}
	c.Log.Warn("blob-cleanup: delete failed; will retry", "key", ev.Key, "attempt", ev.Attempt, "error", err)
	return &ev, nil
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
