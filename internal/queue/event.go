// Package queue carries blob cleanup work over RabbitMQ.  Photo blobs
// whose deletion failed during a listing update or delete are published
// to the blob.cleanup queue and retried by a background consumer.
package queue

import "time"

const (
	// CleanupQueue is the durable queue holding BlobCleanupEvent messages.
	CleanupQueue = "blob.cleanup"
	// RetryQueue parks failed events until their per-message TTL expires;
	// the broker then dead-letters them back onto CleanupQueue.
	RetryQueue = "blob.cleanup.retry"
)

// BlobCleanupEvent names one orphaned blob.  Attempt counts deliveries
// that already failed; it is zero when first published.
type BlobCleanupEvent struct {
	Key      string    `json:"key"`
	Reason   string    `json:"reason"`
	Attempt  int       `json:"attempt"`
	QueuedAt time.Time `json:"queued_at"`
}
