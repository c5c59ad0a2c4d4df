package service

import (
	"context"
	"log/slog"
)

// OrphanSink receives blob keys whose deletion failed so they can be
// retried out of band.  Implementations must tolerate duplicates.
type OrphanSink interface {
	Enqueue(ctx context.Context, key, reason string) error
}

// LogSink only records orphaned keys in the log.  It is used when no
// message broker is configured.
type LogSink struct{ Log *slog.Logger }

func (s LogSink) Enqueue(ctx context.Context, key, reason string) error {
	s.Log.WarnContext(ctx, "orphaned blob left in storage", "key", key, "reason", reason)
	return nil
}
