// Package storage puts and deletes listing photos in an object store.
// Objects are addressed by random hex keys and uploaded publicly
// readable so the front end can link to them directly.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iliyamo/staybook/internal/config"
	"github.com/iliyamo/staybook/internal/utils"
)

// KeyBytes is the entropy of a generated object key; keys are the hex
// encoding, so twice as many characters.
const KeyBytes = 32

// ErrUpstream wraps every failure reported by the object store.
var ErrUpstream = errors.New("blob storage error")

// Store is the put/delete-by-key contract every backend satisfies.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh random object key.
func NewKey() (string, error) {
	return utils.RandomHex(KeyBytes)
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Backend {
	case "s3":
		s, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "minio":
		m, err := NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

func upstream(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrUpstream, op, key, err)
}
