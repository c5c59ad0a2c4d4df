package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/storage"
)

var errBoom = errors.New("boom")

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// flakyBlobs wraps a memory store and fails deletes of selected keys.
type flakyBlobs struct {
	*storage.MemoryStore
	mu   sync.Mutex
	fail map[string]bool
}

func newFlakyBlobs(keys ...string) *flakyBlobs {
	b := &flakyBlobs{MemoryStore: storage.NewMemoryStore(), fail: map[string]bool{}}
	for _, k := range keys {
		_ = b.Put(context.Background(), k, emptyReader{}, 0, "image/jpeg")
	}
	return b
}

func (b *flakyBlobs) failOn(keys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		b.fail[k] = true
	}
}

func (b *flakyBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	fail := b.fail[key]
	b.mu.Unlock()
	if fail {
		return errBoom
	}
	return b.MemoryStore.Delete(ctx, key)
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// recordingSink collects orphan reports.
type recordingSink struct {
	mu   sync.Mutex
	keys []string
}

func (s *recordingSink) Enqueue(_ context.Context, key, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return nil
}

func (s *recordingSink) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// countingListings counts batched lookups.
type countingListings struct {
	ListingStore
	mu      sync.Mutex
	batches int
	singles int
}

func (c *countingListings) GetByIDs(ctx context.Context, ids []string) ([]model.Listing, error) {
	c.mu.Lock()
	c.batches++
	c.mu.Unlock()
	return c.ListingStore.GetByIDs(ctx, ids)
}

func (c *countingListings) GetByID(ctx context.Context, id string) (model.Listing, error) {
	c.mu.Lock()
	c.singles++
	c.mu.Unlock()
	return c.ListingStore.GetByID(ctx, id)
}

// failingBookings fails DeleteByPlace.
type failingBookings struct{ BookingStore }

func (failingBookings) DeleteByPlace(context.Context, string) (int64, error) { return 0, errBoom }

type fixture struct {
	mem      *repository.Memory
	blobs    *flakyBlobs
	sink     *recordingSink
	listings *ListingService
	bookings *BookingService
}

func newFixture(photos ...string) *fixture {
	mem := repository.NewMemory()
	blobs := newFlakyBlobs(photos...)
	sink := &recordingSink{}
	return &fixture{
		mem:      mem,
		blobs:    blobs,
		sink:     sink,
		listings: NewListingService(mem.Listings, mem.Bookings, blobs, sink, quietLogger()),
		bookings: NewBookingService(mem.Bookings, mem.Listings),
	}
}
