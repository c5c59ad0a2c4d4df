package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
)

const (
	// DefaultPageSize is used when GET /places carries no limit.
	DefaultPageSize = 50
	// MaxPageSize caps a single page of listings.
	MaxPageSize = 200

	blobDeleteParallelism = 4
	orphanEnqueueTimeout  = 5 * time.Second
)

// ListingService owns the listing lifecycle.  Only the owner may change
// a listing; photos dropped from a listing are removed from the blob
// store on a best-effort basis.
type ListingService struct {
	listings ListingStore
	bookings BookingStore
	blobs    BlobDeleter
	orphans  OrphanSink
	log      *slog.Logger
}

func NewListingService(listings ListingStore, bookings BookingStore, blobs BlobDeleter, orphans OrphanSink, log *slog.Logger) *ListingService {
	if listings == nil || bookings == nil || blobs == nil {
		panic("nil dependency passed to NewListingService")
	}
	if log == nil {
		log = slog.Default()
	}
	if orphans == nil {
		orphans = LogSink{Log: log}
	}
	return &ListingService{listings: listings, bookings: bookings, blobs: blobs, orphans: orphans, log: log}
}

// ClampPage applies the default and maximum page sizes.
func ClampPage(p model.Page) model.Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Create stores a new listing owned by the caller.  Fields are accepted
// as given.
func (s *ListingService) Create(ctx context.Context, owner model.Identity, f model.ListingFields) (model.Listing, error) {
	l := model.Listing{Owner: owner.ID}
	l.Apply(f)
	if err := s.listings.Create(ctx, &l); err != nil {
		return model.Listing{}, fmt.Errorf("create place: %w", err)
	}
	return l, nil
}

// Get returns a listing or repository.ErrNotFound.
func (s *ListingService) Get(ctx context.Context, id string) (model.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// List returns one page of listings, newest first.
func (s *ListingService) List(ctx context.Context, page model.Page) ([]model.Listing, error) {
	return s.listings.List(ctx, ClampPage(page))
}

// ListByOwner returns the caller's own listings.
func (s *ListingService) ListByOwner(ctx context.Context, owner model.Identity) ([]model.Listing, error) {
	return s.listings.ListByOwner(ctx, owner.ID)
}

// Update replaces the editable fields of listing id on behalf of who.
// It fails with repository.ErrNotFound or repository.ErrForbidden.  After
// the listing is saved, photos that are no longer referenced are deleted
// from the blob store; those deletions never fail the update.
func (s *ListingService) Update(ctx context.Context, who model.Identity, id string, f model.ListingFields) error {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Owner != who.ID {
		return repository.ErrForbidden
	}

	oldPhotos := l.Photos
	l.Apply(f)
	if err := s.listings.Update(ctx, l); err != nil {
		return fmt.Errorf("update place %s: %w", id, err)
	}

	s.removeBlobs(ctx, StalePhotos(oldPhotos, l.Photos), "photo removed from place "+id)
	return nil
}

// Delete removes a listing as an ordered saga: its bookings first, then
// its photos (best-effort), then the listing itself.  A failure while
// deleting bookings leaves the listing in place so the call can be
// repeated.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.bookings.DeleteByPlace(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bookings of place %s: %w", id, err)
	}

	s.removeBlobs(ctx, l.Photos, "place "+id+" deleted")

	if err := s.listings.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete place %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "place deleted", "place_id", id, "bookings", n, "photos", len(l.Photos))
	return nil
}

// StalePhotos returns the keys of before that are absent from after,
// without duplicates and in their original order.
func StalePhotos(before, after []string) []string {
	used := make(map[string]struct{}, len(after))
	for _, k := range after {
		used[k] = struct{}{}
	}
	var stale []string
	for _, k := range before {
		if _, ok := used[k]; ok {
			continue
		}
		used[k] = struct{}{}
		stale = append(stale, k)
	}
	return stale
}

// removeBlobs deletes keys concurrently.  Failures are logged and handed
// to the orphan sink; they are never returned.
func (s *ListingService) removeBlobs(ctx context.Context, keys []string, reason string) {
	if len(keys) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(blobDeleteParallelism)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			if err := s.blobs.Delete(ctx, key); err != nil {
				s.log.WarnContext(ctx, "blob delete failed", "key", key, "error", err)
				s.reportOrphan(ctx, key, reason)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *ListingService) reportOrphan(ctx context.Context, key, reason string) {
	// the request context may already be done; the report must still go out
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orphanEnqueueTimeout)
	defer cancel()
	if err := s.orphans.Enqueue(ctx, key, reason); err != nil {
		s.log.ErrorContext(ctx, "orphaned blob not queued for cleanup", "key", key, "error", err)
	}
}
