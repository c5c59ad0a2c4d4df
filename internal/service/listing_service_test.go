package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
)

var (
	alice = model.Identity{ID: "aaaaaaaaaaaaaaaaaaaaaaaa", Email: "alice@example.com"}
	bob   = model.Identity{ID: "bbbbbbbbbbbbbbbbbbbbbbbb", Email: "bob@example.com"}
)

func TestClampPage(t *testing.T) {
	assert.Equal(t, model.Page{Limit: DefaultPageSize}, ClampPage(model.Page{}))
	assert.Equal(t, model.Page{Limit: MaxPageSize, Offset: 0}, ClampPage(model.Page{Limit: 5000, Offset: -3}))
	assert.Equal(t, model.Page{Limit: 7, Offset: 14}, ClampPage(model.Page{Limit: 7, Offset: 14}))
}

func TestStalePhotos(t *testing.T) {
	assert.Equal(t, []string{"p1", "p3"}, StalePhotos([]string{"p1", "p2", "p3", "p1"}, []string{"p2", "p4"}))
	assert.Empty(t, StalePhotos(nil, []string{"p1"}))
	assert.Empty(t, StalePhotos([]string{"p1"}, []string{"p1"}))
}

func TestListingService_CreateAssignsOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Title: "Loft", Price: 120, Perks: []string{"wifi"}})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, alice.ID, l.Owner)
	assert.Equal(t, []string{}, l.Photos)

	mine, err := f.listings.ListByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	theirs, err := f.listings.ListByOwner(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestListingService_UpdateReconcilesPhotos(t *testing.T) {
	f := newFixture("p1", "p2", "p3", "p4")
	ctx := context.Background()

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Title: "Loft", Photos: []string{"p1", "p2", "p3"}})
	require.NoError(t, err)

	err = f.listings.Update(ctx, alice, l.ID, model.ListingFields{Title: "Loft v2", Photos: []string{"p2", "p4"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"p2", "p4"}, f.blobs.Keys())
	got, err := f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft v2", got.Title)
	assert.Equal(t, alice.ID, got.Owner)
	assert.Equal(t, []string{"p2", "p4"}, got.Photos)
	assert.Empty(t, f.sink.Keys())
}

func TestListingService_UpdateByOtherUserIsForbidden(t *testing.T) {
	f := newFixture("p1")
	ctx := context.Background()

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Title: "Loft", Photos: []string{"p1"}})
	require.NoError(t, err)

	err = f.listings.Update(ctx, bob, l.ID, model.ListingFields{Title: "stolen"})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	got, err := f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Title)
	assert.True(t, f.blobs.Has("p1"))
}

func TestListingService_UpdateMissing(t *testing.T) {
	f := newFixture()
	err := f.listings.Update(context.Background(), alice, "nope", model.ListingFields{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListingService_UpdateSwallowsBlobFailures(t *testing.T) {
	f := newFixture("p1", "p2")
	f.blobs.failOn("p1")
	ctx := context.Background()

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Photos: []string{"p1", "p2"}})
	require.NoError(t, err)

	require.NoError(t, f.listings.Update(ctx, alice, l.ID, model.ListingFields{Photos: nil}))
	assert.Equal(t, []string{"p1"}, f.blobs.Keys())
	assert.Equal(t, []string{"p1"}, f.sink.Keys())
}

func TestListingService_DeleteCascades(t *testing.T) {
	f := newFixture("p1", "p2", "other")
	ctx := context.Background()

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Photos: []string{"p1", "p2"}})
	require.NoError(t, err)
	keep, err := f.listings.Create(ctx, alice, model.ListingFields{Photos: []string{"other"}})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := f.bookings.Create(ctx, bob, model.BookingFields{Place: l.ID})
		require.NoError(t, err)
	}
	_, err = f.bookings.Create(ctx, bob, model.BookingFields{Place: keep.ID})
	require.NoError(t, err)

	require.NoError(t, f.listings.Delete(ctx, l.ID))

	_, err = f.listings.Get(ctx, l.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	left, err := f.mem.Bookings.ListByPlace(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	others, err := f.mem.Bookings.ListByPlace(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, others, 1)
	assert.Equal(t, []string{"other"}, f.blobs.Keys())
}

func TestListingService_DeleteToleratesBlobFailure(t *testing.T) {
	f := newFixture("p1", "p2")
	f.blobs.failOn("p2")
	ctx := context.Background()

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Photos: []string{"p1", "p2"}})
	require.NoError(t, err)

	require.NoError(t, f.listings.Delete(ctx, l.ID))
	_, err = f.listings.Get(ctx, l.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, []string{"p2"}, f.sink.Keys())
}

func TestListingService_DeleteStopsWhenBookingsFail(t *testing.T) {
	f := newFixture("p1")
	ctx := context.Background()
	svc := NewListingService(f.mem.Listings, failingBookings{f.mem.Bookings}, f.blobs, f.sink, quietLogger())

	l, err := svc.Create(ctx, alice, model.ListingFields{Photos: []string{"p1"}})
	require.NoError(t, err)

	err = svc.Delete(ctx, l.ID)
	assert.ErrorIs(t, err, errBoom)

	_, err = svc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, f.blobs.Has("p1"))
}

func TestListingService_DeleteMissing(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.listings.Delete(context.Background(), "nope"), repository.ErrNotFound)
}

func TestListingService_ListIsBounded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < DefaultPageSize+5; i++ {
		_, err := f.listings.Create(ctx, alice, model.ListingFields{})
		require.NoError(t, err)
	}

	page, err := f.listings.List(ctx, model.Page{})
	require.NoError(t, err)
	assert.Len(t, page, DefaultPageSize)

	rest, err := f.listings.List(ctx, model.Page{Offset: DefaultPageSize})
	require.NoError(t, err)
	assert.Len(t, rest, 5)
}
