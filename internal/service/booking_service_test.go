package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
)

func TestBookingService_CreateRequiresPlace(t *testing.T) {
	f := newFixture()
	_, err := f.bookings.Create(context.Background(), bob, model.BookingFields{Place: "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_ListForUserEmbedsPlacesInOneBatch(t *testing.T) {
	mem := repository.NewMemory()
	counting := &countingListings{ListingStore: mem.Listings}
	svc := NewBookingService(mem.Bookings, counting)
	ctx := context.Background()

	l1 := &model.Listing{Owner: alice.ID, Title: "Loft"}
	l2 := &model.Listing{Owner: alice.ID, Title: "Cabin"}
	require.NoError(t, mem.Listings.Create(ctx, l1))
	require.NoError(t, mem.Listings.Create(ctx, l2))

	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for _, place := range []string{l1.ID, l2.ID, l1.ID, "000000000000000000000000"} {
		_, err := svc.Create(ctx, bob, model.BookingFields{Place: place, Checkin: in, Checkout: in.AddDate(0, 0, 2), Guests: 2})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, alice, model.BookingFields{Place: l1.ID})
	require.NoError(t, err)

	got, err := svc.ListForUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 1, counting.batches)
	assert.Equal(t, 0, counting.singles)

	for _, b := range got {
		assert.Equal(t, bob.ID, b.User)
		if b.ListingID == "000000000000000000000000" {
			assert.Nil(t, b.Place)
			continue
		}
		require.NotNil(t, b.Place)
		assert.Equal(t, b.ListingID, b.Place.ID)
	}
}

func TestBookingService_ListForUserEmpty(t *testing.T) {
	f := newFixture()
	got, err := f.bookings.ListForUser(context.Background(), bob)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBookingService_ListForListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.bookings.ListForListing(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	l, err := f.listings.Create(ctx, alice, model.ListingFields{Title: "Loft"})
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, bob, model.BookingFields{Place: l.ID, Name: "Bob"})
	require.NoError(t, err)

	got, err := f.bookings.ListForListing(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].Name)
}

func TestBookingService_DeleteIsUnconditional(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.bookings.Create(ctx, bob, model.BookingFields{Place: "p"})
	require.NoError(t, err)

	require.NoError(t, f.bookings.Delete(ctx, b.ID))
	require.NoError(t, f.bookings.Delete(ctx, b.ID))
	left, err := f.mem.Bookings.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
