package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/staybook/internal/model"
)

// BookingService creates and lists bookings.  It performs no
// availability check: overlapping bookings of the same listing are
// accepted.
type BookingService struct {
	bookings BookingStore
	listings ListingStore
}

func NewBookingService(bookings BookingStore, listings ListingStore) *BookingService {
	return &BookingService{bookings: bookings, listings: listings}
}

// Create books a listing for the caller.  The listing id is not checked
// against the listings collection.
func (s *BookingService) Create(ctx context.Context, who model.Identity, f model.BookingFields) (model.Booking, error) {
	place := strings.TrimSpace(f.Place)
	if place == "" {
		return model.Booking{}, fmt.Errorf("%w: place is required", ErrValidation)
	}
	b := model.Booking{
		Place:    place,
		User:     who.ID,
		Checkin:  f.Checkin,
		Checkout: f.Checkout,
		Guests:   f.Guests,
		Phone:    f.Phone,
		Name:     f.Name,
		Price:    f.Price,
	}
	if err := s.bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}

// ListForUser returns the caller's bookings with their listings
// embedded.  All listings are resolved with one batched lookup.
func (s *BookingService) ListForUser(ctx context.Context, who model.Identity) ([]model.BookingWithPlace, error) {
	bookings, err := s.bookings.ListByUser(ctx, who.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	ids := make([]string, 0, len(bookings))
	seen := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.Place] {
			seen[b.Place] = true
			ids = append(ids, b.Place)
		}
	}
	listings, err := s.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve booked places: %w", err)
	}
	byID := make(map[string]*model.Listing, len(listings))
	for i := range listings {
		byID[listings[i].ID] = &listings[i]
	}

	out := make([]model.BookingWithPlace, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.WithPlace(byID[b.Place]))
	}
	return out, nil
}

// Delete removes a booking.  There is no ownership check and deleting a
// missing booking succeeds.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.bookings.Delete(ctx, id)
}

// ListForListing returns every booking of a listing, or
// repository.ErrNotFound when the listing does not exist.
func (s *BookingService) ListForListing(ctx context.Context, listingID string) ([]model.Booking, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.bookings.ListByPlace(ctx, listingID)
}
