// Package service holds the authorization-scoped business rules: who may
// change a listing, how photo keys are reconciled with the blob store
// and how bookings are scoped.  It depends only on the small storage
// interfaces declared here.
package service

import (
	"context"
	"errors"

	"github.com/iliyamo/staybook/internal/model"
)

var (
	// ErrValidation marks a malformed signup or creation payload.
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound is returned by Authenticate for an unknown email.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned by Authenticate when the password
	// does not match the stored hash.
	ErrIncorrectPassword = errors.New("incorrect password")
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// ListingStore persists listings.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (model.Listing, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Listing, error)
	List(ctx context.Context, page model.Page) ([]model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	Update(ctx context.Context, l model.Listing) error
	Delete(ctx context.Context, id string) error
}

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListByPlace(ctx context.Context, placeID string) ([]model.Booking, error)
	Delete(ctx context.Context, id string) error
	DeleteByPlace(ctx context.Context, placeID string) (int64, error)
}

// BlobDeleter removes photos from the blob store.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}
