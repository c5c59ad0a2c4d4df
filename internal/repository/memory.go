package repository

// In-memory implementations of the repositories.  They back the
// STORE_DRIVER=memory mode used for local runs and the HTTP tests, and
// mirror the Mongo repositories' semantics: hex ObjectID ids, newest
// first ordering, unique emails.

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/staybook/internal/model"
)

// Memory bundles one in-memory repository per collection.
type Memory struct {
	Users    *MemoryUserRepo
	Listings *MemoryListingRepo
	Bookings *MemoryBookingRepo
}

// NewMemory returns empty in-memory repositories.
func NewMemory() *Memory {
	return &Memory{
		Users:    &MemoryUserRepo{byID: map[string]model.User{}},
		Listings: &MemoryListingRepo{byID: map[string]model.Listing{}},
		Bookings: &MemoryBookingRepo{byID: map[string]model.Booking{}},
	}
}

// MemoryUserRepo is a map-backed UserRepo.
type MemoryUserRepo struct {
	mu   sync.RWMutex
	byID map[string]model.User
}

func (r *MemoryUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := normalizeEmail(u.Email)
	for _, existing := range r.byID {
		if existing.Email == email {
			return ErrEmailExists
		}
	}
	u.Email = email
	u.ID = primitive.NewObjectID().Hex()
	r.byID[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = normalizeEmail(email)
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// MemoryListingRepo is a map-backed ListingRepo.
type MemoryListingRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Listing
}

func (r *MemoryListingRepo) Create(_ context.Context, l *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = primitive.NewObjectID().Hex()
	r.byID[l.ID] = cloneListing(*l)
	return nil
}

func (r *MemoryListingRepo) GetByID(_ context.Context, id string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return model.Listing{}, ErrNotFound
	}
	return cloneListing(l), nil
}

func (r *MemoryListingRepo) GetByIDs(_ context.Context, ids []string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Listing{}
	seen := map[string]bool{}
	for _, id := range ids {
		if l, ok := r.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *MemoryListingRepo) List(_ context.Context, page model.Page) ([]model.Listing, error) {
	all := r.filter(func(model.Listing) bool { return true })
	if page.Offset >= len(all) {
		return []model.Listing{}, nil
	}
	end := len(all)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return all[page.Offset:end], nil
}

func (r *MemoryListingRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Listing, error) {
	return r.filter(func(l model.Listing) bool { return l.Owner == ownerID }), nil
}

func (r *MemoryListingRepo) Update(_ context.Context, l model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[l.ID]; !ok {
		return ErrNotFound
	}
	r.byID[l.ID] = cloneListing(l)
	return nil
}

func (r *MemoryListingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryListingRepo) filter(keep func(model.Listing) bool) []model.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Listing{}
	for _, l := range r.byID {
		if keep(l) {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func cloneListing(l model.Listing) model.Listing {
	l.Photos = append([]string{}, l.Photos...)
	l.Perks = append([]string{}, l.Perks...)
	return l
}

// MemoryBookingRepo is a map-backed BookingRepo.
type MemoryBookingRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Booking
}

func (r *MemoryBookingRepo) Create(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = primitive.NewObjectID().Hex()
	r.byID[b.ID] = *b
	return nil
}

func (r *MemoryBookingRepo) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.User == userID }), nil
}

func (r *MemoryBookingRepo) ListByPlace(_ context.Context, placeID string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.Place == placeID }), nil
}

func (r *MemoryBookingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *MemoryBookingRepo) DeleteByPlace(_ context.Context, placeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.byID {
		if b.Place == placeID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryBookingRepo) filter(keep func(model.Booking) bool) []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range r.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
