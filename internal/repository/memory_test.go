package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/staybook/internal/model"
)

func TestMemoryUserRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Users

	u := &model.User{Firstname: "Ada", Email: " Ada@Example.com ", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Len(t, u.ID, 24)
	assert.Equal(t, "ada@example.com", u.Email)

	err := repo.Create(ctx, &model.User{Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := repo.GetByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListingRepo_PagingNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Listings

	var ids []string
	for i := 0; i < 5; i++ {
		l := &model.Listing{Owner: "o", Title: string(rune('a' + i))}
		require.NoError(t, repo.Create(ctx, l))
		ids = append(ids, l.ID)
	}

	page, err := repo.List(ctx, model.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	empty, err := repo.List(ctx, model.Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryListingRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Listings

	l := &model.Listing{Owner: "o", Photos: []string{"p1"}}
	require.NoError(t, repo.Create(ctx, l))
	l.Photos[0] = "mutated"

	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, got.Photos)
}

func TestMemoryListingRepo_UpdateDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Listings

	assert.ErrorIs(t, repo.Update(ctx, model.Listing{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}

func TestMemoryBookingRepo_DeleteByPlace(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Bookings

	for _, place := range []string{"p1", "p1", "p2"} {
		require.NoError(t, repo.Create(ctx, &model.Booking{Place: place, User: "u"}))
	}

	n, err := repo.DeleteByPlace(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "p2", left[0].Place)

	require.NoError(t, repo.Delete(ctx, "does-not-exist"))
}
