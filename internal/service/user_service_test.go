package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/utils"
)

func newUserService() (*UserService, *repository.Memory) {
	mem := repository.NewMemory()
	return NewUserService(mem.Users, bcrypt.MinCost), mem
}

func TestUserService_SignupStoresHash(t *testing.T) {
	svc, mem := newUserService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Firstname: "Ada", Lastname: "L", Email: "A@B.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	stored, err := mem.Users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "pw1"))
}

func TestUserService_SignupValidation(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "", Password: "pw"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Signup(ctx, SignupInput{Email: "no-at-sign", Password: "pw"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Signup(ctx, SignupInput{Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Signup(ctx, SignupInput{Email: "a@b.com", Password: strings.Repeat("x", MaxPasswordBytes+8)})
	assert.ErrorIs(t, err, ErrValidation)

	// exactly at the bcrypt limit is accepted
	_, err = svc.Signup(ctx, SignupInput{Email: "a@b.com", Password: strings.Repeat("x", MaxPasswordBytes)})
	assert.NoError(t, err)
}

func TestUserService_SignupDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, SignupInput{Email: "a@b.com", Password: "other"})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestUserService_Authenticate(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Email: "a@b.com", Password: "pw1"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "a@b.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = svc.Authenticate(ctx, "nobody@b.com", "pw1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
