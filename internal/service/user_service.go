package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/utils"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// UserService handles signup and credential checks.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// SignupInput is the payload of POST /signup.
type SignupInput struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Signup validates the payload, hashes the password and stores the
// user.  A taken email yields repository.ErrEmailExists.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return model.User{}, fmt.Errorf("%w: a valid email is required", ErrValidation)
	case in.Password == "":
		return model.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	case len(in.Password) > MaxPasswordBytes:
		return model.User{}, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Authenticate returns the user owning email if password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrIncorrectPassword
	}
	return u, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (model.User, error) {
	return s.users.GetByID(ctx, id)
}
