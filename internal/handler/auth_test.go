package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/staybook/internal/middleware"
	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/service"
)

// brokenUsers fails every lookup with err.
type brokenUsers struct{ err error }

func (b brokenUsers) Create(context.Context, *model.User) error { return b.err }
func (b brokenUsers) GetByEmail(context.Context, string) (model.User, error) {
	return model.User{}, b.err
}
func (b brokenUsers) GetByID(context.Context, string) (model.User, error) {
	return model.User{}, b.err
}

var authSessions = middleware.Sessions{Secret: "handler-test-secret", TTL: time.Hour}

func profileRequest(t *testing.T, users service.UserStore) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := NewAuthHandler(service.NewUserService(users, bcrypt.MinCost), authSessions, time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	// mint a cookie for a user id the store will be asked about
	issueRec := httptest.NewRecorder()
	require.NoError(t, authSessions.Issue(e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), issueRec),
		model.Identity{ID: "650000000000000000000001", Email: "a@b.com"}))
	cookies := issueRec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	require.NoError(t, h.Profile(e.NewContext(req, rec)))
	return rec
}

func TestProfile_MissingUserIsUnauthorized(t *testing.T) {
	rec := profileRequest(t, brokenUsers{err: repository.ErrNotFound})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestProfile_StoreFailureIsServerError(t *testing.T) {
	rec := profileRequest(t, brokenUsers{err: context.DeadlineExceeded})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	rec = profileRequest(t, brokenUsers{err: errors.New("connection reset")})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
