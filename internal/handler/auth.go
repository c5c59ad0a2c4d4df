package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/staybook/internal/middleware"
	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/service"
)

// AuthHandler bundles dependencies for the account and session endpoints.
type AuthHandler struct {
	Users    *service.UserService
	Sessions middleware.Sessions
	Timeout  time.Duration
	Log      *slog.Logger
}

func NewAuthHandler(users *service.UserService, sessions middleware.Sessions, timeout time.Duration, log *slog.Logger) *AuthHandler {
	if users == nil {
		panic("nil user service passed to NewAuthHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{Users: users, Sessions: sessions, Timeout: timeout, Log: log}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /signup and returns the created user.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Users.Signup(ctx, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.InfoContext(ctx, "user signed up", "user_id", u.ID)
	return c.JSON(http.StatusOK, u)
}

// Login handles POST /login.  On success the session cookie is set and
// the user document is returned.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.Sessions.Issue(c, model.Identity{ID: u.ID, Email: u.Email}); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Profile handles GET /profile.  Anonymous callers get null; a cookie
// that does not verify, or names a user that no longer exists, gets 401.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := h.Sessions.Resolve(c.Request())
	if err != nil {
		return unauthorized(c)
	}
	if id == nil {
		return c.JSON(http.StatusOK, nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Users.Get(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u.Profile())
}

// Logout handles POST /logout by clearing the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.Sessions.Clear(c)
	return c.JSON(http.StatusOK, true)
}
