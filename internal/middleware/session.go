package middleware // session middleware: cookie-carried JWT sessions

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/staybook/internal/model"
	"github.com/iliyamo/staybook/internal/utils"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// identityKey is the echo.Context key under which RequireSession stores
// the resolved identity.
const identityKey = "identity"

// Sessions issues and resolves session cookies.  The token inside the
// cookie is a signed JWT (see utils.NewSessionToken); nothing is stored
// server side, so logging out only clears the cookie.
type Sessions struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Issue signs a token for id and sets it as the session cookie.
func (s Sessions) Issue(c echo.Context, id model.Identity) error {
	tok, err := utils.NewSessionToken(s.Secret, id, s.TTL)
	if err != nil {
		return err
	}
	c.SetCookie(s.cookie(tok.Token, tok.Exp, int(s.TTL/time.Second)))
	return nil
}

// Clear overwrites the session cookie with an expired empty value.
func (s Sessions) Clear(c echo.Context) {
	c.SetCookie(s.cookie("", time.Unix(0, 0), -1))
}

func (s Sessions) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Resolve maps the request's session cookie to an identity.  It returns
// (nil, nil) when there is no cookie or the cookie is empty, and
// utils.ErrInvalidToken when the cookie is present but does not verify.
func (s Sessions) Resolve(r *http.Request) (*model.Identity, error) {
	ck, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && ck.Value == "") {
		return nil, nil
	}
	if err != nil {
		return nil, utils.ErrInvalidToken
	}
	id, err := utils.ParseSessionToken(s.Secret, ck.Value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RequireSession rejects requests without a valid session with 401 and
// otherwise stores the identity in the context for IdentityFrom.
func (s Sessions) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := s.Resolve(c.Request())
			if err != nil || id == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set(identityKey, *id)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by RequireSession.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}
