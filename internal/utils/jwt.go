package utils // package utils provides helper functions for session tokens, hashing and random keys

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding of random keys
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/staybook/internal/model"
)

// ErrInvalidToken is returned for any session token that cannot be
// trusted: bad signature, unexpected algorithm, expired, malformed or
// missing the user id claim.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken is a signed JWT together with its expiry.  The token
// travels to the client in the session cookie.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// sessionClaims embeds the registered claims and the two identity
// fields every handler needs.
type sessionClaims struct {
	Email string `json:"email"`
	ID    string `json:"id"`
	jwt.RegisteredClaims
}

// NewSessionToken builds and signs an HS256 JWT for the identity.  The
// token expires ttl from now.
func NewSessionToken(secret string, id model.Identity, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := sessionClaims{
		Email: id.Email,
		ID:    id.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, fmt.Errorf("sign session token: %w", err)
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw and returns the identity it carries.
// Every failure is reported as ErrInvalidToken.
func ParseSessionToken(secret, raw string) (model.Identity, error) {
	if raw == "" {
		return model.Identity{}, ErrInvalidToken
	}
	claims := &sessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC before handing out the key.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	if claims.ID == "" {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{ID: claims.ID, Email: claims.Email}, nil
}

// RandomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  It names uploaded blobs.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
