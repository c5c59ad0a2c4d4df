package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/staybook/internal/model"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	id := model.Identity{ID: "64f0c2a1e4b0a1b2c3d4e5f6", Email: "a@b.com"}
	tok, err := NewSessionToken("secret", id, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	t.Parallel()

	id := model.Identity{ID: "u1", Email: "u1@x.io"}
	good, err := NewSessionToken("right", id, time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("right", id, -time.Minute)
	require.NoError(t, err)
	noID, err := NewSessionToken("right", model.Identity{Email: "x@y.z"}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1"})
	noExpSigned, err := noExp.SignedString([]byte("right"))
	require.NoError(t, err)

	parts := strings.Split(good.Token, ".")
	first := "A"
	if parts[2][0] == 'A' {
		first = "B"
	}
	tampered := parts[0] + "." + parts[1] + "." + first + parts[2][1:]

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": good.Token,
		"expired":      expired.Token,
		"missing id":   noID.Token,
		"alg none":     unsigned,
		"no exp":       noExpSigned,
		"tampered":     tampered,
	}
	for name, raw := range cases {
		secret := "right"
		if name == "wrong secret" {
			secret = "wrong"
		}
		_, err := ParseSessionToken(secret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	a, err := RandomHex(32)
	require.NoError(t, err)
	b, err := RandomHex(32)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToLower(a), a)
}
