package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "godview"

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "godview"},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("godview"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("main-app"), jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"admin", "support"}},
	}

	require.NoError(t, c.ValidateAudience([]string{"admin"}))
	require.NoError(t, c.ValidateAudience([]string{"foo", "support"}))
	require.NoError(t, c.ValidateAudience(nil))
	require.ErrorIs(t, c.ValidateAudience([]string{"billing"}), jwtx.ErrAudience)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
		}
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{NotBefore: jwt.NewNumericDate(now.Add(time.Minute))},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})
}

func TestValidateSession(t *testing.T) {
	now := time.Now().UTC()

	ok := jwtx.NewSessionClaims("user-1", "sess-1", []string{"pwd"}, exampleIssuer, nil, now, now.Add(time.Hour))
	require.NoError(t, ok.ValidateSession())
	require.NotEmpty(t, ok.ID)

	missingSID := jwtx.NewSessionClaims("user-1", "", nil, exampleIssuer, nil, now, now.Add(time.Hour))
	require.ErrorIs(t, missingSID.ValidateSession(), jwtx.ErrInvalidClaim)
}
