package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, kid string) jwtx.Signer {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newTestSigner(t, "session-key-1")
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "session-key-1", signer.KID())

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims("user-456", "session-1", []string{"pwd", "otp"}, exampleIssuer, []string{"admin"}, now, now.Add(5*time.Minute))

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	require.True(t, keyset.IsReady())

	parsed, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, []string{"admin"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.SID, parsed.SID)
	require.ElementsMatch(t, claims.AMR, parsed.AMR)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestEdDSAVerifyFailsForWrongIssuer(t *testing.T) {
	signer := newTestSigner(t, "k1")
	now := time.Now().UTC()

	token, err := signer.Sign(jwtx.NewSessionClaims("user-789", "session-2", nil, exampleIssuer, nil, now, now.Add(time.Minute)))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	_, err = jwtx.NewVerifierEdDSA(keyset, "wrong-issuer", nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestEdDSAVerifyFailsForUnknownKey(t *testing.T) {
	signer1 := newTestSigner(t, "key1")
	signer2 := newTestSigner(t, "key2")
	now := time.Now().UTC()

	token, err := signer1.Sign(jwtx.NewSessionClaims("user", "session", nil, exampleIssuer, nil, now, now.Add(time.Minute)))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer2))

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestEdDSAVerifyFailsForExpiredToken(t *testing.T) {
	signer := newTestSigner(t, "key")
	past := time.Now().UTC().Add(-2 * time.Hour)

	token, err := signer.Sign(jwtx.NewSessionClaims("user", "session", nil, exampleIssuer, nil, past, past.Add(time.Hour)))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestEdDSAVerifyRejectsTamperedToken(t *testing.T) {
	signer := newTestSigner(t, "key")
	now := time.Now().UTC()

	token, err := signer.Sign(jwtx.NewSessionClaims("user", "session", nil, exampleIssuer, nil, now, now.Add(time.Minute)))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(token[:len(token)-2] + "AA")
	require.Error(t, err)

	_, err = verifier.Verify("")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestEdDSASignerRejectsInvalidPEM(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("test", []byte("not-a-pem-key"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid PEM")
}

func TestEdDSACommonVerifierAdapter(t *testing.T) {
	signer := newTestSigner(t, "adapter-key")
	now := time.Now().UTC()

	claims := jwtx.NewSessionClaims("user-123", "session-adapter", []string{"pwd"}, exampleIssuer, nil, now, now.Add(time.Minute))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	parsed, err := jwtx.NewCommonEdDSA(keyset, exampleIssuer, nil).Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.SID, parsed.SID)
}
