package app

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
)

// SessionKeys bundles the signer, its public keyset and a verifier bound to
// the configured issuer.
type SessionKeys struct {
	Signer   jwtx.Signer
	KeySet   *jwtx.KeySet
	Verifier jwtx.Verifier
	Audience []string
}

// InitSessionKeys loads the Ed25519 session key from disk, generating it on
// first start. Sessions survive restarts for as long as the file does.
func InitSessionKeys(cfg Config, audience []string, logger *slog.Logger) (*SessionKeys, error) {
	pemKey, err := cryptox.LoadOrGenerateEd25519Key(cfg.SessionKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(keyID(pemKey), pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build session signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("failed to register session key: %w", err)
	}

	logger.Info("session signing key loaded",
		"kid", signer.KID(),
		"issuer", cfg.Issuer,
		"path", cfg.SessionKeyFile,
	)

	return &SessionKeys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewCommonEdDSA(keys, cfg.Issuer, audience),
		Audience: audience,
	}, nil
}

// keyID is stable for a given key file.
func keyID(pemKey []byte) string {
	sum := sha256.Sum256(pemKey)
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
