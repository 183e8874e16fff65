package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GenerateEd25519Key generates a new Ed25519 private key as PKCS8 PEM.
func GenerateEd25519Key() ([]byte, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrGenerateEd25519Key reads the PEM key at path, creating it (0600)
// when it does not exist yet. Session cookies signed with the key survive
// restarts as long as the file does.
func LoadOrGenerateEd25519Key(path string) ([]byte, error) {
	path = filepath.Clean(path)

	existing, err := os.ReadFile(path)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cryptox: read session key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("cryptox: create key dir: %w", err)
	}

	generated, err := GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, generated, 0o600); err != nil {
		return nil, fmt.Errorf("cryptox: write session key: %w", err)
	}
	return generated, nil
}
