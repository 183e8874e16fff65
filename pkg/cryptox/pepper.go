package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath sets the file the password pepper is read from, or written
// to on first use. It must be called before the first HashPassword.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	pepperFile = file
	pepper = ""
}

// GetPepper returns the process pepper, loading or generating it on first use.
// The process exits if the pepper cannot be established since no password
// could ever be verified again.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}

	p, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}
	pepper = p
	return pepper
}

func loadOrGeneratePepper(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return "", err
	}

	existing, err := os.ReadFile(file)
	if err == nil {
		return string(existing), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	generated := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(generated), 0o600); err != nil {
		return "", err
	}
	return generated, nil
}
