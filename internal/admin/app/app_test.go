package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()
	return Config{
		Port:                 8080,
		Env:                  "dev",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
		DatabaseFile:         filepath.Join(dir, "godview.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		SessionKeyFile:       filepath.Join(dir, "keys", "session.key"),
		Issuer:               "godview-test",
		SessionTTL:           time.Hour,
		BootstrapToken:       "first-run",
		MainAppURL:           "http://localhost:3000",
		InviteBaseURL:        "http://localhost:8080",
		EmailFrom:            "noreply@godview.test",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApplicationServesReadyz(t *testing.T) {
	cfg := testConfig(t)
	app, err := newApplication(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"database":"ok"`)
	require.Contains(t, rec.Body.String(), `"email":"noop"`)

	// The session key was persisted with owner-only permissions
	info, err := os.Stat(cfg.SessionKeyFile)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestApplicationBootstrapThroughRouter(t *testing.T) {
	app, err := newApplication(testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	body := `{"email":"first@godview.test","name":"First","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/bootstrap", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Bootstrap-Token", "first-run")

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSessionKeySurvivesRestart(t *testing.T) {
	cfg := testConfig(t)

	first, err := InitSessionKeys(cfg, []string{"godview"}, quietLogger())
	require.NoError(t, err)
	second, err := InitSessionKeys(cfg, []string{"godview"}, quietLogger())
	require.NoError(t, err)

	require.Equal(t, first.Signer.KID(), second.Signer.KID())
	require.True(t, first.Signer.PublicKey().Equal(second.Signer.PublicKey()))
}
