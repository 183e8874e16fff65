package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/internal/admin/store/drivers/sqlite"
	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/aussiebroadwan/godview/pkg/mailx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer         = "https://admin.godview.test"
	testBootstrapToken = "let-me-in"
	testPassword       = "correct horse battery"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "godview-http-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// testEnv is a full router backed by an in-memory store, served over a
// real listener so cookies round-trip through a jar.
type testEnv struct {
	t      *testing.T
	ctx    context.Context
	store  *sqlite.Store
	router *Router
	srv    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audience := []string{service.DefaultAudience}

	audit := &service.AuditRecorder{Store: st}
	mailer := &service.Mailer{Store: st, Sender: mailx.NoopSender{}, From: "noreply@godview.test"}
	invitations := &service.InvitationService{
		Store:         st,
		Audit:         audit,
		Mailer:        mailer,
		InviteBaseURL: "https://admin.godview.test",
	}

	r := NewRouter(keys, "test", st, logger)
	r.Guard = &service.Guard{Store: st, Verifier: jwtx.NewCommonEdDSA(keys, testIssuer, audience)}
	r.AccountService = &service.AccountService{
		Store:          st,
		Signer:         signer,
		Issuer:         testIssuer,
		Audience:       audience,
		SessionTTL:     time.Hour,
		BootstrapToken: testBootstrapToken,
	}
	r.MFAService = &service.MFAService{Store: st, Issuer: "godview"}
	r.InvitationService = invitations
	r.OrganizationService = &service.OrganizationService{Store: st, Audit: audit, Invitations: invitations}
	r.ImpersonationService = &service.ImpersonationService{Store: st, Audit: audit, MainAppURL: "https://app.godview.test"}
	r.InsightsService = &service.InsightsService{Store: st}
	r.FeatureFlagService = &service.FeatureFlagService{Store: st, Audit: audit}
	r.AuditRecorder = audit
	r.Mailer = mailer
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{t: t, ctx: context.Background(), store: st, router: r, srv: srv}
}

// seedUser inserts a user with testPassword.
func (e *testEnv) seedUser(email, name string, role domain.Role) domain.User {
	e.t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(e.t, err)

	now := time.Now().UTC()
	u := domain.User{
		ID:            idx.New().String(),
		Email:         domain.NormalizeEmail(email),
		Name:          name,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(e.t, e.store.Users().CreateUser(e.ctx, u))
	return u
}

// signedIn returns a client holding a session for email.
func (e *testEnv) signedIn(email string) *apiClient {
	e.t.Helper()

	c := e.client()
	status, resp := c.do(http.MethodPost, "/v1/auth/sign-in", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(e.t, http.StatusOK, status, resp.Error)
	return c
}

// admin seeds a super admin and signs it in.
func (e *testEnv) admin() *apiClient {
	e.t.Helper()

	e.seedUser("root@godview.test", "Root", domain.RoleSuperAdmin)
	return e.signedIn("root@godview.test")
}

type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func (e *testEnv) client() *apiClient {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	return &apiClient{t: e.t, base: e.srv.URL, http: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

// apiResponse decodes both envelopes.
type apiResponse struct {
	Success bool              `json:"success"`
	Valid   *bool             `json:"valid"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func (c *apiClient) do(method, path string, body any) (int, apiResponse) {
	return c.doWithHeaders(method, path, body, nil)
}

func (c *apiClient) doWithHeaders(method, path string, body any, headers map[string]string) (int, apiResponse) {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var out apiResponse
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
