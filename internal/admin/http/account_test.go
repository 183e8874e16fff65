package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	e := newTestEnv(t)
	c := e.client()

	body := map[string]string{"email": "first@godview.test", "name": "First", "password": testPassword}

	status, resp := c.do(http.MethodPost, "/v1/bootstrap", body)
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, resp.Success)
	require.Equal(t, "unauthorized", resp.Error)

	status, resp = c.doWithHeaders(http.MethodPost, "/v1/bootstrap", body, map[string]string{BootstrapTokenHeader: "nope"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid bootstrap token", resp.Message)

	status, resp = c.doWithHeaders(http.MethodPost, "/v1/bootstrap", body, map[string]string{BootstrapTokenHeader: testBootstrapToken})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, resp.Success)
	user := decodeData[adminsdk.User](t, resp)
	require.Equal(t, "first@godview.test", user.Email)
	require.Equal(t, string(domain.RoleSuperAdmin), user.Role)

	status, resp = c.doWithHeaders(http.MethodPost, "/v1/bootstrap", body, map[string]string{BootstrapTokenHeader: testBootstrapToken})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "System has already been bootstrapped", resp.Message)
}

func TestBootstrapDisabled(t *testing.T) {
	e := newTestEnv(t)
	e.router.AccountService.BootstrapToken = ""

	status, resp := e.client().doWithHeaders(http.MethodPost, "/v1/bootstrap",
		map[string]string{"email": "a@godview.test", "name": "A", "password": testPassword},
		map[string]string{BootstrapTokenHeader: testBootstrapToken})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", resp.Error)
}

func TestSignInSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("root@godview.test", "Root", domain.RoleSuperAdmin)
	c := e.client()

	// Unknown email and wrong password look the same
	status, unknown := c.do(http.MethodPost, "/v1/auth/sign-in", map[string]string{"email": "ghost@godview.test", "password": testPassword})
	require.Equal(t, http.StatusUnauthorized, status)
	status, wrong := c.do(http.MethodPost, "/v1/auth/sign-in", map[string]string{"email": "root@godview.test", "password": "not it"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, unknown.Error, wrong.Error)
	require.Equal(t, unknown.Message, wrong.Message)

	status, resp := c.do(http.MethodPost, "/v1/auth/sign-in", map[string]string{"email": "ROOT@godview.test", "password": testPassword})
	require.Equal(t, http.StatusOK, status)
	session := decodeData[adminsdk.SessionResponse](t, resp)
	require.Equal(t, "root@godview.test", session.User.Email)
	require.False(t, session.ExpiresAt.IsZero())

	status, resp = c.do(http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Root", decodeData[adminsdk.User](t, resp).Name)

	status, _ = c.do(http.MethodPost, "/v1/auth/sign-out", nil)
	require.Equal(t, http.StatusOK, status)

	// The jar dropped the cookie; a fresh request is rejected at the edge
	status, resp = c.do(http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthenticated", resp.Error)
}

func TestRevokedSessionCookieRejected(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("root@godview.test", "Root", domain.RoleSuperAdmin)
	c := e.signedIn("root@godview.test")

	// Replay the cookie after sign-out
	cookies := c.http.Jar.Cookies(mustParseURL(t, e.srv.URL))
	require.NotEmpty(t, cookies)

	status, _ := c.do(http.MethodPost, "/v1/auth/sign-out", nil)
	require.Equal(t, http.StatusOK, status)

	replay := e.client()
	replay.http.Jar.SetCookies(mustParseURL(t, e.srv.URL), cookies)
	status, resp := replay.do(http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthenticated", resp.Error)
}

func TestForgedCookieRejected(t *testing.T) {
	e := newTestEnv(t)
	c := e.client()
	c.http.Jar.SetCookies(mustParseURL(t, e.srv.URL), []*http.Cookie{{Name: "godview.session_token", Value: "not.a.jwt"}})

	status, resp := c.do(http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthenticated", resp.Error)
}

func TestSuperAdminRoutesRejectOtherRoles(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("pm@godview.test", "Pat", domain.RolePM)
	c := e.signedIn("pm@godview.test")

	for _, path := range []string{"/v1/organizations", "/v1/stats", "/v1/audit-logs", "/v1/feature-flags", "/v1/admin-invites"} {
		status, resp := c.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusForbidden, status, path)
		require.Equal(t, "forbidden", resp.Error, path)
	}

	// Session-only routes stay open to them
	status, _ := c.do(http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
}

func TestSuspendedUserCannotSignIn(t *testing.T) {
	e := newTestEnv(t)
	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, e.store.Users().CreateUser(e.ctx, domain.User{
		ID:           idx.New().String(),
		Email:        "gone@godview.test",
		Name:         "Gone",
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		IsSuspended:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	status, resp := e.client().do(http.MethodPost, "/v1/auth/sign-in", map[string]string{
		"email":    "gone@godview.test",
		"password": testPassword,
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "suspended", resp.Error)
}

func TestSessionCookieAttributes(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("root@godview.test", "Root", domain.RoleSuperAdmin)

	res, err := http.Post(e.srv.URL+"/v1/auth/sign-in", "application/json",
		strings.NewReader(`{"email":"root@godview.test","password":"`+testPassword+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var cookie *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == "godview.session_token" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, "no-store", res.Header.Get("Cache-Control"))
}

func TestMalformedBody(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()

	status, resp := c.do(http.MethodPost, "/v1/organizations", map[string]any{"name": "Acme", "unknown": true})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_request", resp.Error)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	c := e.client()

	status, _ := c.do(http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, status)

	res, err := http.Get(e.srv.URL + "/readyz")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}
