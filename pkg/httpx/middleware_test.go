package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRequireCookie(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	gated := httpx.RequireCookie("__Secure-app.session", "app.session")(ok)

	t.Run("rejects missing cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), `"error":"unauthenticated"`)
	})

	t.Run("rejects empty cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "app.session", Value: ""})
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	for _, name := range []string{"__Secure-app.session", "app.session"} {
		t.Run("accepts "+name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: name, Value: "opaque"})
			rec := httptest.NewRecorder()
			gated.ServeHTTP(rec, req)

			require.Equal(t, http.StatusNoContent, rec.Code)
		})
	}
}

func TestCookieValuePrefersFirstName(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "b", Value: "second"})
	req.AddCookie(&http.Cookie{Name: "a", Value: "first"})

	v, ok := httpx.CookieValue(req, "a", "b")
	require.True(t, ok)
	require.Equal(t, "first", v)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}

	t.Run("decodes object", func(t *testing.T) {
		var dst body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
		require.NoError(t, httpx.DecodeJSON(req, &dst))
		require.Equal(t, "a@b.co", dst.Email)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		var dst body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"emial":"a@b.co"}`))
		require.Error(t, httpx.DecodeJSON(req, &dst))
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		var dst body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a"}{"email":"b"}`))
		require.Error(t, httpx.DecodeJSON(req, &dst))
	})
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusNotFound, "not_found", "Invitation not found")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"success":false,"error":"not_found","message":"Invitation not found"}`, rec.Body.String())
}
