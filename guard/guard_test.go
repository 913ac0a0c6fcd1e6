package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/evangelism-tracker/guard"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		path          string
		hasCredential bool
		want          string
	}{
		{"/dashboard", false, guard.RouteLogin},
		{"/dashboard/reports/42", false, guard.RouteLogin},
		{"/dashboard", true, ""},
		{"/dashboardish", false, ""},
		{"/login", true, guard.RouteDashboard},
		{"/register", true, guard.RouteDashboard},
		{"/login", false, ""},
		{"/register", false, ""},
		{"/reset-password", true, ""},
		{"/", false, ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, guard.Decide(tt.path, tt.hasCredential), "%s credential=%v", tt.path, tt.hasCredential)
	}
}

func TestCredential(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	require.Empty(t, guard.Credential(r))

	r.Header.Set("Authorization", "Bearer T1")
	require.Equal(t, "T1", guard.Credential(r))

	r.AddCookie(&http.Cookie{Name: "accessToken", Value: "C1"})
	require.Equal(t, "C1", guard.Credential(r), "cookie wins over header")

	r = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	require.Empty(t, guard.Credential(r))
}

func TestMiddleware(t *testing.T) {
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous dashboard goes to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/people", nil))
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("signed in login goes to dashboard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "anything"})
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("signed in dashboard passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer not-even-a-jwt")
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
