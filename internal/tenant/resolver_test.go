package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	RootDomain:     "fornet.se",
	AdminSubdomain: "app",
	LandingPath:    "/dashboard",
	LoginPath:      "/login",
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		host    string
		path    string
		query   string
		session bool
		want    Decision
	}{
		{"admin without session", "app.fornet.se", "/dashboard/larkan", "", false, Decision{Action: Redirect, Path: "/login"}},
		{"admin login without session", "app.fornet.se", "/login", "", false, Decision{Action: Pass}},
		{"admin signup without session", "app.fornet.se", "/signup", "", false, Decision{Action: Pass}},
		{"admin root", "app.fornet.se", "/", "", true, Decision{Action: Redirect, Path: "/dashboard"}},
		{"admin bare path", "app.fornet.se", "/larkan", "tab=2", true, Decision{Action: Rewrite, Path: "/dashboard/larkan", RawQuery: "tab=2"}},
		{"admin prefixed path", "app.fornet.se", "/dashboard/larkan", "", true, Decision{Action: Rewrite, Path: "/dashboard/larkan"}},
		{"admin dashboard itself", "app.fornet.se", "/dashboard", "", true, Decision{Action: Rewrite, Path: "/dashboard"}},
		{"admin lookalike prefix", "app.fornet.se", "/dashboards", "", true, Decision{Action: Rewrite, Path: "/dashboard/dashboards"}},
		{"admin with port", "APP.fornet.se:443", "/", "", true, Decision{Action: Redirect, Path: "/dashboard"}},
		{"marketing", "fornet.se", "/priser", "", false, Decision{Action: Pass}},
		{"marketing www", "www.fornet.se", "/", "", false, Decision{Action: Pass}},
		{"tenant", "bjorken.fornet.se", "/boka", "date=2024-05-20", false, Decision{Action: Rewrite, Path: "/sites/bjorken/boka", RawQuery: "date=2024-05-20", Subdomain: "bjorken"}},
		{"tenant root", "Bjorken.fornet.se", "/", "", false, Decision{Action: Rewrite, Path: "/sites/bjorken/", Subdomain: "bjorken"}},
		{"tenant on localhost", "bjorken.localhost:3000", "/kalender", "", false, Decision{Action: Rewrite, Path: "/sites/bjorken/kalender", Subdomain: "bjorken"}},
		{"admin on localhost", "app.localhost:3000", "/", "", false, Decision{Action: Redirect, Path: "/login"}},
		{"marketing on localhost", "localhost:3000", "/", "", false, Decision{Action: Pass}},
		{"api excluded", "bjorken.fornet.se", "/api/sites/bjorken/bookings", "", false, Decision{Action: Pass}},
		{"health excluded", "app.fornet.se", "/health", "", false, Decision{Action: Pass}},
		{"metrics excluded", "bjorken.fornet.se", "/metrics", "", false, Decision{Action: Pass}},
		{"webhooks excluded", "app.fornet.se", "/webhooks/stripe", "", false, Decision{Action: Pass}},
		{"static excluded", "bjorken.fornet.se", "/_static/app.js", "", false, Decision{Action: Pass}},
		{"file extension excluded", "bjorken.fornet.se", "/favicon.ico", "", false, Decision{Action: Pass}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(testConfig, tc.host, tc.path, tc.query, tc.session)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveUsesConfiguredLanding(t *testing.T) {
	cfg := testConfig
	cfg.LandingPath = "/dashboard/oversikt"

	got := Resolve(cfg, "app.fornet.se", "/", "", true)
	assert.Equal(t, Decision{Action: Redirect, Path: "/dashboard/oversikt"}, got)
}

func TestHandler(t *testing.T) {
	var seenPath, seenQuery string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	})
	h := Handler(next, func() Config { return testConfig }, func(r *http.Request) bool {
		_, err := r.Cookie("fornet_session")
		return err == nil
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "http://larkan.fornet.se/boka?resource=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/sites/larkan/boka", seenPath)
	assert.Equal(t, "resource=1", seenQuery)

	req = httptest.NewRequest(http.MethodGet, "http://app.fornet.se/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "http://app.fornet.se/", nil)
	req.AddCookie(&http.Cookie{Name: "fornet_session", Value: "abc"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	seenPath = ""
	req = httptest.NewRequest(http.MethodGet, "http://app.fornet.se/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "/health", seenPath)
}
