package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/guard"
	portalhttp "github.com/aussiebroadwan/portal/internal/portal/http"
	"github.com/aussiebroadwan/portal/internal/portal/obs"
	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/internal/portal/store/drivers/sqlite"
	"github.com/aussiebroadwan/portal/pkg/authsdk"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/edgejwt"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/jwtx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

const cookieName = "portal_session"

var testSecret = tokenx.MustParseSecret("router-test-secret-0123456789abcdef")

type testServer struct {
	URL       string
	store     *sqlite.Store
	accounts  *service.AccountService
	directors *service.DirectorService
	metrics   *obs.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec(testSecret)
	require.NoError(t, err)

	hasher := cryptox.NewHasher("router-pepper")
	metrics := obs.New()
	cookie := httpx.CookieConfig{Name: cookieName, Path: "/", SameSite: http.SameSiteLaxMode, MaxAge: tokenx.TTL}
	resolver := session.NewResolver(st.Principals(), codec, nil)
	edge, err := edgejwt.New(testSecret, nil)
	require.NoError(t, err)
	g := guard.New(guard.DefaultPolicy(), edge, cookie, guard.WithDecisionCounter(metrics.GuardDecisions))

	router := portalhttp.NewRouter("test", st, resolver, g, metrics, cookie, slogx.Discard())
	router.LoginLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	router.AdminLimit = router.LoginLimit
	router.AuthService = &service.AuthService{Store: st, Hasher: hasher, Codec: codec, ObserveLogin: metrics.ObserveLogin}
	router.DirectorService = &service.DirectorService{Store: st, Hasher: hasher}
	router.DivisionService = &service.DivisionService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:       srv.URL,
		store:     st,
		accounts:  &service.AccountService{Store: st, Hasher: hasher},
		directors: router.DirectorService,
		metrics:   metrics,
	}
}

func (s *testServer) account(t *testing.T, email string, role domain.Role) (domain.Principal, string) {
	t.Helper()
	p, password, err := s.accounts.CreateAccount(context.Background(), service.NewAccount{
		Email: email, Name: "Test " + role.String(), Role: role,
	})
	require.NoError(t, err)
	return p, password
}

func getPage(t *testing.T, c *authsdk.SDKClient, path string) *http.Response {
	t.Helper()
	resp, err := c.GetPage(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Deactivated account with the right password: AccountDeactivated, no cookie.
func TestScenarioDeactivatedLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	p, password := s.account(t, "retired@institute.edu", domain.RoleDirector)
	_, err := s.directors.SetActive(ctx, p.ID, false)
	require.NoError(t, err)

	client := authsdk.NewSDKClient(s.URL)
	_, err = client.Login(ctx, "retired@institute.edu", password)
	require.ErrorIs(t, err, authsdk.ErrAccountDeactivated)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Empty(t, client.SessionCookie(cookieName))
}

// Director login sets the cookie; the cookie opens /director/* and is sent
// to /unauthorized from /admin/*.
func TestScenarioDirectorLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	p, password := s.account(t, "head@institute.edu", domain.RoleDirector)

	client := authsdk.NewSDKClient(s.URL)
	login, err := client.Login(ctx, "Head@Institute.edu", password)
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	require.Equal(t, p.ID, login.User.ID)
	require.Equal(t, "director", login.User.Role)
	require.Equal(t, "/director/dashboard", login.RedirectTo)
	require.Equal(t, login.Token, client.SessionCookie(cookieName))

	resp := getPage(t, client, "/director/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getPage(t, client, "/admin/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/unauthorized", resp.Header.Get("Location"))

	me, err := client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, p.ID, me.ID)
}

// No cookie and a garbage cookie both land on /login; the garbage is cleared.
func TestScenarioMissingAndInvalidCookie(t *testing.T) {
	s := newTestServer(t)
	client := authsdk.NewSDKClient(s.URL)

	resp := getPage(t, client, "/director/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?next=%2Fdirector%2Fdashboard", resp.Header.Get("Location"))

	client.SetSessionCookie(cookieName, "this-is-not-a-jwt")
	resp = getPage(t, client, "/director/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login"))

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "invalid session cookie must be cleared")
	require.Empty(t, cleared.Value)
	require.Equal(t, -1, cleared.MaxAge)
	require.Empty(t, client.SessionCookie(cookieName))
}

func TestLoginErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	_, password := s.account(t, "auditor@institute.edu", domain.RoleInternalAuditor)
	client := authsdk.NewSDKClient(s.URL)

	_, err := client.Login(ctx, "auditor@institute.edu", "wrong")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, err = client.Login(ctx, "nobody@institute.edu", password)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, err = client.Login(ctx, "", "")
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	require.Empty(t, client.SessionCookie(cookieName))
}

// The login audit records the TCP peer; a client-supplied X-Forwarded-For is
// ignored unless the peer is a trusted proxy.
func TestLoginAuditIgnoresForwardedFor(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/auth/login",
		strings.NewReader(`{"email":"ghost@institute.edu","password":"nope"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.77")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	events, err := s.store.LoginEvents().ListRecentLoginEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "127.0.0.1", events[0].RemoteAddr)
}

func TestLoginForm(t *testing.T) {
	s := newTestServer(t)
	_, password := s.account(t, "boss@institute.edu", domain.RoleAdmin)
	client := authsdk.NewSDKClient(s.URL)

	post := func(form string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, s.URL+"/api/auth/login", strings.NewReader(form))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "text/html")
		resp, err := client.HTTPClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := post("email=boss%40institute.edu&password=nope")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?error=invalid_credentials", resp.Header.Get("Location"))

	resp = post("email=boss%40institute.edu&password=" + password + "&next=%2Fadmin%2Fdirectors")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/directors", resp.Header.Get("Location"))
	require.NotEmpty(t, client.SessionCookie(cookieName))

	resp = post("email=boss%40institute.edu&password=" + password + "&next=https%3A%2F%2Fevil.example")
	require.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	_, password := s.account(t, "head@institute.edu", domain.RoleDirector)
	client := authsdk.NewSDKClient(s.URL)

	_, err := client.Login(ctx, "head@institute.edu", password)
	require.NoError(t, err)
	client.SetSessionCookie("legacy_auth_token", "stale")
	client.SetSessionCookie("theme", "dark")

	out, err := client.Logout(ctx)
	require.NoError(t, err)
	require.True(t, out.Success)
	require.ElementsMatch(t, []string{cookieName, "legacy_auth_token"}, out.Cleared)
	require.Empty(t, client.SessionCookie(cookieName))
	require.Equal(t, "dark", client.SessionCookie("theme"))

	_, err = client.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)

	// Logging out twice is fine.
	_, err = client.Logout(ctx)
	require.NoError(t, err)
}

func TestDeactivationIsLiveOverHTTP(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	p, password := s.account(t, "head@institute.edu", domain.RoleDirector)
	client := authsdk.NewSDKClient(s.URL)

	_, err := client.Login(ctx, "head@institute.edu", password)
	require.NoError(t, err)

	_, err = s.directors.SetActive(ctx, p.ID, false)
	require.NoError(t, err)

	_, err = client.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)

	// The guard still lets the token through; the page re-resolves.
	resp := getPage(t, client, "/director/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login"))
}

func TestAdminAPI(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	_, adminPassword := s.account(t, "root@institute.edu", domain.RoleAdmin)
	client := authsdk.NewSDKClient(s.URL)

	login, err := client.Login(ctx, "root@institute.edu", adminPassword)
	require.NoError(t, err)
	admin := client.NewSession(login.Token)

	maths, err := admin.CreateDivision(ctx, "Mathematics")
	require.NoError(t, err)
	_, err = admin.CreateDivision(ctx, "Mathematics")
	require.ErrorIs(t, err, authsdk.ErrConflict)

	created, err := admin.CreateDirector(ctx, authsdk.CreateDirectorRequest{
		Email: "head@institute.edu", Name: "Head", DivisionIDs: []string{maths.ID},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Password)
	require.Equal(t, []string{maths.ID}, created.Director.DivisionIDs)

	_, err = admin.CreateDirector(ctx, authsdk.CreateDirectorRequest{Email: "bad", Name: "x"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	directors, err := admin.ListDirectors(ctx)
	require.NoError(t, err)
	require.Len(t, directors, 1)

	// The new director can log in with the one-time password and see their
	// divisions, but not the admin API.
	dirClient := authsdk.NewSDKClient(s.URL)
	dirLogin, err := dirClient.Login(ctx, "head@institute.edu", created.Password)
	require.NoError(t, err)
	director := dirClient.NewSession(dirLogin.Token)

	mine, err := director.MyDivisions(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Mathematics", mine[0].Name)

	_, err = director.ListDirectors(ctx)
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	_, err = admin.MyDivisions(ctx)
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	_, err = admin.AssignDivisions(ctx, created.Director.ID, []string{"01J0000000000000000000000"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	_, err = admin.SetDirectorActive(ctx, "01J0000000000000000000000", false)
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	updated, err := admin.SetDirectorActive(ctx, created.Director.ID, false)
	require.NoError(t, err)
	require.False(t, updated.IsActive)

	_, err = director.MyDivisions(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)

	anonymous := authsdk.NewSDKClient(s.URL).NewSession("")
	_, err = anonymous.ListDivisions(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
}

func TestSystemEndpoints(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	client := authsdk.NewSDKClient(s.URL)

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])

	resp := getPage(t, client, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getPage(t, client, "/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = getPage(t, client, "/swagger/index.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
