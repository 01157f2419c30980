package httpx_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	trusted, err := httpx.ParseTrustedProxies("10.0.0.0/8, 127.0.0.1")
	require.NoError(t, err)

	tests := []struct {
		name    string
		trusted httpx.TrustedProxies
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.168.1.1:12345", nil, "192.168.1.1"},
		{"forwarded for ignored without trusted proxies", nil, "192.168.1.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "192.168.1.1"},
		{"real ip ignored without trusted proxies", nil, "192.168.1.1:12345", map[string]string{"X-Real-IP": "203.0.113.2"}, "192.168.1.1"},
		{"untrusted peer cannot spoof", trusted, "192.168.1.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "192.168.1.1"},
		{"trusted peer forwards", trusted, "10.1.2.3:443", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"rightmost untrusted hop wins", trusted, "10.1.2.3:443", map[string]string{"X-Forwarded-For": "198.51.100.7, 203.0.113.1, 10.9.9.9"}, "203.0.113.1"},
		{"all hops trusted", trusted, "127.0.0.1:443", map[string]string{"X-Forwarded-For": "10.0.0.5, 10.0.0.6"}, "10.0.0.5"},
		{"garbage hop falls back to peer", trusted, "10.1.2.3:443", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.1.2.3"},
		{"trusted peer real ip", trusted, "127.0.0.1:443", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			var got string
			h := httpx.ClientIPMiddleware(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = httpx.IPKeyExtractor(r)
			}))
			h.ServeHTTP(httptest.NewRecorder(), req)

			require.Equal(t, tt.want, got)
		})
	}

	t.Run("without middleware", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies("")
	require.NoError(t, err)
	require.Empty(t, proxies)

	proxies, err = httpx.ParseTrustedProxies(" 10.0.0.0/8 ,::1, 192.168.0.1 ")
	require.NoError(t, err)
	require.Len(t, proxies, 3)

	_, err = httpx.ParseTrustedProxies("10.0.0.0/99")
	require.Error(t, err)
	_, err = httpx.ParseTrustedProxies("proxy.internal")
	require.Error(t, err)
}

// Rotating X-Forwarded-For from an untrusted peer does not earn fresh login
// buckets.
func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.Chain(okHandler(),
		httpx.ClientIPMiddleware(nil),
		httpx.RateLimitByIPAndField(config, "email"),
	)

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodGet, "/?email=alice", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestFieldKeyExtractor(t *testing.T) {
	extract := httpx.FieldKeyExtractor("email")

	t.Run("form body", func(t *testing.T) {
		form := url.Values{"email": {"Bob@Example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		require.Equal(t, "bob@example.com", extract(req))
	})

	t.Run("json body is restored", func(t *testing.T) {
		body := `{"email":"alice@example.com","password":"pw"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		require.Equal(t, "alice@example.com", extract(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	t.Run("missing field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Equal(t, "", extract(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.FieldKeyExtractor("email"),
	)

	req := httptest.NewRequest(http.MethodGet, "/?email=alice", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1:alice", extractor(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", extractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler())

		for i := range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

		// A different client is unaffected.
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(config, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIPAndField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.RateLimitByIPAndField(config, "email")(okHandler())

	do := func(email string) int {
		req := httptest.NewRequest(http.MethodGet, "/?email="+email, nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("alice"))
	require.Equal(t, http.StatusOK, do("ALICE"))
	require.Equal(t, http.StatusTooManyRequests, do("alice"))
	require.Equal(t, http.StatusOK, do("bob"))
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_LOGIN_REQUESTS", "50")
	t.Setenv("RATELIMIT_LOGIN_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_LOGIN_BURST", "-1")

	cfg := httpx.ParseRateLimitFromEnv("LOGIN", httpx.LoginLimit)
	require.Equal(t, 50, cfg.RequestsPerWindow)
	require.Equal(t, 10*time.Second, cfg.Window)
	require.Equal(t, httpx.LoginLimit.Burst, cfg.Burst)
}
