package obs_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/portal/internal/portal/obs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrument(t *testing.T) {
	m := obs.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	h := m.Instrument(mux)

	for _, p := range []string{"/things/1", "/things/2", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	m.ObserveLogin("success")
	m.ObserveLogin("invalid_credentials")
	m.ObserveLogin("invalid_credentials")
	require.Equal(t, float64(2), testutil.ToFloat64(m.LoginAttempts.WithLabelValues("invalid_credentials")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	require.Contains(t, text, `portal_http_requests_total{method="GET",route="GET /things/{id}",status="201"} 2`)
	require.Contains(t, text, `portal_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	require.Contains(t, text, `portal_login_attempts_total{outcome="success"} 1`)
	require.Contains(t, text, "go_goroutines")
}
