package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/portal/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

var (
	// LoginLimit guards credential endpoints against brute forcing.
	// Override with RATELIMIT_LOGIN_REQUESTS, RATELIMIT_LOGIN_WINDOW_SEC, RATELIMIT_LOGIN_BURST.
	LoginLimit = RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}

	// AdminLimit applies to authenticated administrative mutations.
	// Override with RATELIMIT_ADMIN_REQUESTS, RATELIMIT_ADMIN_WINDOW_SEC, RATELIMIT_ADMIN_BURST.
	AdminLimit = RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		Burst:             30,
	}
)

// ParseRateLimitFromEnv reads RATELIMIT_{prefix}_{REQUESTS,WINDOW_SEC,BURST}
// over def. Invalid or non-positive values are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	positive := func(name string) (int, bool) {
		v, err := strconv.Atoi(os.Getenv("RATELIMIT_" + prefix + "_" + name))
		return v, err == nil && v > 0
	}

	if n, ok := positive("REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID, email)
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client address resolved by ClientIPMiddleware,
// or the TCP peer when that middleware is not installed. Forwarding headers
// are never read here.
func IPKeyExtractor(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return remoteIP(r)
}

// UserIDKeyExtractor extracts the user ID recorded by WithIdentity.
func UserIDKeyExtractor(r *http.Request) string {
	return UserIDFromContext(r.Context())
}

// CompositeKeyExtractor combines multiple key extractors with a separator,
// skipping the ones that produce nothing.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// maxPeekBody bounds how much of a JSON body a key extractor will buffer.
const maxPeekBody = 64 << 10

// FieldKeyExtractor extracts a key from a request field. Form and query
// values are read through ParseForm; JSON bodies are buffered and restored
// so the handler can still decode them. Values are lower-cased so that
// "Alice@x" and "alice@x" share a bucket.
func FieldKeyExtractor(fieldName string) KeyExtractor {
	return func(r *http.Request) string {
		if isJSON(r) && r.Body != nil {
			raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(raw))
			if err != nil {
				return ""
			}
			var fields map[string]any
			if json.Unmarshal(raw, &fields) != nil {
				return ""
			}
			s, _ := fields[fieldName].(string)
			return strings.ToLower(strings.TrimSpace(s))
		}

		if err := r.ParseForm(); err == nil {
			return strings.ToLower(strings.TrimSpace(r.FormValue(fieldName)))
		}
		return ""
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// limiterSet hands out one token bucket per key.
type limiterSet struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (ls *limiterSet) get(key string) *rate.Limiter {
	if l, ok := ls.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := ls.limiters.LoadOrStore(key, rate.NewLimiter(ls.rate, ls.burst))
	ls.sweep()
	return actual.(*rate.Limiter)
}

// sweep drops limiters whose bucket is full again, at most every 5 minutes.
func (ls *limiterSet) sweep() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if time.Since(ls.lastCleanup) < 5*time.Minute {
		return
	}
	ls.lastCleanup = time.Now()

	ls.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(ls.burst) {
			ls.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware creates a rate limiting middleware with the given configuration.
// The keyExtractor determines how requests are grouped for rate limiting.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	ls := &limiterSet{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			limiter := ls.get(key)
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			reservation := limiter.Reserve()
			retryAfter := max(int(reservation.Delay().Seconds()), 1)
			reservation.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", config.Window.String())

			log.Warn("rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": fmt.Sprintf("Too many requests. Please try again in %d seconds.", retryAfter),
			})
		})
	}
}

// RateLimitByIP creates a rate limiter that limits by IP address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByUser limits by resolved user ID, falling back to IP.
func RateLimitByUser(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		UserIDKeyExtractor,
		IPKeyExtractor,
	))
}

// RateLimitByIPAndField limits by IP + a request field. Login uses it with
// the email field.
func RateLimitByIPAndField(config RateLimitConfig, fieldName string) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		IPKeyExtractor,
		FieldKeyExtractor(fieldName),
	))
}
