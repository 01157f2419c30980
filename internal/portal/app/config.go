package app

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
)

type Config struct {
	SessionSecret tokenx.Secret // Required: HS256 key shared with the edge tier

	DatabaseFile    string // Optional: path to SQLite database file (default: ./portal.db)
	PepperFile      string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	CookieName      string // Optional: session cookie name (default: portal_session)
	CookieDomain    string // Optional: session cookie domain
	RoutePolicyFile string // Optional: YAML route policy, built-in table when empty
	RedisURL        string // Optional: enables the revocation denylist

	TrustedProxies httpx.TrustedProxies // Optional: peers allowed to set X-Forwarded-For

	Env                  string        // Environment (dev, staging, production) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	LoginAuditRetention  time.Duration // Login audit retention (default: 90 days)

	LoginLimit httpx.RateLimitConfig
	AdminLimit httpx.RateLimitConfig
}

// LoadConfig reads the environment once. A missing or short
// PORTAL_SESSION_SECRET is an error; there is no fallback secret.
func LoadConfig() (Config, error) {
	cfg := LoadStorageConfig()

	secret, err := tokenx.ParseSecret(os.Getenv("PORTAL_SESSION_SECRET"))
	if err != nil {
		return Config{}, fmt.Errorf("PORTAL_SESSION_SECRET: %w", err)
	}
	cfg.SessionSecret = secret

	proxies, err := httpx.ParseTrustedProxies(os.Getenv("PORTAL_TRUSTED_PROXIES"))
	if err != nil {
		return Config{}, fmt.Errorf("PORTAL_TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	return cfg, nil
}

// LoadStorageConfig reads everything except the session secret. Offline
// commands that only touch the database use it.
func LoadStorageConfig() Config {
	return Config{
		DatabaseFile:    getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		PepperFile:      getEnvOrDefault("PORTAL_PEPPER_FILE", "pepper"),
		CookieName:      getEnvOrDefault("PORTAL_COOKIE_NAME", "portal_session"),
		CookieDomain:    os.Getenv("PORTAL_COOKIE_DOMAIN"),
		RoutePolicyFile: os.Getenv("PORTAL_ROUTE_POLICY_FILE"),
		RedisURL:        os.Getenv("PORTAL_REDIS_URL"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		LoginAuditRetention:  getEnvDurationOrDefault("LOGIN_AUDIT_RETENTION", 90*24*time.Hour),

		LoginLimit: httpx.ParseRateLimitFromEnv("LOGIN", httpx.LoginLimit),
		AdminLimit: httpx.ParseRateLimitFromEnv("ADMIN", httpx.AdminLimit),
	}
}

func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Cookie describes the session cookie. Production cookies are Secure and
// SameSite=Strict.
func (c Config) Cookie() httpx.CookieConfig {
	cookie := httpx.CookieConfig{
		Name:     c.CookieName,
		Domain:   c.CookieDomain,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   tokenx.TTL,
	}
	if c.Production() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}
	return cookie
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
