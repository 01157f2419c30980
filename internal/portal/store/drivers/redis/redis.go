// Package redis backs store.Revocations with Redis so that logged-out tokens
// stop resolving before their natural expiry.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/store"
	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces denylist entries.
const KeyPrefix = "portal:revoked:"

// Connect initializes a Redis client from URL or host:port input and checks
// that the server answers.
func Connect(ctx context.Context, redisURL string) (*goredis.Client, error) {
	var client *goredis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := goredis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = goredis.NewClient(opt)
	} else {
		client = goredis.NewClient(&goredis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Revocations stores revoked token ids with a TTL equal to the token's
// remaining lifetime.
type Revocations struct {
	client *goredis.Client
	now    func() time.Time
}

var _ store.Revocations = (*Revocations)(nil)

func NewRevocations(client *goredis.Client) *Revocations {
	return &Revocations{client: client, now: time.Now}
}

// Revoke marks jti as revoked until expiresAt. Already-expired tokens need
// no entry.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("redis: empty token id")
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, KeyPrefix+jti, "1", ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, KeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping lets readiness checks include Redis.
func (r *Revocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Revocations) Close() error { return r.client.Close() }
