package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/store/drivers/redis"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis runs a throwaway Redis container and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	client, err := redis.Connect(ctx, startRedis(t))
	require.NoError(t, err)

	rev := redis.NewRevocations(client)
	t.Cleanup(func() { _ = rev.Close() })
	require.NoError(t, rev.Ping(ctx))

	revoked, err := rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, rev.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	ttl, err := client.TTL(ctx, redis.KeyPrefix+"jti-1").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 59*time.Minute)

	t.Run("expired tokens are not stored", func(t *testing.T) {
		require.NoError(t, rev.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))
		revoked, err := rev.IsRevoked(ctx, "jti-old")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("empty id", func(t *testing.T) {
		require.Error(t, rev.Revoke(ctx, "", time.Now().Add(time.Hour)))
		revoked, err := rev.IsRevoked(ctx, "")
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := redis.Connect(context.Background(), "redis://:::bad")
	require.Error(t, err)
}
