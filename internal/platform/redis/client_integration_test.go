//go:build integration

package redis_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitekit/internal/platform/config"
	"sitekit/internal/platform/redis"
	"sitekit/pkg/testutil/containers"
)

func TestClientHealthAndPoolStats(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	client, err := redis.New(ctx, config.RedisConfig{URL: rc.URL, PoolSize: 4}, reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(ctx))
	client.RecordPoolStats()
	client.RecordPoolStats()

	n, err := testutil.GatherAndCount(reg, "sitekit_redis_pool_total_conns")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewWithoutURL(t *testing.T) {
	client, err := redis.New(context.Background(), config.RedisConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := redis.New(context.Background(), config.RedisConfig{URL: "not-a-url"}, nil)
	require.Error(t, err)
}
