//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sitekit/internal/consent/models"
	"sitekit/internal/consent/store"
	"sitekit/pkg/testutil"
	"sitekit/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "consent_storage"))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	scoped := store.Scoped(s.store, testutil.NewVisitorID())

	_, err := scoped.Get(ctx, models.StorageKey)
	s.ErrorIs(err, store.ErrNotFound)

	record := testutil.RecordJSON(testutil.NewStateBuilder().With(models.CategoryAnalytics).Build())
	s.Require().NoError(scoped.Set(ctx, models.StorageKey, record))

	got, err := scoped.Get(ctx, models.StorageKey)
	s.Require().NoError(err)
	s.JSONEq(record, got)
}

// Concurrent writers to one visitor key leave exactly one row and one of
// the written values (last write wins).
func (s *PostgresStoreSuite) TestConcurrentUpsert() {
	ctx := context.Background()
	key := testutil.NewVisitorID() + ":" + models.StorageKey

	result := testutil.RunConcurrent(20, func(idx int) error {
		return s.store.Set(ctx, key, fmt.Sprintf("value-%d", idx))
	})
	s.Equal(int32(20), result.Successes)

	var rows int
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consent_storage WHERE storage_key = $1`, key).Scan(&rows))
	s.Equal(1, rows)
}

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTripWithPrefix() {
	ctx := context.Background()
	st := store.NewRedis(s.redis.Client, store.WithRedisPrefix("test:"))

	_, err := st.Get(ctx, "k")
	s.ErrorIs(err, store.ErrNotFound)

	s.Require().NoError(st.Set(ctx, "k", "v"))
	got, err := st.Get(ctx, "k")
	s.Require().NoError(err)
	s.Equal("v", got)

	raw, err := s.redis.Client.Get(ctx, "test:k").Result()
	s.Require().NoError(err)
	s.Equal("v", raw)
}

func (s *RedisStoreSuite) TestTTLApplied() {
	ctx := context.Background()
	st := store.NewRedis(s.redis.Client, store.WithRedisTTL(time.Hour))
	s.Require().NoError(st.Set(ctx, "k", "v"))

	ttl, err := s.redis.Client.TTL(ctx, "sitekit:k").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
}
