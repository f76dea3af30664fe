package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"sitekit/internal/consent/metrics"
	"sitekit/internal/consent/store"
	"sitekit/internal/platform/config"
	"sitekit/internal/platform/database"
	"sitekit/internal/platform/health"
	"sitekit/internal/platform/redis"
	"sitekit/pkg/platform/circuit"
	"sitekit/pkg/platform/tracer"
)

// backend is the consent storage selected by configuration, plus what main
// must register and release for it.
type backend struct {
	store   store.Store
	checks  map[string]health.CheckFunc
	closers []io.Closer
	// redis is set when the redis backend is active so pool stats can be
	// recorded.
	redis *redis.Client
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}
	return errors.Join(errs...)
}

// openBackend builds the raw store for cfg.Storage.Backend and wraps it with
// tracing, the circuit breaker and the optional namespace. The "none"
// backend returns a nil store, which makes every visitor session ephemeral.
func openBackend(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer, m *metrics.Metrics) (*backend, error) {
	b := &backend{checks: make(map[string]health.CheckFunc)}

	var raw store.Store
	switch cfg.Storage.Backend {
	case config.BackendNone:
		logger.Warn("consent storage disabled; every visitor gets an ephemeral session")
		return b, nil
	case config.BackendMemory:
		mem := store.NewInMemory()
		b.checks["consent_storage"] = mem.Health
		raw = mem
	case config.BackendSQLite:
		sq, err := store.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.closers = append(b.closers, sq)
		b.checks["consent_storage"] = sq.Health
		raw = sq
	case config.BackendPostgres:
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool)
		if err := pool.Migrate(ctx); err != nil {
			b.Close() //nolint:errcheck // best-effort cleanup on init failure
			return nil, err
		}
		b.checks["database"] = pool.Health
		raw = store.NewPostgres(pool.DB())
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis, reg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client)
		b.checks["redis"] = client.Health
		b.redis = client
		raw = store.NewRedis(client.Client, store.WithRedisTTL(cfg.Storage.RecordTTL))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var s store.Store = raw
	if cfg.Storage.Tracing {
		s = store.NewTraced(s, tracer.NewOTel(), cfg.Storage.Backend)
	}

	breaker := circuit.New("consent_storage",
		circuit.WithFailureThreshold(cfg.Storage.BreakerThreshold),
		circuit.WithCooldown(cfg.Storage.BreakerCooldown),
	)
	m.SetBreakerOpen(breaker.Name(), false)
	guarded := store.NewBreaker(s, breaker,
		store.WithBreakerLogger(logger),
		store.WithStateHook(func(name string, state circuit.State) {
			m.SetBreakerOpen(name, state == circuit.StateOpen)
		}),
	)
	b.checks["consent_storage_circuit"] = func(context.Context) error {
		if guarded.State() == circuit.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	}
	s = guarded

	if cfg.Storage.Namespace != "" {
		s = store.Scoped(s, cfg.Storage.Namespace)
	}
	b.store = s
	return b, nil
}
