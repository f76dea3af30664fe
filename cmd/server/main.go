package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"sitekit/internal/audit"
	consentHandler "sitekit/internal/consent/handler"
	"sitekit/internal/consent/metrics"
	"sitekit/internal/consent/session"
	"sitekit/internal/forms"
	"sitekit/internal/legal"
	"sitekit/internal/platform/config"
	"sitekit/internal/platform/health"
	"sitekit/internal/platform/logger"
	httptransport "sitekit/internal/transport/http"
	"sitekit/pkg/platform/middleware/metadata"
	"sitekit/pkg/platform/middleware/request"
)

const poolStatsInterval = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Consent logic lives in internal/consent.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing sitekit",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"storage_backend", cfg.Storage.Backend,
		"consent_debug", cfg.Consent.Debug,
	)

	if cfg.Visitor.EphemeralKey {
		log.Warn("no visitor signing key configured; using a random key, visitor ids reset on restart")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	consentMetrics := metrics.New(reg)

	storage, err := openBackend(ctx, cfg, log, reg, consentMetrics)
	if err != nil {
		return fmt.Errorf("consent storage: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Warn("closing consent storage", "error", err)
		}
	}()

	auditor := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(cfg.Consent.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	sessions := session.NewRegistry(storage.store, session.Config{
		TTL:             cfg.Consent.SessionTTL,
		CleanupInterval: cfg.Consent.CleanupInterval,
		Debug:           cfg.Consent.Debug,
		StorageKey:      cfg.Consent.StorageKey,
		Scripts:         cfg.Scripts,
	},
		session.WithLogger(log),
		session.WithMetrics(consentMetrics),
		session.WithAuditor(auditor),
	)

	legalProvider, err := legal.NewProvider(cfg.LegalConfigPath, log)
	if err != nil {
		return fmt.Errorf("legal config: %w", err)
	}
	defer legalProvider.Close() //nolint:errcheck // watcher shutdown

	healthHandler := health.New(cfg.Environment)
	for name, check := range storage.checks {
		healthHandler.RegisterCheck(name, check)
	}

	proxies, err := cfg.ProxyPrefixes()
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Consent: consentHandler.New(sessions, log, cfg.Consent.PolicyURL),
		Legal:   legal.NewHandler(legalProvider),
		Forms:   forms.NewHandler(log),
		Health:  healthHandler,
		Tokens:  session.NewTokenService(cfg.Visitor.SigningKey, cfg.Visitor.Issuer, cfg.Visitor.TTL),
		Cookie: session.CookieConfig{
			Secure: cfg.Visitor.CookieSecure,
			Domain: cfg.Visitor.CookieDomain,
		},
		Metadata: &metadata.Config{TrustedProxies: proxies},
		Timeout:  cfg.RequestTimeout,
		Metrics:  request.NewMetrics(reg),
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	if storage.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					storage.redis.RecordPoolStats()
				}
			}
		})
	}

	return g.Wait()
}
