// Package session keeps one consent session per site visitor.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"sitekit/internal/consent/metrics"
	"sitekit/internal/consent/models"
	"sitekit/internal/consent/service"
	"sitekit/internal/consent/store"
	"sitekit/internal/scripts"
	platformsync "sitekit/pkg/platform/sync"
)

// Session bundles a visitor's consent service and script gate.
type Session struct {
	VisitorID string
	Service   *service.Service
	Gate      *scripts.Gate
	// Ephemeral sessions have no storage: they never mount, never show the
	// banner and never load scripts.
	Ephemeral bool

	initOnce sync.Once
	unbind   func()
}

// Config controls session construction.
type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Debug           bool
	StorageKey      string
	Scripts         scripts.Config
	// HydrateTimeout bounds the first storage read of a session.
	HydrateTimeout time.Duration
}

// Registry caches sessions by visitor id. Sessions that sit idle for TTL
// are evicted; the next request rebuilds them from storage.
type Registry struct {
	locks   *platformsync.ShardedMutex
	cache   *cache.Cache
	storage store.Store
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor service.AuditPublisher
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithAuditor(a service.AuditPublisher) Option {
	return func(r *Registry) {
		r.auditor = a
	}
}

// NewRegistry builds a registry over shared storage. A nil storage makes
// every session ephemeral.
func NewRegistry(storage store.Store, cfg Config, opts ...Option) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.HydrateTimeout <= 0 {
		cfg.HydrateTimeout = 5 * time.Second
	}
	r := &Registry{
		locks:   platformsync.NewShardedMutex(),
		cache:   cache.New(cfg.TTL, cfg.CleanupInterval),
		storage: storage,
		cfg:     cfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache.OnEvicted(func(_ string, v any) {
		if sess, ok := v.(*Session); ok {
			sess.release()
		}
		r.reportSize()
	})
	return r
}

// Acquire returns the visitor's session, creating and initializing it on
// first use. Initialize runs exactly once per cached session. Bots get a
// fresh ephemeral session that is never cached.
func (r *Registry) Acquire(ctx context.Context, visitorID string, bot bool) *Session {
	if bot || r.storage == nil || visitorID == "" {
		return r.ephemeral(ctx, visitorID)
	}

	r.locks.Lock(visitorID)
	sess, ok := r.lookup(visitorID)
	if !ok {
		sess = r.build(visitorID, store.Scoped(r.storage, visitorID))
	}
	// Sliding expiration: an active visitor keeps their session.
	r.cache.SetDefault(visitorID, sess)
	r.locks.Unlock(visitorID)
	if !ok {
		r.reportSize()
	}

	r.initialize(ctx, sess)
	return sess
}

func (r *Registry) ephemeral(ctx context.Context, visitorID string) *Session {
	sess := r.build(visitorID, nil)
	sess.Ephemeral = true
	r.initialize(ctx, sess)
	return sess
}

// initialize hydrates a new session once. The read outlives the triggering
// request: the result is cached for every later request, so one caller
// hanging up must not pin the visitor to defaults.
func (r *Registry) initialize(ctx context.Context, sess *Session) {
	sess.initOnce.Do(func() {
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.HydrateTimeout)
		defer cancel()
		sess.Service.Initialize(hctx)
		sess.unbind = sess.Gate.Bind(sess.Service)
	})
}

func (r *Registry) build(visitorID string, storage service.Store) *Session {
	opts := []service.Option{
		service.WithSubject(visitorID),
		service.WithDebug(r.cfg.Debug),
		service.WithLogger(r.logger),
		service.WithStorageKey(r.cfg.StorageKey),
	}
	if r.metrics != nil {
		opts = append(opts, service.WithMetrics(r.metrics))
	}
	if r.auditor != nil {
		opts = append(opts, service.WithAuditor(r.auditor))
	}
	svc := service.New(storage, opts...)

	var gateOpts []scripts.Option
	if r.metrics != nil {
		gateOpts = append(gateOpts, scripts.WithMountHook(func(s scripts.Script) {
			r.metrics.IncrementScriptMounted(string(s.ID))
		}))
	}
	return &Session{
		VisitorID: visitorID,
		Service:   svc,
		Gate:      scripts.NewGate(svc, r.cfg.Scripts, gateOpts...),
	}
}

func (r *Registry) lookup(visitorID string) (*Session, bool) {
	v, ok := r.cache.Get(visitorID)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}

// Peek returns a cached session without creating one.
func (r *Registry) Peek(visitorID string) (*Session, bool) {
	return r.lookup(visitorID)
}

// Len reports the number of cached sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Flush drops every cached session.
func (r *Registry) Flush() {
	for visitorID := range r.cache.Items() {
		r.cache.Delete(visitorID)
	}
}

// release detaches the gate. Waiting on initOnce orders the read of unbind
// after initialization.
func (s *Session) release() {
	s.initOnce.Do(func() {})
	if s.unbind != nil {
		s.unbind()
	}
}

// Snapshot is a convenience for handlers that only need the state.
func (s *Session) Snapshot() models.Snapshot {
	return s.Service.Snapshot()
}

func (r *Registry) reportSize() {
	if r.metrics != nil {
		r.metrics.SetActiveSessions(r.cache.ItemCount())
	}
}
