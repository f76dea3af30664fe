// Package service implements the consent store: the single owner of a
// visitor's consent state, its hydration lifecycle and its persistence.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"sitekit/internal/audit"
	"sitekit/internal/consent/metrics"
	"sitekit/internal/consent/models"
	"sitekit/internal/consent/store"
	"sitekit/pkg/requestcontext"
)

// Store is the client storage the service reads and writes.
// Error Contract:
// - Get returns store.ErrNotFound when no record exists
// - Any other error is treated as "storage unavailable"
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// AuditPublisher receives one event per commit.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// WithStorageKey overrides models.StorageKey.
func WithStorageKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.storageKey = key
		}
	}
}

// WithDebug makes Initialize report hasInteracted=false even when a record
// exists, so the banner shows on every session. State changes are logged.
func WithDebug(debug bool) Option {
	return func(s *Service) {
		s.debug = debug
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithSubject sets the visitor id used in logs and audit events.
func WithSubject(visitorID string) Option {
	return func(s *Service) {
		s.subject = visitorID
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service holds one visitor's consent state.
//
// Lifecycle is two-phase: New builds the service with defaults (UNMOUNTED),
// Initialize reads storage once and mounts it. A nil storage means no client
// storage is available; Initialize is then a no-op and the service stays
// UNMOUNTED, so nothing gated by consent ever activates.
//
// No public operation returns an error. Storage failures are logged,
// counted, and degrade to defaults.
type Service struct {
	mu           sync.Mutex
	storage      Store
	storageKey   string
	debug        bool
	logger       *slog.Logger
	metrics      *metrics.Metrics
	auditor      AuditPublisher
	subject      string
	now          func() time.Time
	consent      models.State
	mounted      bool
	interacted   bool
	settingsOpen bool

	subMu  sync.Mutex
	subs   map[int]func(models.Snapshot)
	nextID int
}

// New constructs an UNMOUNTED service with the default state.
func New(storage Store, opts ...Option) *Service {
	svc := &Service{
		storage:    storage,
		storageKey: models.StorageKey,
		logger:     slog.Default(),
		now:        time.Now,
		consent:    models.DefaultState(),
		subs:       make(map[int]func(models.Snapshot)),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Initialize hydrates the service from storage. Only the first call with
// storage available reads; later calls return the current snapshot.
func (s *Service) Initialize(ctx context.Context) models.Snapshot {
	s.mu.Lock()
	changed := s.initializeLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return snap
}

func (s *Service) initializeLocked(ctx context.Context) bool {
	if s.mounted {
		return false
	}
	if s.storage == nil {
		s.countInit(models.PhaseUnmounted, metrics.OutcomeNoStorage)
		return false
	}

	state, found, outcome := s.read(ctx)
	s.consent = state
	s.interacted = found && !s.debug
	s.mounted = true
	s.countInit(models.PhaseOf(true, s.interacted), outcome)
	s.debugLog(ctx, "consent initialized", "outcome", outcome)
	return true
}

func (s *Service) read(ctx context.Context) (models.State, bool, string) {
	start := s.now()
	raw, err := s.storage.Get(ctx, s.storageKey)
	s.observe("get", start)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.DefaultState(), false, metrics.OutcomeAbsent
		}
		s.logger.WarnContext(ctx, "consent storage read failed, using defaults",
			"visitor_id", s.subject,
			"error", err,
		)
		return models.DefaultState(), false, metrics.OutcomeReadError
	}
	state, err := models.DecodeRecord(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "malformed consent record ignored",
			"visitor_id", s.subject,
			"error", err,
		)
		return models.DefaultState(), false, metrics.OutcomeMalformed
	}
	return state, true, metrics.OutcomeRestored
}

// UpdateDraft changes one category in memory. Necessary and unknown
// categories are ignored. Nothing is persisted and hasInteracted is untouched.
func (s *Service) UpdateDraft(category models.Category, value bool) models.Snapshot {
	s.mu.Lock()
	before := s.consent
	s.consent = s.consent.With(category, value)
	changed := before != s.consent
	if changed {
		s.debugLog(context.Background(), "consent draft updated", "category", category, "value", value)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return snap
}

// Commit persists explicit (normalized) when given, otherwise the current
// draft, then adopts it in memory and marks the visitor as interacted.
// A failed write is logged and counted; the in-memory update still happens.
// Without storage the service never mounts, so the returned choice sits on
// a snapshot whose Phase stays unmounted while HasInteracted is true. Check
// HasInteracted rather than Phase to tell whether the visitor answered.
func (s *Service) Commit(ctx context.Context, explicit *models.State) models.State {
	s.mu.Lock()
	s.initializeLocked(ctx)

	next := s.consent
	if explicit != nil {
		next = *explicit
	}
	next = next.Normalize()
	s.write(ctx, next)
	s.consent = next
	s.interacted = true
	s.debugLog(ctx, "consent committed to storage")
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.recordCommit(ctx, next, explicit != nil)
	s.notify(snap)
	return next
}

// AcceptAll commits every category enabled.
func (s *Service) AcceptAll(ctx context.Context) models.State {
	all := models.AcceptAllState()
	return s.Commit(ctx, &all)
}

// DenyAll commits necessary only.
func (s *Service) DenyAll(ctx context.Context) models.State {
	none := models.DenyAllState()
	return s.Commit(ctx, &none)
}

func (s *Service) write(ctx context.Context, state models.State) {
	if s.storage == nil {
		return
	}
	raw, err := models.EncodeRecord(state)
	if err == nil {
		start := s.now()
		err = s.storage.Set(ctx, s.storageKey, raw)
		s.observe("set", start)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "consent storage write failed, keeping choice in memory",
			"visitor_id", s.subject,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementStorageWriteFailure()
		}
	}
}

// IsCategoryEnabled is false for everything until the service is mounted.
func (s *Service) IsCategoryEnabled(category models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted && s.consent.Enabled(category)
}

func (s *Service) OpenSettings() models.Snapshot {
	return s.setSettingsOpen(true)
}

func (s *Service) CloseSettings() models.Snapshot {
	return s.setSettingsOpen(false)
}

func (s *Service) setSettingsOpen(open bool) models.Snapshot {
	s.mu.Lock()
	changed := s.settingsOpen != open
	s.settingsOpen = open
	if changed {
		s.debugLog(context.Background(), "consent settings toggled", "is_settings_open", open)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return snap
}

func (s *Service) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) Phase() models.Phase {
	return s.Snapshot().Phase
}

func (s *Service) IsMounted() bool {
	return s.Snapshot().IsMounted
}

func (s *Service) HasInteracted() bool {
	return s.Snapshot().HasInteracted
}

func (s *Service) IsSettingsOpen() bool {
	return s.Snapshot().IsSettingsOpen
}

// Consent returns the current (possibly draft) state.
func (s *Service) Consent() models.State {
	return s.Snapshot().Consent
}

// Subject returns the visitor id this service belongs to.
func (s *Service) Subject() string {
	return s.subject
}

func (s *Service) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Consent:        s.consent,
		Phase:          models.PhaseOf(s.mounted, s.interacted),
		IsMounted:      s.mounted,
		HasInteracted:  s.interacted,
		IsSettingsOpen: s.settingsOpen,
	}
}

// Subscribe registers fn to run after every state change. Callbacks run
// outside the service lock, so they may call back into the service.
func (s *Service) Subscribe(fn func(models.Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Service) notify(snap models.Snapshot) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(models.Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Service) recordCommit(ctx context.Context, state models.State, explicit bool) {
	action := models.AuditAction(state, explicit)
	var granted []string
	for _, c := range state.EnabledCategories() {
		granted = append(granted, c.String())
	}

	s.logger.InfoContext(ctx, "consent committed",
		"visitor_id", s.subject,
		"action", action,
		"categories", granted,
	)
	if s.metrics != nil {
		s.metrics.IncrementCommit(action)
		for _, c := range state.EnabledCategories() {
			if !c.Locked() {
				s.metrics.IncrementCategoryGranted(c.String())
			}
		}
	}
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  s.now(),
		VisitorID:  s.subject,
		Action:     action,
		Decision:   models.AuditDecision(state),
		Categories: granted,
		RequestID:  requestcontext.RequestID(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit consent audit event",
			"visitor_id", s.subject,
			"error", err,
		)
	}
}

func (s *Service) countInit(phase models.Phase, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementInitialization(outcome)
	}
	if outcome == metrics.OutcomeNoStorage {
		s.logger.Debug("consent storage unavailable, staying unmounted",
			"visitor_id", s.subject,
			"phase", phase,
		)
	}
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperation(op, start)
	}
}

func (s *Service) debugLog(ctx context.Context, msg string, args ...any) {
	if !s.debug {
		return
	}
	args = append(args,
		"visitor_id", s.subject,
		"consent", s.consent,
		"is_mounted", s.mounted,
		"has_interacted", s.interacted,
	)
	s.logger.InfoContext(ctx, msg, args...)
}
