package store

import (
	"context"
	"errors"
	"log/slog"

	"sitekit/pkg/platform/circuit"
)

// BreakerStore short-circuits a remote backend after repeated failures so
// visitors get defaults quickly instead of waiting on a dead dependency.
// ErrNotFound counts as a success: the backend answered. Calls whose own
// context ended say nothing about the backend and are not counted.
type BreakerStore struct {
	inner   Store
	breaker *circuit.Breaker
	logger  *slog.Logger
	onState func(name string, state circuit.State)
}

type BreakerOption func(*BreakerStore)

func WithBreakerLogger(logger *slog.Logger) BreakerOption {
	return func(s *BreakerStore) {
		s.logger = logger
	}
}

// WithStateHook is called after every circuit transition, e.g. to update a gauge.
func WithStateHook(fn func(name string, state circuit.State)) BreakerOption {
	return func(s *BreakerStore) {
		s.onState = fn
	}
}

func NewBreaker(inner Store, breaker *circuit.Breaker, opts ...BreakerOption) *BreakerStore {
	s := &BreakerStore{inner: inner, breaker: breaker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BreakerStore) Get(ctx context.Context, key string) (string, error) {
	if !s.breaker.Allow() {
		return "", ErrUnavailable
	}
	value, err := s.inner.Get(ctx, key)
	s.record(ctx, err)
	return value, err
}

func (s *BreakerStore) Set(ctx context.Context, key, value string) error {
	if !s.breaker.Allow() {
		return ErrUnavailable
	}
	err := s.inner.Set(ctx, key, value)
	s.record(ctx, err)
	return err
}

// State exposes the circuit state for health checks.
func (s *BreakerStore) State() circuit.State {
	return s.breaker.State()
}

func (s *BreakerStore) record(ctx context.Context, err error) {
	if callerGone(ctx, err) {
		return
	}
	var change circuit.StateChange
	if err == nil || errors.Is(err, ErrNotFound) {
		change = s.breaker.RecordSuccess()
	} else {
		change = s.breaker.RecordFailure()
	}
	switch {
	case change.Opened:
		if s.logger != nil {
			s.logger.WarnContext(ctx, "storage circuit opened", "breaker", s.breaker.Name(), "error", err)
		}
		if s.onState != nil {
			s.onState(s.breaker.Name(), circuit.StateOpen)
		}
	case change.Closed:
		if s.logger != nil {
			s.logger.InfoContext(ctx, "storage circuit closed", "breaker", s.breaker.Name())
		}
		if s.onState != nil {
			s.onState(s.breaker.Name(), circuit.StateClosed)
		}
	}
}

// callerGone reports whether err comes from the caller abandoning the call
// rather than from the backend.
func callerGone(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
