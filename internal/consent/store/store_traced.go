package store

import (
	"context"
	"errors"

	"sitekit/pkg/platform/tracer"
)

// TracedStore records a span around every backend call.
type TracedStore struct {
	inner   Store
	tracer  tracer.Tracer
	backend string
}

func NewTraced(inner Store, t tracer.Tracer, backend string) *TracedStore {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &TracedStore{inner: inner, tracer: t, backend: backend}
}

func (s *TracedStore) Get(ctx context.Context, key string) (string, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanStoreGet,
		tracer.String(tracer.AttrBackend, s.backend),
		tracer.String(tracer.AttrKeyHash, tracer.HashKey(key)),
	)
	value, err := s.inner.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(tracer.Bool(tracer.AttrFound, false))
		span.End(nil)
		return value, err
	}
	span.SetAttributes(tracer.Bool(tracer.AttrFound, err == nil))
	span.End(err)
	return value, err
}

func (s *TracedStore) Set(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanStoreSet,
		tracer.String(tracer.AttrBackend, s.backend),
		tracer.String(tracer.AttrKeyHash, tracer.HashKey(key)),
		tracer.Int64(tracer.AttrValueLen, int64(len(value))),
	)
	err := s.inner.Set(ctx, key, value)
	span.End(err)
	return err
}
