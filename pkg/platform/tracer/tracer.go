// Package tracer is a small tracing facade over OpenTelemetry.
//
// Storage code emits spans through the Tracer interface so tests can run
// with NoopTracer and production wiring can plug in the global OTel provider.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashKey shortens a storage key to a stable digest so visitor ids never
// land in trace backends verbatim.
func HashKey(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanStoreGet = "consent.store.get"
	SpanStoreSet = "consent.store.set"
)

// Attribute keys.
const (
	AttrBackend  = "store.backend"
	AttrKeyHash  = "store.key_hash"
	AttrFound    = "store.found"
	AttrValueLen = "store.value_len"
)
