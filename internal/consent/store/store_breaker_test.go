package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitekit/pkg/platform/circuit"
)

// flakyStore fails every call while down is set.
type flakyStore struct {
	*InMemoryStore
	down  bool
	calls int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	f.calls++
	if f.down {
		return "", errors.New("connection refused")
	}
	return f.InMemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	f.calls++
	if f.down {
		return errors.New("connection refused")
	}
	return f.InMemoryStore.Set(ctx, key, value)
}

func TestBreakerStoreOpensAfterThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	inner := &flakyStore{InMemoryStore: NewInMemory(), down: true}
	var transitions []circuit.State
	s := NewBreaker(inner,
		circuit.New("redis",
			circuit.WithFailureThreshold(3),
			circuit.WithSuccessThreshold(1),
			circuit.WithCooldown(time.Minute),
			circuit.WithClock(func() time.Time { return now }),
		),
		WithStateHook(func(_ string, st circuit.State) { transitions = append(transitions, st) }),
	)

	for i := 0; i < 3; i++ {
		_, err := s.Get(ctx, "k")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, circuit.StateOpen, s.State())

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), ErrUnavailable)
	assert.Equal(t, 3, inner.calls, "open circuit must not reach the backend")

	inner.down = false
	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, circuit.StateClosed, s.State())
	assert.Equal(t, []circuit.State{circuit.StateOpen, circuit.StateClosed}, transitions)
}

func TestBreakerStoreNotFoundIsHealthy(t *testing.T) {
	ctx := context.Background()
	s := NewBreaker(NewInMemory(), circuit.New("memory", circuit.WithFailureThreshold(1)))

	for i := 0; i < 5; i++ {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, circuit.StateClosed, s.State())
}

func TestBreakerStoreIgnoresCancelledCallers(t *testing.T) {
	cancelled := &cancellingStore{InMemoryStore: NewInMemory()}
	s := NewBreaker(cancelled, circuit.New("sqlite", circuit.WithFailureThreshold(5)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := s.Get(ctx, "v1:cookie_consent")
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, circuit.StateClosed, s.State(), "disconnecting visitors must not trip the circuit")

	require.NoError(t, cancelled.InMemoryStore.Set(context.Background(), "v2:cookie_consent", "{}"))
	got, err := s.Get(context.Background(), "v2:cookie_consent")
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestBreakerStoreCountsBackendDeadlines(t *testing.T) {
	inner := &deadlineStore{}
	s := NewBreaker(inner, circuit.New("redis", circuit.WithFailureThreshold(2)))

	for i := 0; i < 2; i++ {
		_, err := s.Get(context.Background(), "k")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, circuit.StateOpen, s.State(), "a backend timing out on a live request is a failure")
}

// cancellingStore returns the context error like a driver does when the
// caller goes away.
type cancellingStore struct {
	*InMemoryStore
}

func (c *cancellingStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.InMemoryStore.Get(ctx, key)
}

// deadlineStore simulates a backend-side timeout on a live caller context.
type deadlineStore struct{}

func (deadlineStore) Get(context.Context, string) (string, error) {
	return "", context.DeadlineExceeded
}

func (deadlineStore) Set(context.Context, string, string) error {
	return context.DeadlineExceeded
}
