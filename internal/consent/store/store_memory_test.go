package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitekit/internal/consent/models"
)

func TestInMemoryStoreOperations(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	_, err := s.Get(ctx, models.StorageKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, models.StorageKey, `{"necessary":true}`))
	got, err := s.Get(ctx, models.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"necessary":true}`, got)

	require.NoError(t, s.Set(ctx, models.StorageKey, `{"necessary":true,"analytics":true}`))
	got, err = s.Get(ctx, models.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"necessary":true,"analytics":true}`, got)
	assert.Equal(t, 1, s.Len())
	assert.NoError(t, s.Health(ctx))
}

func TestScopedStoreIsolatesVisitors(t *testing.T) {
	shared := NewInMemory()
	ctx := context.Background()
	alice := Scoped(shared, "visitor-a")
	bob := Scoped(shared, "visitor-b:")

	require.NoError(t, alice.Set(ctx, models.StorageKey, "a"))

	_, err := bob.Get(ctx, models.StorageKey)
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := shared.Get(ctx, "visitor-a:"+models.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "a", raw)
	assert.Equal(t, "visitor-b", bob.Namespace())
}

func TestScopedStoreWithoutNamespace(t *testing.T) {
	shared := NewInMemory()
	ctx := context.Background()
	require.NoError(t, Scoped(shared, "").Set(ctx, "k", "v"))

	raw, err := shared.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", raw)
}
