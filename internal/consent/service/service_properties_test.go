package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitekit/internal/consent/models"
	"sitekit/internal/consent/store"
	"sitekit/pkg/testutil"
)

func TestDraftThenCommitPersistsEveryOptionalCategory(t *testing.T) {
	for _, c := range models.Categories() {
		if c.Locked() {
			continue
		}
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			backing := store.NewInMemory()
			svc := New(backing)
			svc.Initialize(ctx)

			svc.UpdateDraft(c, true)
			svc.Commit(ctx, nil)

			raw, err := backing.Get(ctx, models.StorageKey)
			require.NoError(t, err)
			persisted, err := models.DecodeRecord(raw)
			require.NoError(t, err)
			assert.True(t, persisted.Enabled(c))
		})
	}
}

func TestUpdateDraftNeverClearsNecessary(t *testing.T) {
	svc := New(store.NewInMemory())
	svc.Initialize(context.Background())

	snap := svc.UpdateDraft(models.CategoryNecessary, false)

	assert.True(t, snap.Consent.Necessary)
	assert.False(t, snap.HasInteracted)
}

func TestUpdateDraftIgnoresUnknownCategory(t *testing.T) {
	svc := New(store.NewInMemory())
	svc.Initialize(context.Background())

	snap := svc.UpdateDraft(models.Category("tracking"), true)

	assert.Equal(t, models.DefaultState(), snap.Consent)
}

func TestCommitNecessaryOnly(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemory())
	svc.Initialize(ctx)

	svc.Commit(ctx, &models.State{Necessary: true})

	assert.True(t, svc.HasInteracted())
	assert.False(t, svc.IsCategoryEnabled(models.CategoryAnalytics))
	assert.True(t, svc.IsCategoryEnabled(models.CategoryNecessary))
}

func TestIsCategoryEnabledFalseBeforeMount(t *testing.T) {
	ctx := context.Background()
	backing := store.NewInMemory()
	require.NoError(t, backing.Set(ctx, models.StorageKey, testutil.RecordJSON(models.AcceptAllState())))
	svc := New(backing)

	for _, c := range models.Categories() {
		assert.False(t, svc.IsCategoryEnabled(c), c)
	}

	svc.Initialize(ctx)
	for _, c := range models.Categories() {
		assert.True(t, svc.IsCategoryEnabled(c), c)
	}
}

func TestRoundTripAcrossSessions(t *testing.T) {
	ctx := context.Background()
	backing := store.NewInMemory()
	want := testutil.NewStateBuilder().With(models.CategoryFunctional).With(models.CategoryMarketing).Build()

	first := New(backing)
	first.Initialize(ctx)
	first.Commit(ctx, &want)

	second := New(backing)
	snap := second.Initialize(ctx)

	assert.Equal(t, want, snap.Consent)
	assert.True(t, snap.HasInteracted)
	assert.Equal(t, models.PhaseInteracted, snap.Phase)
}

func TestMalformedRecordBehavesLikeAbsent(t *testing.T) {
	ctx := context.Background()
	malformed := store.NewInMemory()
	require.NoError(t, malformed.Set(ctx, models.StorageKey, "{{not json"))

	got := New(malformed).Initialize(ctx)
	want := New(store.NewInMemory()).Initialize(ctx)

	assert.Equal(t, want, got)
}

func TestInteractedIsTerminal(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemory())
	svc.Initialize(ctx)
	svc.AcceptAll(ctx)

	svc.UpdateDraft(models.CategoryAnalytics, false)
	svc.Initialize(ctx)
	svc.DenyAll(ctx)

	assert.Equal(t, models.PhaseInteracted, svc.Phase())
}

func TestSettingsToggleIsIdempotent(t *testing.T) {
	svc := New(store.NewInMemory())
	var notified int
	svc.Subscribe(func(models.Snapshot) { notified++ })

	svc.OpenSettings()
	svc.OpenSettings()
	assert.True(t, svc.IsSettingsOpen())
	svc.CloseSettings()
	svc.CloseSettings()
	assert.False(t, svc.IsSettingsOpen())
	assert.Equal(t, 2, notified)
}

func TestSubscribeSeesEveryChange(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemory())
	var phases []models.Phase
	unsubscribe := svc.Subscribe(func(s models.Snapshot) { phases = append(phases, s.Phase) })

	svc.Initialize(ctx)
	svc.UpdateDraft(models.CategoryAnalytics, true)
	svc.Commit(ctx, nil)
	unsubscribe()
	unsubscribe()
	svc.DenyAll(ctx)

	assert.Equal(t, []models.Phase{
		models.PhaseNoInteraction,
		models.PhaseNoInteraction,
		models.PhaseInteracted,
	}, phases)
}

func TestSubscriberMayCallBack(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemory())
	var seen bool
	svc.Subscribe(func(models.Snapshot) {
		seen = svc.IsCategoryEnabled(models.CategoryMarketing)
	})

	svc.Initialize(ctx)
	svc.AcceptAll(ctx)

	assert.True(t, seen)
}

// Concurrent requests for one visitor must each see a consistent state.
func TestConcurrentCommitsAreAtomic(t *testing.T) {
	ctx := context.Background()
	backing := store.NewInMemory()
	svc := New(backing)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.Initialize(ctx)
			if i%2 == 0 {
				svc.AcceptAll(ctx)
			} else {
				svc.DenyAll(ctx)
			}
		}(i)
	}
	wg.Wait()

	raw, err := backing.Get(ctx, models.StorageKey)
	require.NoError(t, err)
	persisted, err := models.DecodeRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, svc.Consent(), persisted)
	assert.Equal(t, models.PhaseInteracted, svc.Phase())
}
