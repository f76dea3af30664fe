package banner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitekit/internal/consent/models"
)

func TestDialogViewListsCategories(t *testing.T) {
	svc, _ := newMounted(t)
	svc.OpenSettings()
	d := NewDialog(svc, "/cookies")

	view := d.View()

	assert.True(t, view.Open)
	assert.Equal(t, "/cookies", view.PolicyURL)
	require.Len(t, view.Categories, 4)
	assert.Equal(t, models.CategoryNecessary, view.Categories[0].Category)
	assert.True(t, view.Categories[0].Locked)
	assert.True(t, view.Categories[0].Enabled)
	for _, row := range view.Categories[1:] {
		assert.False(t, row.Locked)
		assert.False(t, row.Enabled)
	}
	assert.Equal(t, "cookies.consent.dialog.categories.analytics.label", view.Categories[2].LabelKey)
}

func TestDialogToggleThenSave(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMounted(t)
	svc.OpenSettings()
	d := NewDialog(svc, "/cookies")

	d.Toggle(models.CategoryFunctional, true)
	d.Toggle(models.CategoryNecessary, false)
	assert.False(t, svc.HasInteracted(), "toggling is a draft edit")
	assert.True(t, d.View().Categories[1].Enabled)

	state, err := d.Perform(ctx, ActionSave)
	require.NoError(t, err)

	assert.Equal(t, models.State{Necessary: true, Functional: true}, state)
	assert.True(t, svc.HasInteracted())
	assert.False(t, svc.IsSettingsOpen())
}

func TestDialogTerminalActionsClose(t *testing.T) {
	for _, id := range []ActionID{ActionDeny, ActionAcceptAll} {
		t.Run(string(id), func(t *testing.T) {
			svc, _ := newMounted(t)
			svc.OpenSettings()

			_, err := NewDialog(svc, "").Perform(context.Background(), id)

			require.NoError(t, err)
			assert.False(t, svc.IsSettingsOpen())
			assert.True(t, svc.HasInteracted())
		})
	}
}

func TestDialogCloseKeepsDraft(t *testing.T) {
	svc, _ := newMounted(t)
	svc.OpenSettings()
	d := NewDialog(svc, "")

	d.Toggle(models.CategoryMarketing, true)
	d.Close()

	assert.False(t, svc.HasInteracted())
	assert.True(t, svc.Consent().Marketing)
}

func TestDialogRejectsOpenSettings(t *testing.T) {
	svc, _ := newMounted(t)
	_, err := NewDialog(svc, "").Perform(context.Background(), ActionOpenSettings)
	assert.Error(t, err)
}
