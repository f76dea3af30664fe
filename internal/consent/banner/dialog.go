package banner

import (
	"context"
	"fmt"

	"sitekit/internal/consent/models"
	dErrors "sitekit/pkg/domain-errors"
)

// DialogSource is the slice of the consent store the settings dialog needs.
type DialogSource interface {
	Snapshot() models.Snapshot
	UpdateDraft(category models.Category, value bool) models.Snapshot
	Commit(ctx context.Context, explicit *models.State) models.State
	CloseSettings() models.Snapshot
}

// CategoryRow is one switch in the dialog.
type CategoryRow struct {
	Category       models.Category `json:"category"`
	Enabled        bool            `json:"enabled"`
	Locked         bool            `json:"locked"`
	LabelKey       string          `json:"label_key"`
	DescriptionKey string          `json:"description_key"`
}

// DialogView is what the settings dialog renders.
type DialogView struct {
	Open           bool          `json:"open"`
	TitleKey       string        `json:"title_key"`
	DescriptionKey string        `json:"description_key"`
	Categories     []CategoryRow `json:"categories"`
	Actions        []Action      `json:"actions"`
	PolicyURL      string        `json:"policy_url"`
}

const dialogKeyPrefix = "cookies.consent.dialog."

// Dialog is the per-category settings dialog.
type Dialog struct {
	source    DialogSource
	policyURL string
}

// NewDialog builds a dialog linking to the cookie policy at policyURL.
func NewDialog(source DialogSource, policyURL string) *Dialog {
	return &Dialog{source: source, policyURL: policyURL}
}

func (d *Dialog) View() DialogView {
	snap := d.source.Snapshot()
	rows := make([]CategoryRow, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		rows = append(rows, CategoryRow{
			Category:       c,
			Enabled:        snap.Consent.Enabled(c),
			Locked:         c.Locked(),
			LabelKey:       dialogKeyPrefix + "categories." + c.String() + ".label",
			DescriptionKey: dialogKeyPrefix + "categories." + c.String() + ".description",
		})
	}
	return DialogView{
		Open:           snap.IsSettingsOpen,
		TitleKey:       dialogKeyPrefix + "title",
		DescriptionKey: dialogKeyPrefix + "description",
		Categories:     rows,
		Actions: []Action{
			{ID: ActionDeny, LabelKey: dialogKeyPrefix + "actions.deny"},
			{ID: ActionAcceptAll, LabelKey: dialogKeyPrefix + "actions.acceptAll"},
			{ID: ActionSave, LabelKey: dialogKeyPrefix + "actions.save", Primary: true},
		},
		PolicyURL: d.policyURL,
	}
}

// Toggle edits the draft. Locked categories are ignored.
func (d *Dialog) Toggle(category models.Category, value bool) models.Snapshot {
	return d.source.UpdateDraft(category, value)
}

func (d *Dialog) Deny(ctx context.Context) models.State {
	none := models.DenyAllState()
	return d.commitAndClose(ctx, &none)
}

func (d *Dialog) AcceptAll(ctx context.Context) models.State {
	all := models.AcceptAllState()
	return d.commitAndClose(ctx, &all)
}

// Save commits the current draft.
func (d *Dialog) Save(ctx context.Context) models.State {
	return d.commitAndClose(ctx, nil)
}

// Close dismisses the dialog without committing.
func (d *Dialog) Close() models.Snapshot {
	return d.source.CloseSettings()
}

// Perform dispatches a terminal dialog action by id.
func (d *Dialog) Perform(ctx context.Context, id ActionID) (models.State, error) {
	switch id {
	case ActionDeny:
		return d.Deny(ctx), nil
	case ActionAcceptAll:
		return d.AcceptAll(ctx), nil
	case ActionSave:
		return d.Save(ctx), nil
	}
	return models.State{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported dialog action %q", id))
}

func (d *Dialog) commitAndClose(ctx context.Context, explicit *models.State) models.State {
	state := d.source.Commit(ctx, explicit)
	d.source.CloseSettings()
	return state
}
