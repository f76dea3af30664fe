// Package banner holds the consent banner and settings dialog contracts:
// what each renders for the current consent phase and what each action does.
// Copy is referenced by translation key; locale loading happens elsewhere.
package banner

import (
	"context"
	"fmt"

	"sitekit/internal/consent/models"
	dErrors "sitekit/pkg/domain-errors"
)

// ActionID identifies a button on the banner or dialog.
type ActionID string

const (
	ActionDeny         ActionID = "deny"
	ActionAcceptAll    ActionID = "accept_all"
	ActionOpenSettings ActionID = "open_settings"
	ActionSave         ActionID = "save"
)

// Action is one button with its translation key.
type Action struct {
	ID       ActionID `json:"id"`
	LabelKey string   `json:"label_key"`
	Primary  bool     `json:"primary"`
}

// Source is the slice of the consent store the banner needs.
type Source interface {
	IsMounted() bool
	HasInteracted() bool
	Commit(ctx context.Context, explicit *models.State) models.State
	OpenSettings() models.Snapshot
}

// View is what the banner renders. A zero Visible means render nothing.
type View struct {
	Visible    bool     `json:"visible"`
	MessageKey string   `json:"message_key,omitempty"`
	Actions    []Action `json:"actions,omitempty"`
}

const bannerKeyPrefix = "cookies.consent.banner."

// Banner is the first-visit consent prompt.
type Banner struct {
	source Source
}

func New(source Source) *Banner {
	return &Banner{source: source}
}

// View renders nothing until hydration completes and nothing once the
// visitor has made a choice.
func (b *Banner) View() View {
	if !b.source.IsMounted() || b.source.HasInteracted() {
		return View{}
	}
	return View{
		Visible:    true,
		MessageKey: bannerKeyPrefix + "description",
		Actions: []Action{
			{ID: ActionDeny, LabelKey: bannerKeyPrefix + "deny"},
			{ID: ActionAcceptAll, LabelKey: bannerKeyPrefix + "acceptAll"},
			{ID: ActionOpenSettings, LabelKey: bannerKeyPrefix + "settings", Primary: true},
		},
	}
}

// Deny commits necessary only.
func (b *Banner) Deny(ctx context.Context) models.State {
	none := models.DenyAllState()
	return b.source.Commit(ctx, &none)
}

// AcceptAll commits every category.
func (b *Banner) AcceptAll(ctx context.Context) models.State {
	all := models.AcceptAllState()
	return b.source.Commit(ctx, &all)
}

// OpenSettings hands over to the settings dialog.
func (b *Banner) OpenSettings() models.Snapshot {
	return b.source.OpenSettings()
}

// Perform dispatches a banner action by id.
func (b *Banner) Perform(ctx context.Context, id ActionID) error {
	switch id {
	case ActionDeny:
		b.Deny(ctx)
	case ActionAcceptAll:
		b.AcceptAll(ctx)
	case ActionOpenSettings:
		b.OpenSettings()
	default:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported banner action %q", id))
	}
	return nil
}
