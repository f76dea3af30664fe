package handler

import (
	"sitekit/internal/consent/models"
	"sitekit/internal/scripts"
)

// ConsentResponse is the consent snapshot returned by every state endpoint.
type ConsentResponse struct {
	Consent        models.State `json:"consent"`
	Phase          models.Phase `json:"phase"`
	IsMounted      bool         `json:"is_mounted"`
	HasInteracted  bool         `json:"has_interacted"`
	IsSettingsOpen bool         `json:"is_settings_open"`
	Ephemeral      bool         `json:"ephemeral,omitempty"`
}

func toConsentResponse(snap models.Snapshot, ephemeral bool) ConsentResponse {
	return ConsentResponse{
		Consent:        snap.Consent,
		Phase:          snap.Phase,
		IsMounted:      snap.IsMounted,
		HasInteracted:  snap.HasInteracted,
		IsSettingsOpen: snap.IsSettingsOpen,
		Ephemeral:      ephemeral,
	}
}

// ScriptsResponse lists scripts the page may mount now, everything mounted
// earlier in the session, and every script the site has configured.
type ScriptsResponse struct {
	Mount    []scripts.Script `json:"mount"`
	Loaded   []scripts.Script `json:"loaded"`
	Eligible []scripts.Script `json:"eligible"`
}

func emptyIfNil(in []scripts.Script) []scripts.Script {
	if in == nil {
		return []scripts.Script{}
	}
	return in
}
