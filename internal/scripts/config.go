package scripts

// Config carries the site identifiers of the third-party scripts. An empty
// identifier makes that script ineligible whatever the visitor consents to.
type Config struct {
	GoogleAnalyticsID  string `env:"SITEKIT_GA_ID"`
	GoogleTagManagerID string `env:"SITEKIT_GTM_ID"`
	MetaPixelID        string `env:"SITEKIT_META_PIXEL_ID"`
}

// Catalog lists the scripts this config makes eligible.
func (c Config) Catalog() []Script {
	var out []Script
	if c.GoogleAnalyticsID != "" {
		out = append(out, Script{ID: ScriptGoogleAnalytics, Category: categoryAnalytics, TagID: c.GoogleAnalyticsID})
	}
	if c.GoogleTagManagerID != "" {
		out = append(out, Script{ID: ScriptGoogleTagManager, Category: categoryAnalytics, TagID: c.GoogleTagManagerID})
	}
	if c.MetaPixelID != "" {
		out = append(out, Script{ID: ScriptMetaPixel, Category: categoryMarketing, TagID: c.MetaPixelID})
	}
	return out
}
