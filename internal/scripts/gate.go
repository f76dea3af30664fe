// Package scripts decides which third-party analytics and marketing scripts
// a visitor's page may mount.
package scripts

import (
	"sync"

	"sitekit/internal/consent/models"
)

type ScriptID string

const (
	ScriptGoogleAnalytics  ScriptID = "google_analytics"
	ScriptGoogleTagManager ScriptID = "google_tag_manager"
	ScriptMetaPixel        ScriptID = "meta_pixel"
)

const (
	categoryAnalytics = models.CategoryAnalytics
	categoryMarketing = models.CategoryMarketing
)

// Script is one eligible third-party script.
type Script struct {
	ID       ScriptID        `json:"id"`
	Category models.Category `json:"category"`
	TagID    string          `json:"tag_id"`
}

// ConsentChecker answers whether a category may be used right now.
type ConsentChecker interface {
	IsCategoryEnabled(category models.Category) bool
}

// Subscriber notifies on every consent change.
type Subscriber interface {
	Subscribe(fn func(models.Snapshot)) (unsubscribe func())
}

// Gate mounts a script iff it is eligible and its category is enabled.
//
// Loaded scripts stay loaded for the rest of the session: revoking consent
// stops future mounts but cannot unload code that already ran in the page.
type Gate struct {
	mu      sync.Mutex
	checker ConsentChecker
	catalog []Script
	loaded  []Script
	seen    map[ScriptID]bool
	onMount func(Script)
}

type Option func(*Gate)

// WithMountHook runs fn the first time each script mounts.
func WithMountHook(fn func(Script)) Option {
	return func(g *Gate) {
		g.onMount = fn
	}
}

func NewGate(checker ConsentChecker, cfg Config, opts ...Option) *Gate {
	g := &Gate{
		checker: checker,
		catalog: cfg.Catalog(),
		seen:    make(map[ScriptID]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate returns the scripts that may mount now and records them as loaded.
func (g *Gate) Evaluate() []Script {
	var mounted, fresh []Script
	g.mu.Lock()
	for _, s := range g.catalog {
		if !g.checker.IsCategoryEnabled(s.Category) {
			continue
		}
		mounted = append(mounted, s)
		if !g.seen[s.ID] {
			g.seen[s.ID] = true
			g.loaded = append(g.loaded, s)
			fresh = append(fresh, s)
		}
	}
	g.mu.Unlock()

	if g.onMount != nil {
		for _, s := range fresh {
			g.onMount(s)
		}
	}
	return mounted
}

// Bind re-evaluates on every consent change until the returned func is called.
func (g *Gate) Bind(sub Subscriber) (unbind func()) {
	g.Evaluate()
	return sub.Subscribe(func(models.Snapshot) {
		g.Evaluate()
	})
}

// Loaded lists every script mounted during this session, in mount order.
func (g *Gate) Loaded() []Script {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Script(nil), g.loaded...)
}

// Eligible lists the scripts the configuration allows, consent aside.
func (g *Gate) Eligible() []Script {
	return append([]Script(nil), g.catalog...)
}
