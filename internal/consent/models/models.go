package models

import (
	"fmt"
	"strings"

	dErrors "sitekit/pkg/domain-errors"
)

// Category names one class of tracking or storage purpose a visitor can
// consent to.
type Category string

const (
	CategoryNecessary  Category = "necessary"
	CategoryFunctional Category = "functional"
	CategoryAnalytics  Category = "analytics"
	CategoryMarketing  Category = "marketing"
)

var categories = []Category{
	CategoryNecessary,
	CategoryFunctional,
	CategoryAnalytics,
	CategoryMarketing,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryNecessary, CategoryFunctional, CategoryAnalytics, CategoryMarketing:
		return true
	}
	return false
}

// Locked reports whether visitors may change the category. Only necessary is locked.
func (c Category) Locked() bool {
	return c == CategoryNecessary
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts user input to a Category. Matching ignores case and
// surrounding whitespace.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown consent category %q", raw))
	}
	return c, nil
}

// State is one flag per consent category.
//
// Necessary is always true. Every constructor, With and Normalize keep that
// invariant, so a State obtained through this package never reports
// necessary as false.
type State struct {
	Necessary  bool `json:"necessary"`
	Functional bool `json:"functional"`
	Analytics  bool `json:"analytics"`
	Marketing  bool `json:"marketing"`
}

// DefaultState is what a visitor has before any choice: necessary only.
func DefaultState() State {
	return State{Necessary: true}
}

// DenyAllState is the "deny" choice: identical to the default.
func DenyAllState() State {
	return State{Necessary: true}
}

// AcceptAllState enables every category.
func AcceptAllState() State {
	return State{Necessary: true, Functional: true, Analytics: true, Marketing: true}
}

// Normalize forces the necessary flag on.
func (s State) Normalize() State {
	s.Necessary = true
	return s
}

// Enabled returns the flag for c. Unknown categories are never enabled.
func (s State) Enabled(c Category) bool {
	switch c {
	case CategoryNecessary:
		return s.Necessary
	case CategoryFunctional:
		return s.Functional
	case CategoryAnalytics:
		return s.Analytics
	case CategoryMarketing:
		return s.Marketing
	}
	return false
}

// With returns a copy with c set to value. Locked and unknown categories are
// left untouched.
func (s State) With(c Category, value bool) State {
	switch c {
	case CategoryFunctional:
		s.Functional = value
	case CategoryAnalytics:
		s.Analytics = value
	case CategoryMarketing:
		s.Marketing = value
	}
	return s.Normalize()
}

// EnabledCategories lists the categories switched on, in display order.
func (s State) EnabledCategories() []Category {
	var out []Category
	for _, c := range categories {
		if s.Enabled(c) {
			out = append(out, c)
		}
	}
	return out
}

// Phase is the hydration/interaction lifecycle of a consent store.
type Phase string

const (
	// PhaseUnmounted: constructed with defaults, storage not read yet.
	PhaseUnmounted Phase = "unmounted"
	// PhaseNoInteraction: storage read, visitor has not chosen yet.
	PhaseNoInteraction Phase = "mounted_no_interaction"
	// PhaseInteracted: a persisted choice exists. Terminal within a session.
	PhaseInteracted Phase = "mounted_interacted"
)

// Snapshot is a consistent read of a consent store.
type Snapshot struct {
	Consent        State `json:"consent"`
	Phase          Phase `json:"phase"`
	IsMounted      bool  `json:"is_mounted"`
	HasInteracted  bool  `json:"has_interacted"`
	IsSettingsOpen bool  `json:"is_settings_open"`
}

// PhaseOf derives the lifecycle phase from the session flags.
func PhaseOf(mounted, interacted bool) Phase {
	switch {
	case !mounted:
		return PhaseUnmounted
	case interacted:
		return PhaseInteracted
	default:
		return PhaseNoInteraction
	}
}
