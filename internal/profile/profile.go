// Package profile holds the static issuer profile registry. Profiles are
// data, not behavior: each one carries the identifier strings used for
// classification and the regex patterns consumed by the extraction engine.
package profile

import (
	"errors"
	"fmt"
	"regexp"
)

// Category partitions a profile's patterns by extraction concern.
type Category string

const (
	CategoryISIN        Category = "isin"
	CategoryKnockIn     Category = "knock_in"
	CategoryKnockOut    Category = "knock_out"
	CategoryCurrency    Category = "currency"
	CategoryNotional    Category = "notional"
	CategoryDates       Category = "dates"
	CategoryProductName Category = "product_name"
	CategoryUnderlying  Category = "underlying"
)

// knownCategories is the closed set a profile may reference.
var knownCategories = map[Category]bool{
	CategoryISIN:        true,
	CategoryKnockIn:     true,
	CategoryKnockOut:    true,
	CategoryCurrency:    true,
	CategoryNotional:    true,
	CategoryDates:       true,
	CategoryProductName: true,
	CategoryUnderlying:  true,
}

// ErrBadProfile indicates a profile definition references an unregistered
// pattern category or carries an invalid regex. This is a programmer error
// and is fatal at registry construction time.
var ErrBadProfile = errors.New("invalid issuer profile")

// GenericKey is the fallback profile every registry must contain. It has no
// identifiers and is never matched by identifier lookup.
const GenericKey = "generic"

// CouponMode selects how the coupon extraction strategy treats a profile.
type CouponMode int

const (
	// CouponStandard tries the profile's coupon rules in order and takes the
	// first match.
	CouponStandard CouponMode = iota
	// CouponSnowballMax scans every percentage token above the noise
	// threshold and takes the maximum as the representative annual rate
	// (escalating "snowball" dialects).
	CouponSnowballMax
)

// CouponRule is one entry in a profile's ordered coupon resolver chain.
// Annualize is the multiplier applied to the matched per-period rate
// (4 for quarterly-coupon dialects, 1 otherwise).
type CouponRule struct {
	Pattern   string
	Annualize int
}

type couponRule struct {
	re        *regexp.Regexp
	annualize int
}

// Spec is the declarative form of a profile, compiled into a Profile when the
// registry is built.
type Spec struct {
	Key         string
	DisplayName string
	Identifiers []string
	Patterns    map[Category][]string
	CouponMode  CouponMode
	CouponRules []CouponRule

	// Historical barrier defaults applied when no pattern matches.
	// Zero means "leave the field empty" for that profile.
	KnockInDefault  float64
	KnockOutDefault float64

	// OrdinalDates selects the "February 3rd, 2025" date dialect.
	OrdinalDates bool

	// NamePrefix is the issuer shorthand used for last-resort investment
	// naming ("CG 22-03-2027").
	NamePrefix string
}

// Profile is the compiled, immutable form consumed by the extraction engine.
type Profile struct {
	Key         string
	DisplayName string
	Identifiers []string

	patterns    map[Category][]*regexp.Regexp
	couponMode  CouponMode
	couponRules []couponRule

	KnockInDefault  float64
	KnockOutDefault float64
	OrdinalDates    bool
	NamePrefix      string

	// Basket is the issuer's typical underlying composition, used only as
	// the last-resort catalog fallback (flagged provenance downstream).
	Basket []CatalogAsset
}

// Patterns returns the compiled regexes registered for a category.
// A missing category yields an empty slice, never an error: absence of a
// pattern is normal (the generic fallbacks take over downstream).
func (p *Profile) Patterns(c Category) []*regexp.Regexp {
	return p.patterns[c]
}

// FirstPattern returns the first pattern registered for a category, or nil.
func (p *Profile) FirstPattern(c Category) *regexp.Regexp {
	if ps := p.patterns[c]; len(ps) > 0 {
		return ps[0]
	}
	return nil
}

// CouponMode reports the coupon extraction dialect for this issuer.
func (p *Profile) CouponMode() CouponMode { return p.couponMode }

// CouponResolvers returns the ordered coupon rules as (regex, annualize)
// pairs. The extraction strategy tries them first-success-wins.
func (p *Profile) CouponResolvers() []struct {
	Re        *regexp.Regexp
	Annualize int
} {
	out := make([]struct {
		Re        *regexp.Regexp
		Annualize int
	}, len(p.couponRules))
	for i, r := range p.couponRules {
		out[i].Re = r.re
		out[i].Annualize = r.annualize
	}
	return out
}

// Registry is the static, read-only issuer profile table. Iteration order is
// registration order; the generic profile is excluded from identifier scans.
type Registry struct {
	order    []string
	profiles map[string]*Profile
}

// NewRegistry compiles the given specs into a registry. The catalog maps
// issuer key to fallback basket. Construction fails with ErrBadProfile when a
// spec references an unknown category, carries an invalid regex, or the
// generic profile is missing or mis-declared.
func NewRegistry(specs []Spec, catalog map[string][]CatalogAsset) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile, len(specs))}

	for _, s := range specs {
		if s.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrBadProfile)
		}
		if _, dup := r.profiles[s.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrBadProfile, s.Key)
		}

		p := &Profile{
			Key:             s.Key,
			DisplayName:     s.DisplayName,
			Identifiers:     append([]string(nil), s.Identifiers...),
			patterns:        make(map[Category][]*regexp.Regexp, len(s.Patterns)),
			couponMode:      s.CouponMode,
			KnockInDefault:  s.KnockInDefault,
			KnockOutDefault: s.KnockOutDefault,
			OrdinalDates:    s.OrdinalDates,
			NamePrefix:      s.NamePrefix,
			Basket:          catalog[s.Key],
		}

		for cat, exprs := range s.Patterns {
			if !knownCategories[cat] {
				return nil, fmt.Errorf("%w: profile %q references unregistered category %q", ErrBadProfile, s.Key, cat)
			}
			for _, expr := range exprs {
				re, err := regexp.Compile(expr)
				if err != nil {
					return nil, fmt.Errorf("%w: profile %q category %q: %v", ErrBadProfile, s.Key, cat, err)
				}
				p.patterns[cat] = append(p.patterns[cat], re)
			}
		}

		for _, cr := range s.CouponRules {
			re, err := regexp.Compile(cr.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: profile %q coupon rule: %v", ErrBadProfile, s.Key, err)
			}
			annualize := cr.Annualize
			if annualize <= 0 {
				annualize = 1
			}
			p.couponRules = append(p.couponRules, couponRule{re: re, annualize: annualize})
		}

		r.order = append(r.order, s.Key)
		r.profiles[s.Key] = p
	}

	gen, ok := r.profiles[GenericKey]
	if !ok {
		return nil, fmt.Errorf("%w: registry has no %q profile", ErrBadProfile, GenericKey)
	}
	if len(gen.Identifiers) != 0 {
		return nil, fmt.Errorf("%w: %q profile must not carry identifiers", ErrBadProfile, GenericKey)
	}

	return r, nil
}

// Get returns the profile registered under key.
func (r *Registry) Get(key string) (*Profile, bool) {
	p, ok := r.profiles[key]
	return p, ok
}

// Generic returns the fallback profile.
func (r *Registry) Generic() *Profile {
	return r.profiles[GenericKey]
}

// Scannable returns all profiles in registration order with generic excluded,
// the exact order the classifier must honor.
func (r *Registry) Scannable() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, key := range r.order {
		if key == GenericKey {
			continue
		}
		out = append(out, r.profiles[key])
	}
	return out
}

// Keys returns every registered key in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}
