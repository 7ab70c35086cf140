// Package classify picks the issuer profile for a raw termsheet text.
//
// Classification is a pure, total function: the same text always yields the
// same issuer key, and garbled or empty input simply falls back to the
// generic profile. The identifier scan is a single Aho-Corasick pass over all
// registered identifier strings, which keeps classification O(len(text))
// regardless of how many issuers are registered while preserving the
// first-match-in-registration-order contract of a naive ordered scan.
package classify

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/Verxtics/termsheet-extractor/internal/profile"
)

// Classifier resolves raw document text to an issuer key.
type Classifier struct {
	registry *profile.Registry
	matcher  *ahocorasick.Matcher
	// priority[i] is the registration rank of the profile owning pattern i;
	// lower rank wins, matching ordered-scan semantics.
	priority []int
	keys     []string
}

// New builds a classifier over the registry's scannable profiles.
func New(registry *profile.Registry) *Classifier {
	c := &Classifier{registry: registry}

	var patterns [][]byte
	for rank, p := range registry.Scannable() {
		for _, id := range p.Identifiers {
			upper := strings.ToUpper(strings.TrimSpace(id))
			if upper == "" {
				continue
			}
			patterns = append(patterns, []byte(upper))
			c.priority = append(c.priority, rank)
			c.keys = append(c.keys, p.Key)
		}
	}

	if len(patterns) > 0 {
		c.matcher = ahocorasick.NewMatcher(patterns)
	}
	return c
}

// Classify returns the issuer key for the given raw text, or the generic key
// when no registered identifier occurs as a substring. It never fails.
func (c *Classifier) Classify(text string) string {
	if c.matcher == nil || text == "" {
		return profile.GenericKey
	}

	hits := c.matcher.Match([]byte(strings.ToUpper(text)))
	if len(hits) == 0 {
		return profile.GenericKey
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.priority) {
			continue
		}
		if best == -1 || c.priority[idx] < c.priority[best] {
			best = idx
		}
	}
	if best == -1 {
		return profile.GenericKey
	}
	return c.keys[best]
}

// Profile resolves text straight to the matching profile.
func (c *Classifier) Profile(text string) *profile.Profile {
	key := c.Classify(text)
	p, ok := c.registry.Get(key)
	if !ok {
		return c.registry.Generic()
	}
	return p
}
