// Package assets resolves the underlying instruments referenced by a
// termsheet. Resolution is a three-tier cascade (table scan, text scan,
// issuer catalog) followed by a positional price-filling pass.
package assets

import "github.com/shopspring/decimal"

// Origin records which resolver tier produced an underlying. Catalog-origin
// assets are assumptions, not observations, and consumers that care about
// provenance must be able to tell them apart.
type Origin string

const (
	OriginTable   Origin = "table"
	OriginText    Origin = "text"
	OriginCatalog Origin = "catalog"
)

// MaxUnderlyings caps the basket size. Longer lists are truncated, never
// rejected.
const MaxUnderlyings = 4

// Underlying is one referenced instrument. Zero-valued prices mean unknown;
// the derivation engine fills them from document-level barriers later.
type Underlying struct {
	Name          string
	Ticker        string
	BloombergCode string
	InitialPrice  decimal.NullDecimal
	KnockInPrice  decimal.NullDecimal
	KnockOutPrice decimal.NullDecimal
	Origin        Origin
}

// Identified reports whether the underlying carries any identifying field.
func (u Underlying) Identified() bool {
	return u.Name != "" || u.Ticker != "" || u.BloombergCode != ""
}
