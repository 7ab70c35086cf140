// Package extract turns raw termsheet text into partially-populated canonical
// fields using the issuer profile's pattern cascade. Extraction never fails
// on an absent field: absence is an empty value, resolved by the
// normalization stage or the row assembler's documented defaults.
package extract

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Verxtics/termsheet-extractor/internal/assets"
)

// Fields is the canonical field set built up by the pipeline. Stages only
// fill values that are still unset; a resolved value is never silently
// overwritten by a later stage.
type Fields struct {
	Source     string
	IssuerKey  string
	IssuerName string

	ISIN        string
	ProductName string
	// ProductType is filled by the normalization stage's decision tree.
	ProductType string

	Currency string

	// CouponAnnual holds the raw matched annual rate (already annualized for
	// quarterly dialects) until normalization applies the uniform percentage
	// rule; afterwards it is a decimal fraction. Invalid means no coupon was
	// extracted — the derivation stage must not fabricate one from barrier
	// levels.
	CouponAnnual decimal.NullDecimal
	// CouponQuarterly is the formatted quarterly display string, derived
	// during normalization.
	CouponQuarterly string

	KnockInPct  decimal.NullDecimal
	KnockOutPct decimal.NullDecimal

	Notional   decimal.NullDecimal
	Revenue    decimal.NullDecimal
	UpfrontFee decimal.NullDecimal

	IssueDate    time.Time
	StrikeDate   time.Time
	MaturityDate time.Time

	ValuationDates []time.Time

	Underlyings []assets.Underlying
}

// HasCoupon reports whether a positive coupon rate was resolved.
func (f *Fields) HasCoupon() bool {
	return f.CouponAnnual.Valid && f.CouponAnnual.Decimal.IsPositive()
}

// CatalogFallback reports whether the underlying basket came from the issuer
// catalog rather than the document itself.
func (f *Fields) CatalogFallback() bool {
	for _, u := range f.Underlyings {
		if u.Origin == assets.OriginCatalog {
			return true
		}
	}
	return false
}
