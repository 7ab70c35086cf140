// Package normalize applies the pure derivation pass over extracted fields:
// the uniform percentage rule, coupon period conversion, product-type
// classification, underlying price derivation and valuation schedule
// synthesis. Every derivation is idempotent so a normalized field set can be
// re-normalized without drift.
package normalize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Verxtics/termsheet-extractor/internal/extract"
)

// PlaceholderInitialPrice stands in for an unknown initial price so barrier
// prices can still be derived as fractions of something. It is an assumption,
// not data; rows built from it carry catalog or placeholder provenance.
var PlaceholderInitialPrice = decimal.NewFromInt(100)

// couponPeriodsPerYear converts the stored annual rate to the quarterly
// display figure.
const couponPeriodsPerYear = 4

// maxSynthesizedValuations caps the schedule synthesized when a termsheet
// carries no observation table.
const maxSynthesizedValuations = 9

// valuationStep approximates a quarterly observation calendar.
const valuationStep = 90 * 24 * time.Hour

var one = decimal.NewFromInt(1)

// Apply normalizes fields in place. It only fills values that are still
// unset and only rescales values that are still on the raw percent scale.
func Apply(f *extract.Fields) {
	f.CouponAnnual = normalizePct(f.CouponAnnual)
	f.KnockInPct = normalizePct(f.KnockInPct)
	f.KnockOutPct = normalizePct(f.KnockOutPct)
	f.UpfrontFee = normalizePct(f.UpfrontFee)

	if f.CouponQuarterly == "" && f.HasCoupon() {
		f.CouponQuarterly = quarterlyDisplay(f.CouponAnnual.Decimal)
	}

	if f.ProductType == "" {
		f.ProductType = classifyProductType(f)
	}

	derivePrices(f)

	if len(f.ValuationDates) == 0 {
		f.ValuationDates = synthesizeSchedule(f.IssueDate, f.MaturityDate)
	}
}

// normalizePct applies the uniform 0-1 decimal rule: a value above 1 is on
// the raw percent scale and is divided by 100; anything in [0,1] is already
// a fraction and is left alone. The boundary must be exclusive: raw 100
// normalizes to exactly 1, and a second pass has to leave that 1 in place.
func normalizePct(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid || v.Decimal.LessThanOrEqual(one) {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Div(decimal.NewFromInt(100)))
}

// quarterlyDisplay renders the per-quarter rate of an annual decimal
// fraction, e.g. 0.03675 -> "0.919%".
func quarterlyDisplay(annual decimal.Decimal) string {
	perQuarter := annual.Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(couponPeriodsPerYear))
	return perQuarter.StringFixed(3) + "%"
}

// classifyProductType runs the decision tree: coupon-bearing notes are PCN,
// barrier-only notes are bucketed by knock-out level, and only then does an
// extracted product string or the historical default apply.
func classifyProductType(f *extract.Fields) string {
	if f.HasCoupon() {
		return "PCN"
	}
	if f.KnockOutPct.Valid {
		ko := f.KnockOutPct.Decimal
		switch {
		case ko.GreaterThanOrEqual(decimal.NewFromFloat(0.98)):
			return "ACE 100%"
		case ko.GreaterThanOrEqual(decimal.NewFromFloat(0.95)):
			return "ACE 95%"
		case ko.GreaterThanOrEqual(decimal.NewFromFloat(0.90)):
			return "ACE 90%"
		case ko.GreaterThanOrEqual(decimal.NewFromFloat(0.85)):
			return "ACE 85%"
		default:
			return fmt.Sprintf("ACE %d%%", ko.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
		}
	}
	if f.ProductName != "" {
		return f.ProductName
	}
	return "ACE 90%"
}

// derivePrices fills each underlying's missing barrier prices as fractions of
// its initial price. An unknown initial price is replaced by the documented
// placeholder first so the derived barriers stay internally consistent.
func derivePrices(f *extract.Fields) {
	for i := range f.Underlyings {
		u := &f.Underlyings[i]

		if !u.InitialPrice.Valid {
			if !u.KnockInPrice.Valid && !u.KnockOutPrice.Valid &&
				!f.KnockInPct.Valid && !f.KnockOutPct.Valid {
				continue
			}
			u.InitialPrice = decimal.NewNullDecimal(PlaceholderInitialPrice)
		}

		if !u.KnockInPrice.Valid && f.KnockInPct.Valid {
			u.KnockInPrice = decimal.NewNullDecimal(u.InitialPrice.Decimal.Mul(f.KnockInPct.Decimal))
		}
		if !u.KnockOutPrice.Valid && f.KnockOutPct.Valid {
			u.KnockOutPrice = decimal.NewNullDecimal(u.InitialPrice.Decimal.Mul(f.KnockOutPct.Decimal))
		}
	}
}

// synthesizeSchedule builds an approximately-quarterly observation calendar
// between issue and maturity when the document carried none. Both anchor
// dates must be known; the schedule excludes the anchors themselves.
func synthesizeSchedule(issue, maturity time.Time) []time.Time {
	if issue.IsZero() || maturity.IsZero() || !maturity.After(issue) {
		return nil
	}
	var out []time.Time
	for t := issue.Add(valuationStep); t.Before(maturity) && len(out) < maxSynthesizedValuations; t = t.Add(valuationStep) {
		out = append(out, t)
	}
	return out
}
