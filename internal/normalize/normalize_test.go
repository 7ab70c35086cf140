package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verxtics/termsheet-extractor/internal/assets"
	"github.com/Verxtics/termsheet-extractor/internal/extract"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func assertDecimal(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.True(t, got.Valid)
	assert.True(t, got.Decimal.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got.Decimal)
}

func TestPercentageRule(t *testing.T) {
	t.Run("raw percent scale divides", func(t *testing.T) {
		f := &extract.Fields{KnockInPct: dec("65"), KnockOutPct: dec("95"), UpfrontFee: dec("2.3")}
		Apply(f)
		assertDecimal(t, "0.65", f.KnockInPct)
		assertDecimal(t, "0.95", f.KnockOutPct)
		assertDecimal(t, "0.023", f.UpfrontFee)
	})

	t.Run("fractions untouched", func(t *testing.T) {
		f := &extract.Fields{KnockInPct: dec("0.6"), KnockOutPct: dec("0.9")}
		Apply(f)
		assertDecimal(t, "0.6", f.KnockInPct)
		assertDecimal(t, "0.9", f.KnockOutPct)
	})

	t.Run("full barrier stays at one", func(t *testing.T) {
		// Raw 100 lands on exactly 1; a second pass must not divide again.
		f := &extract.Fields{KnockOutPct: dec("100")}
		Apply(f)
		assertDecimal(t, "1", f.KnockOutPct)
		Apply(f)
		assertDecimal(t, "1", f.KnockOutPct)
	})

	t.Run("idempotent", func(t *testing.T) {
		f := &extract.Fields{CouponAnnual: dec("3.675"), KnockInPct: dec("65")}
		Apply(f)
		Apply(f)
		assertDecimal(t, "0.03675", f.CouponAnnual)
		assertDecimal(t, "0.65", f.KnockInPct)
	})

	t.Run("absent stays absent", func(t *testing.T) {
		f := &extract.Fields{}
		Apply(f)
		assert.False(t, f.KnockInPct.Valid)
		assert.False(t, f.CouponAnnual.Valid)
	})
}

func TestCouponConversion(t *testing.T) {
	t.Run("quarterly display from annual decimal", func(t *testing.T) {
		f := &extract.Fields{CouponAnnual: dec("3.675")}
		Apply(f)
		assertDecimal(t, "0.03675", f.CouponAnnual)
		assert.Equal(t, "0.919%", f.CouponQuarterly)
	})

	t.Run("existing display preserved", func(t *testing.T) {
		f := &extract.Fields{CouponAnnual: dec("0.03675"), CouponQuarterly: "0.919%"}
		Apply(f)
		assert.Equal(t, "0.919%", f.CouponQuarterly)
	})

	t.Run("no coupon no display", func(t *testing.T) {
		f := &extract.Fields{}
		Apply(f)
		assert.Empty(t, f.CouponQuarterly)
	})
}

func TestProductTypeClassification(t *testing.T) {
	cases := []struct {
		name string
		f    extract.Fields
		want string
	}{
		{"coupon wins", extract.Fields{CouponAnnual: dec("3.675"), KnockOutPct: dec("0.95")}, "PCN"},
		{"ko 98 and above", extract.Fields{KnockOutPct: dec("0.99")}, "ACE 100%"},
		{"ko 95", extract.Fields{KnockOutPct: dec("0.95")}, "ACE 95%"},
		{"ko 90", extract.Fields{KnockOutPct: dec("0.92")}, "ACE 90%"},
		{"ko 85", extract.Fields{KnockOutPct: dec("0.86")}, "ACE 85%"},
		{"ko below 85 rounded", extract.Fields{KnockOutPct: dec("0.80")}, "ACE 80%"},
		{"raw ko normalized first", extract.Fields{KnockOutPct: dec("95")}, "ACE 95%"},
		{"extracted string", extract.Fields{ProductName: "EQUITY LINKED NOTE"}, "EQUITY LINKED NOTE"},
		{"default", extract.Fields{}, "ACE 90%"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.f
			Apply(&f)
			assert.Equal(t, tc.want, f.ProductType)
		})
	}

	t.Run("not reclassified", func(t *testing.T) {
		f := &extract.Fields{ProductType: "PCN"}
		Apply(f)
		assert.Equal(t, "PCN", f.ProductType)
	})
}

func TestPriceDerivation(t *testing.T) {
	t.Run("barriers from initial price", func(t *testing.T) {
		f := &extract.Fields{
			KnockInPct:  dec("0.65"),
			KnockOutPct: dec("0.95"),
			Underlyings: []assets.Underlying{{Name: "Acme Corp", InitialPrice: dec("102.50")}},
		}
		Apply(f)
		assertDecimal(t, "66.625", f.Underlyings[0].KnockInPrice)
		assertDecimal(t, "97.375", f.Underlyings[0].KnockOutPrice)
	})

	t.Run("placeholder initial when unknown", func(t *testing.T) {
		f := &extract.Fields{
			KnockInPct:  dec("0.6"),
			Underlyings: []assets.Underlying{{Name: "Acme Corp"}},
		}
		Apply(f)
		assertDecimal(t, "100", f.Underlyings[0].InitialPrice)
		assertDecimal(t, "60", f.Underlyings[0].KnockInPrice)
	})

	t.Run("extracted prices not overwritten", func(t *testing.T) {
		f := &extract.Fields{
			KnockInPct:  dec("0.65"),
			Underlyings: []assets.Underlying{{Name: "Acme Corp", InitialPrice: dec("100"), KnockInPrice: dec("61.5")}},
		}
		Apply(f)
		assertDecimal(t, "61.5", f.Underlyings[0].KnockInPrice)
	})

	t.Run("nothing to derive leaves asset untouched", func(t *testing.T) {
		f := &extract.Fields{Underlyings: []assets.Underlying{{Name: "Acme Corp"}}}
		Apply(f)
		assert.False(t, f.Underlyings[0].InitialPrice.Valid)
		assert.False(t, f.Underlyings[0].KnockInPrice.Valid)
	})
}

func TestValuationScheduleSynthesis(t *testing.T) {
	issue := time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2027, time.March, 22, 0, 0, 0, 0, time.UTC)

	t.Run("synthesized and capped", func(t *testing.T) {
		f := &extract.Fields{IssueDate: issue, MaturityDate: maturity}
		Apply(f)
		require.Len(t, f.ValuationDates, 9)
		assert.Equal(t, issue.Add(90*24*time.Hour), f.ValuationDates[0])
		for i := 1; i < len(f.ValuationDates); i++ {
			assert.Equal(t, 90*24*time.Hour, f.ValuationDates[i].Sub(f.ValuationDates[i-1]))
		}
	})

	t.Run("short tenor yields short schedule", func(t *testing.T) {
		f := &extract.Fields{IssueDate: issue, MaturityDate: issue.AddDate(0, 0, 200)}
		Apply(f)
		assert.Len(t, f.ValuationDates, 2)
	})

	t.Run("explicit schedule preserved", func(t *testing.T) {
		explicit := []time.Time{issue.AddDate(0, 3, 0)}
		f := &extract.Fields{IssueDate: issue, MaturityDate: maturity, ValuationDates: explicit}
		Apply(f)
		assert.Equal(t, explicit, f.ValuationDates)
	})

	t.Run("missing anchors yield nothing", func(t *testing.T) {
		f := &extract.Fields{IssueDate: issue}
		Apply(f)
		assert.Empty(t, f.ValuationDates)
	})
}
