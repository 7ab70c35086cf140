package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verxtics/termsheet-extractor/internal/assets"
	"github.com/Verxtics/termsheet-extractor/internal/extract"
	"github.com/Verxtics/termsheet-extractor/internal/profile"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	reg, err := profile.Builtin()
	require.NoError(t, err)
	return NewAssembler(V1(), reg)
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestLayoutV1(t *testing.T) {
	l := V1()
	assert.Equal(t, "v1", l.Version)
	require.Len(t, l.Columns, ColumnCount)

	names := l.Names()
	assert.Equal(t, "Investment Name", names[ColInvestmentName])
	assert.Equal(t, "Knock-In%", names[ColKnockIn])
	assert.Equal(t, "Underlying 4", names[ColUnderlying1+3])
	assert.Equal(t, "Valuation Date 9", names[ColValuationDate1+8])
	assert.Equal(t, KindPercent, l.Columns[ColKnockOut].Kind)
	assert.Equal(t, KindCurrency, l.Columns[ColNotionalValue].Kind)
}

func TestAssembleFullRow(t *testing.T) {
	a := newAssembler(t)
	f := &extract.Fields{
		IssuerKey:       "barclays",
		IssuerName:      "Barclays Bank PLC",
		ISIN:            "XS2999999876",
		ProductName:     "Periodic Snowball Autocall",
		ProductType:     "PCN",
		Currency:        "AUD",
		CouponAnnual:    dec("0.147"),
		CouponQuarterly: "3.675%",
		KnockInPct:      dec("0.65"),
		KnockOutPct:     dec("0.9"),
		Notional:        dec("1250000"),
		Revenue:         dec("12500"),
		UpfrontFee:      dec("0.023"),
		IssueDate:       time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC),
		StrikeDate:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		MaturityDate:    time.Date(2027, time.March, 22, 0, 0, 0, 0, time.UTC),
		ValuationDates:  []time.Time{time.Date(2024, time.June, 22, 0, 0, 0, 0, time.UTC)},
		Underlyings: []assets.Underlying{
			{Name: "NVIDIA Corp", Ticker: "NVDA.OQ", InitialPrice: dec("875.30"), KnockInPrice: dec("568.95"), KnockOutPrice: dec("787.77")},
		},
	}

	row := a.Assemble(f)
	require.Equal(t, ColumnCount, row.Len())

	assert.Equal(t, "Periodic Snowball Autocall", row.Cell(ColInvestmentName))
	assert.Equal(t, "Barclays Bank PLC", row.Cell(ColIssuer))
	assert.Equal(t, "PCN", row.Cell(ColProductType))
	assert.Equal(t, "3.675%", row.Cell(ColCouponQTR))
	assert.InDelta(t, 0.147, row.Cell(ColCouponAnnual), 1e-9)
	assert.Equal(t, "Active", row.Cell(ColProductStatus))
	assert.InDelta(t, 0.65, row.Cell(ColKnockIn), 1e-9)
	assert.InDelta(t, 0.9, row.Cell(ColKnockOut), 1e-9)
	assert.Equal(t, 1.0, row.Cell(ColIssuePrice))
	assert.InDelta(t, 0.65, row.Cell(ColCouponBarrier), 1e-9)
	assert.Equal(t, 2, row.Cell(ColMinTenor))
	assert.Equal(t, 12, row.Cell(ColMaxTenor))
	assert.Equal(t, 1, row.Cell(ColObsFrequency))
	assert.Equal(t, "AUD", row.Cell(ColCurrency))
	assert.Equal(t, "15/03/2024", row.Cell(ColStrikeDate))
	assert.Equal(t, "22/03/2024", row.Cell(ColIssueDate))
	assert.Equal(t, "XS2999999876", row.Cell(ColISIN))
	assert.Equal(t, "NVIDIA Corp (NVDA)", row.Cell(ColUnderlying1))
	assert.Equal(t, "", row.Cell(ColUnderlying1+1))
	assert.Equal(t, "$1,250,000.00", row.Cell(ColNotionalValue))
	assert.Equal(t, "$1,250,000.00", row.Cell(ColAUDEquivalent))
	assert.Equal(t, "22/03/2027", row.Cell(ColMaturityDate))
	assert.Equal(t, "$12,500.00", row.Cell(ColRevenue))
	assert.InDelta(t, 0.023, row.Cell(ColUpfrontFee), 1e-9)
	assert.InDelta(t, 875.30, row.Cell(ColInitialPrice1), 1e-9)
	assert.InDelta(t, 568.95, row.Cell(ColKnockInPrice1), 1e-9)
	assert.InDelta(t, 787.77, row.Cell(ColKnockOutPrice1), 1e-9)
	assert.Equal(t, "", row.Cell(ColMarketClose1))
	assert.Equal(t, "22/03/2027", row.Cell(ColMaturityDate2))
	assert.Equal(t, "22/06/2024", row.Cell(ColValuationDate1))
	assert.Equal(t, "", row.Cell(ColValuationDate1+1))
}

func TestAssembleEmptyFields(t *testing.T) {
	a := newAssembler(t)
	row := a.Assemble(&extract.Fields{IssuerKey: profile.GenericKey})

	require.Equal(t, ColumnCount, row.Len())
	assert.Equal(t, "Active", row.Cell(ColProductStatus))
	assert.InDelta(t, 0.6, row.Cell(ColKnockIn), 1e-9)
	assert.InDelta(t, 0.9, row.Cell(ColKnockOut), 1e-9)
	assert.Equal(t, "$100,000.00", row.Cell(ColNotionalValue))
	assert.InDelta(t, 0.023, row.Cell(ColUpfrontFee), 1e-9)
	assert.Equal(t, "", row.Cell(ColUnderlying1))
	assert.Equal(t, "", row.Cell(ColInitialPrice1))
	assert.Equal(t, "", row.Cell(ColStrikeDate))
	assert.Equal(t, "", row.Cell(ColRevenue))
}

func TestInvestmentNameFallbacks(t *testing.T) {
	a := newAssembler(t)
	maturity := time.Date(2027, time.March, 22, 0, 0, 0, 0, time.UTC)

	t.Run("issuer shorthand with maturity", func(t *testing.T) {
		row := a.Assemble(&extract.Fields{IssuerKey: "citigroup", MaturityDate: maturity})
		assert.Equal(t, "CG 22-03-2027", row.Cell(ColInvestmentName))
	})

	t.Run("issuer shorthand without maturity", func(t *testing.T) {
		row := a.Assemble(&extract.Fields{IssuerKey: "macquarie"})
		assert.Equal(t, "MBL Product", row.Cell(ColInvestmentName))
	})

	t.Run("source stem for generic", func(t *testing.T) {
		row := a.Assemble(&extract.Fields{IssuerKey: profile.GenericKey, Source: "/inbox/deal-42.pdf"})
		assert.Equal(t, "deal-42", row.Cell(ColInvestmentName))
	})
}

func TestProductTypeKnockOutFallback(t *testing.T) {
	a := newAssembler(t)

	t.Run("pcn implies full knock-out", func(t *testing.T) {
		row := a.Assemble(&extract.Fields{IssuerKey: profile.GenericKey, ProductType: "PCN"})
		assert.InDelta(t, 1.0, row.Cell(ColKnockOut), 1e-9)
	})

	t.Run("ace 95 keeps its level", func(t *testing.T) {
		row := a.Assemble(&extract.Fields{IssuerKey: profile.GenericKey, ProductType: "ACE 95%"})
		assert.InDelta(t, 0.95, row.Cell(ColKnockOut), 1e-9)
	})
}

func TestThematicDerivation(t *testing.T) {
	a := newAssembler(t)

	cases := []struct {
		name         string
		underlyings  []assets.Underlying
		wantProduct  string
		wantThematic string
	}{
		{
			"us tech basket",
			[]assets.Underlying{{Name: "Microsoft Corporation"}, {Name: "Alphabet Inc"}},
			"US Tech", "US Tech",
		},
		{
			"global banks basket",
			[]assets.Underlying{{Name: "Wells Fargo Co"}, {Name: "ING Groep NV"}},
			"Global Banks", "Global Banks",
		},
		{
			"australian basket",
			[]assets.Underlying{{Name: "Coles Group Ltd"}, {Name: "Rio Tinto Ltd"}},
			"Australian Diversified", "Australian Diversified",
		},
		{
			"no underlyings",
			nil,
			"Structured Product", "Structured Product",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := a.Assemble(&extract.Fields{IssuerKey: profile.GenericKey, Underlyings: tc.underlyings})
			assert.Equal(t, tc.wantProduct, row.Cell(ColProductName))
			assert.Equal(t, tc.wantThematic, row.Cell(ColThematic))
		})
	}
}

func TestCleanTicker(t *testing.T) {
	cases := map[string]string{
		"NVDA.OQ":        "NVDA",
		"ORCL.N":         "ORCL",
		"GOOG UW":        "GOOG",
		"BARC LN":        "BARC",
		"NVDA UW Equity": "NVDA",
		"ACM":            "ACM",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanTicker(in), in)
	}
}
