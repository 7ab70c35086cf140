// Package schema owns the fixed-position output record. The column layout is
// a versioned constant mirroring the desk's database sheet; it is never
// derived from input and never reordered at runtime.
package schema

import "fmt"

// Kind declares how a column's cells are typed and styled downstream.
type Kind int

const (
	KindString Kind = iota
	// KindPercent cells hold a decimal fraction rendered with a percent
	// number format.
	KindPercent
	// KindCurrency cells hold a pre-formatted display string ("$100,000.00").
	KindCurrency
	// KindPrice cells hold a plain numeric price.
	KindPrice
	// KindNumber cells hold small integers (tenors, frequencies).
	KindNumber
	// KindDate cells hold a dd/mm/yyyy display string.
	KindDate
)

// Column positions, database sheet layout v1.
const (
	ColInvestmentName = 0
	ColIssuer         = 1
	ColProductName    = 2
	ColThematic       = 3
	ColProductType    = 4
	ColCouponQTR      = 5
	ColCouponAnnual   = 6
	ColProductStatus  = 7
	ColKnockIn        = 8
	ColKnockOut       = 9
	ColIssuePrice     = 10
	ColCouponBarrier  = 11
	ColMinTenor       = 12
	ColMaxTenor       = 13
	ColObsFrequency   = 14
	ColCurrency       = 15
	ColStrikeDate     = 16
	ColIssueDate      = 17
	ColISIN           = 18
	ColUnderlying1    = 19 // through 22
	ColInvestmentAmt  = 23
	ColTotalUnits     = 24
	ColNotionalValue  = 25
	ColAUDEquivalent  = 26
	ColMaturityDate   = 27
	ColRevenue        = 28
	ColUpfrontFee     = 29
	ColInitialPrice1  = 30 // through 33
	ColKnockInPrice1  = 34 // through 37
	ColKnockOutPrice1 = 38 // through 41
	ColMarketClose1   = 42 // through 45
	ColMaturityDate2  = 46
	ColValuationDate1 = 47 // through 55

	ColumnCount = 56
)

// MaxValuationColumns is the number of valuation date slots in the layout.
const MaxValuationColumns = 9

// Column is one entry of the layout.
type Column struct {
	Name string
	Kind Kind
}

// Layout is a versioned column arrangement.
type Layout struct {
	Version string
	Columns []Column
}

// V1 returns the 56-column database sheet layout.
func V1() *Layout {
	cols := make([]Column, ColumnCount)
	set := func(i int, name string, kind Kind) {
		cols[i] = Column{Name: name, Kind: kind}
	}

	set(ColInvestmentName, "Investment Name", KindString)
	set(ColIssuer, "Issuer", KindString)
	set(ColProductName, "Product Name", KindString)
	set(ColThematic, "Investment Thematic", KindString)
	set(ColProductType, "TYPE", KindString)
	set(ColCouponQTR, "Coupon - QTR", KindString)
	set(ColCouponAnnual, "Coupon Rate - Annual", KindPercent)
	set(ColProductStatus, "Product Status", KindString)
	set(ColKnockIn, "Knock-In%", KindPercent)
	set(ColKnockOut, "Knock-Out%", KindPercent)
	set(ColIssuePrice, "Issue Price%", KindPercent)
	set(ColCouponBarrier, "Coupon Barrier%", KindPercent)
	set(ColMinTenor, "Minimum Tenor (Q)", KindNumber)
	set(ColMaxTenor, "Maximum Tenor (Q)", KindNumber)
	set(ColObsFrequency, "Observation Frequency", KindNumber)
	set(ColCurrency, "CCY", KindString)
	set(ColStrikeDate, "Strike Date", KindDate)
	set(ColIssueDate, "Issue Date", KindDate)
	set(ColISIN, "ISIN", KindString)
	for i := 0; i < 4; i++ {
		set(ColUnderlying1+i, fmt.Sprintf("Underlying %d", i+1), KindString)
	}
	set(ColInvestmentAmt, "Investment $", KindCurrency)
	set(ColTotalUnits, "Total Units ", KindCurrency)
	set(ColNotionalValue, "Notional Value", KindCurrency)
	set(ColAUDEquivalent, "AUD Equivalent", KindCurrency)
	set(ColMaturityDate, "Maturity Date", KindDate)
	set(ColRevenue, "Revenue", KindCurrency)
	set(ColUpfrontFee, "UF%", KindPercent)
	for i := 0; i < 4; i++ {
		set(ColInitialPrice1+i, fmt.Sprintf("Underlying %d - Issue Price", i+1), KindPrice)
		set(ColKnockInPrice1+i, fmt.Sprintf("Underlying %d - Knock In Price", i+1), KindPrice)
		set(ColKnockOutPrice1+i, fmt.Sprintf("Underlying %d - Knock Out", i+1), KindPrice)
		set(ColMarketClose1+i, fmt.Sprintf("Underlying %d - Market Close", i+1), KindPrice)
	}
	set(ColMaturityDate2, "Maturity Date:", KindDate)
	for i := 0; i < MaxValuationColumns; i++ {
		set(ColValuationDate1+i, fmt.Sprintf("Valuation Date %d", i+1), KindDate)
	}

	return &Layout{Version: "v1", Columns: cols}
}

// Names returns the ordered header row.
func (l *Layout) Names() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Name
	}
	return out
}
