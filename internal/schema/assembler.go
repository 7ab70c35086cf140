package schema

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Verxtics/termsheet-extractor/internal/extract"
	"github.com/Verxtics/termsheet-extractor/internal/profile"
	moneypkg "github.com/Verxtics/termsheet-extractor/pkg/money"
)

// Cell display formats for date columns. The investment-name fallback uses
// the dashed form so the name stays filesystem-safe.
const (
	dateFormat     = "02/01/2006"
	dateNameFormat = "02-01-2006"
)

// fallbackNotional is the last-resort currency cell when no amount survived
// extraction.
const fallbackNotional = "$100,000.00"

// minPlausibleNotional filters out denominations and percentages mistaken
// for a deal size.
var minPlausibleNotional = decimal.NewFromInt(1000)

// Structural defaults of the database sheet.
const (
	defaultStatus       = "Active"
	defaultIssuePrice   = 1.0
	defaultMinTenor     = 2
	defaultMaxTenor     = 12
	defaultObsFrequency = 1
	defaultUpfrontFee   = 0.023
)

// Row is one assembled output record. Immutable after assembly; sinks read
// cells, they never rewrite them.
type Row struct {
	cells []any
}

// Cell returns the value at column i, nil when out of range.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i]
}

// Cells returns a copy of the full cell sequence.
func (r Row) Cells() []any {
	return append([]any(nil), r.cells...)
}

// Len returns the column count.
func (r Row) Len() int { return len(r.cells) }

// Assembler places normalized fields into the fixed layout, applying the
// documented last-resort defaults for anything still unresolved. Assembly is
// total: it never errors, even on a completely empty field set.
type Assembler struct {
	layout   *Layout
	registry *profile.Registry
}

func NewAssembler(layout *Layout, registry *profile.Registry) *Assembler {
	return &Assembler{layout: layout, registry: registry}
}

// Layout returns the column arrangement rows are assembled against.
func (a *Assembler) Layout() *Layout { return a.layout }

// Assemble maps one field set onto a Row.
func (a *Assembler) Assemble(f *extract.Fields) Row {
	cells := make([]any, ColumnCount)
	for i := range cells {
		cells[i] = ""
	}

	prof, _ := a.registry.Get(f.IssuerKey)

	cells[ColInvestmentName] = a.investmentName(f, prof)
	cells[ColIssuer] = f.IssuerName
	cells[ColProductName] = productName(f)
	cells[ColThematic] = thematic(productName(f))
	cells[ColProductType] = f.ProductType
	cells[ColCouponQTR] = f.CouponQuarterly
	if f.CouponAnnual.Valid {
		cells[ColCouponAnnual] = f.CouponAnnual.Decimal.InexactFloat64()
	}
	cells[ColProductStatus] = defaultStatus

	knockIn := 0.6
	if f.KnockInPct.Valid {
		knockIn = f.KnockInPct.Decimal.InexactFloat64()
	}
	cells[ColKnockIn] = knockIn
	cells[ColKnockOut] = a.knockOut(f)
	cells[ColIssuePrice] = defaultIssuePrice
	if f.ProductType == "PCN" {
		cells[ColCouponBarrier] = knockIn
	}
	cells[ColMinTenor] = defaultMinTenor
	cells[ColMaxTenor] = defaultMaxTenor
	cells[ColObsFrequency] = defaultObsFrequency
	cells[ColCurrency] = f.Currency
	cells[ColStrikeDate] = formatDate(f.StrikeDate)
	cells[ColIssueDate] = formatDate(f.IssueDate)
	cells[ColISIN] = f.ISIN

	for i := 0; i < 4; i++ {
		if i >= len(f.Underlyings) || !f.Underlyings[i].Identified() {
			continue
		}
		u := f.Underlyings[i]
		cells[ColUnderlying1+i] = displayName(u.Name, u.Ticker, u.BloombergCode)

		initial := 100.0
		if u.InitialPrice.Valid {
			initial = u.InitialPrice.Decimal.InexactFloat64()
		}
		cells[ColInitialPrice1+i] = initial

		if u.KnockInPrice.Valid {
			cells[ColKnockInPrice1+i] = u.KnockInPrice.Decimal.InexactFloat64()
		} else {
			cells[ColKnockInPrice1+i] = initial * knockIn
		}
		if u.KnockOutPrice.Valid {
			cells[ColKnockOutPrice1+i] = u.KnockOutPrice.Decimal.InexactFloat64()
		} else {
			cells[ColKnockOutPrice1+i] = initial * a.knockOut(f)
		}
		// Market close columns stay empty until trading fills them.
	}

	amount := fallbackNotional
	if f.Notional.Valid && f.Notional.Decimal.GreaterThan(minPlausibleNotional) {
		amount = moneypkg.DisplayDecimal(f.Notional.Decimal, f.Currency)
	}
	cells[ColInvestmentAmt] = amount
	cells[ColTotalUnits] = amount
	cells[ColNotionalValue] = amount
	if f.Currency == moneypkg.AUD {
		cells[ColAUDEquivalent] = amount
	}

	cells[ColMaturityDate] = formatDate(f.MaturityDate)
	if f.Revenue.Valid && f.Revenue.Decimal.IsPositive() {
		cells[ColRevenue] = moneypkg.DisplayDecimal(f.Revenue.Decimal, f.Currency)
	}
	uf := defaultUpfrontFee
	if f.UpfrontFee.Valid {
		uf = f.UpfrontFee.Decimal.InexactFloat64()
	}
	cells[ColUpfrontFee] = uf

	cells[ColMaturityDate2] = formatDate(f.MaturityDate)
	for i := 0; i < MaxValuationColumns && i < len(f.ValuationDates); i++ {
		cells[ColValuationDate1+i] = f.ValuationDates[i].Format(dateFormat)
	}

	return Row{cells: cells}
}

// investmentName prefers the extracted name, then the issuer shorthand plus
// maturity, then the source file stem.
func (a *Assembler) investmentName(f *extract.Fields, prof *profile.Profile) string {
	if f.ProductName != "" {
		return f.ProductName
	}
	if prof != nil && prof.NamePrefix != "" {
		if !f.MaturityDate.IsZero() {
			return prof.NamePrefix + " " + f.MaturityDate.Format(dateNameFormat)
		}
		return prof.NamePrefix + " Product"
	}
	if f.Source != "" {
		base := filepath.Base(f.Source)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "Structured Product"
}

// knockOut resolves the knock-out fraction including the product-type keyed
// fallbacks used when extraction produced nothing.
func (a *Assembler) knockOut(f *extract.Fields) float64 {
	if f.KnockOutPct.Valid {
		return f.KnockOutPct.Decimal.InexactFloat64()
	}
	switch {
	case strings.Contains(f.ProductType, "ACE 95%"):
		return 0.95
	case f.ProductType == "PCN":
		return 1.0
	default:
		return 0.9
	}
}

// productName falls back to a basket theme when no product string was
// extracted.
func productName(f *extract.Fields) string {
	if f.ProductName != "" {
		return f.ProductName
	}
	if len(f.Underlyings) == 0 {
		return "Structured Product"
	}

	names := make([]string, 0, len(f.Underlyings))
	for _, u := range f.Underlyings {
		names = append(names, strings.ToLower(u.Name))
	}
	joined := strings.Join(names, " ")
	switch {
	case strings.Contains(joined, "wells fargo") || strings.Contains(joined, "bank of america"):
		return "Global Banks"
	case strings.Contains(joined, "bank") || strings.Contains(joined, "financial"):
		return "European Banks"
	case containsAny(joined, "tech", "microsoft", "alphabet", "meta", "nvidia", "oracle"):
		return "US Tech"
	case containsAny(joined, "coles", "rio tinto", "macquarie"):
		return "Australian Diversified"
	default:
		return "Multi-Asset"
	}
}

func thematic(productName string) string {
	switch {
	case strings.Contains(productName, "Global Banks"):
		return "Global Banks"
	case strings.Contains(productName, "European Banks"):
		return "EU Banks"
	case strings.Contains(productName, "US Tech"):
		return "US Tech"
	case strings.Contains(productName, "Australian"):
		return "Australian Diversified"
	default:
		return "Structured Product"
	}
}

// displayName renders "Company Name (TICKER)" with exchange suffixes
// stripped from the ticker.
func displayName(name, ticker, bloomberg string) string {
	code := ticker
	if code == "" {
		code = bloomberg
	}
	code = cleanTicker(code)
	if name == "" {
		return code
	}
	if code == "" {
		return name
	}
	return name + " (" + code + ")"
}

// cleanTicker drops RIC dot-suffixes ("META.OQ") and trailing exchange
// qualifiers ("NVDA UW", "BARC LN").
func cleanTicker(ticker string) string {
	t := strings.TrimSpace(ticker)
	if i := strings.IndexByte(t, '.'); i > 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(strings.TrimSuffix(t, " Equity"))
	fields := strings.Fields(t)
	if len(fields) == 2 && len(fields[1]) == 2 && fields[1] == strings.ToUpper(fields[1]) {
		t = fields[0]
	}
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
