package assets

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
)

// CatalogRef is an issuer-catalog entry handed to the resolver as the
// last-resort basket. The resolver stamps catalog provenance on anything it
// promotes from here.
type CatalogRef struct {
	Name   string
	Ticker string
}

var (
	assetHeaderKeywords = []string{"UNDERLYING", "ASSET", "TICKER", "BLOOMBERG", "SHARE", "STOCK"}

	companyNameRe = regexp.MustCompile(`([A-Z][A-Za-z&.' ]+?(?:Inc|Corp|Corporation|Ltd|Limited|PLC|Plc|SA|AG|NV|Group|Bank|Holdings))\b`)
	tickerCellRe  = regexp.MustCompile(`^[A-Z]{2,6}(?:\.[A-Z]{1,3})?$`)
	priceCellRe   = regexp.MustCompile(`(?:AUD|USD|EUR|GBP|\$|€|£)\s*([0-9,]+(?:\.[0-9]+)?)`)

	// "Acme Corp (ACM)" and "ACM Acme Corp" are the two text dialects seen in
	// narrative underlying sections.
	nameTickerRe = regexp.MustCompile(`((?:[A-Z][A-Za-z&.']*\s+)*[A-Z][A-Za-z&.']*)\s*\(([A-Z]{1,6}(?:\.[A-Z]{1,3})?)\)`)
	tickerNameRe = regexp.MustCompile(`\b([A-Z]{2,6})\s+((?:[A-Z][A-Za-z&.']+\s+)*(?:Inc|Corp|Corporation|Ltd|Limited|PLC|Group|Bank))\b`)
	bloombergRe  = regexp.MustCompile(`(?i)Bloomberg(?:\s+Code)?[:\s]+([A-Z0-9]{1,8}\s+[A-Z]{2}(?:\s+Equity)?)`)

	// Keyword-adjacent numeric tokens consumed by the positional
	// price-filling pass. The keyword class decides which price field the
	// token feeds.
	priceNearKeywordRe = regexp.MustCompile(`(?i)(initial|spot|strike|knock[ -]?in|barrier|knock[ -]?out|autocall)[^0-9%\n]{0,40}?([0-9,]+\.[0-9]+)`)
)

// assetColumn identifies which Underlying field a table column feeds.
type assetColumn int

const (
	colNone assetColumn = iota
	colName
	colTicker
	colBloomberg
	colInitialPrice
	colKnockInPrice
	colKnockOutPrice
)

// columnKeywords maps header wording to asset fields. Scan order matters:
// "Bloomberg Code" must bind to the Bloomberg column before the bare "CODE"
// keyword claims it for tickers.
var columnKeywords = []struct {
	col      assetColumn
	keywords []string
}{
	{colBloomberg, []string{"BLOOMBERG"}},
	{colKnockInPrice, []string{"KNOCK-IN", "KNOCK IN", "KICK-IN", "KICK IN"}},
	{colKnockOutPrice, []string{"KNOCK-OUT", "KNOCK OUT", "AUTOCALL", "CALL LEVEL"}},
	{colInitialPrice, []string{"INITIAL", "SPOT", "STRIKE"}},
	{colTicker, []string{"TICKER", "SYMBOL", "CODE"}},
	{colName, []string{"NAME", "UNDERLYING", "ASSET", "SHARE", "COMPANY", "STOCK"}},
}

// Resolver locates a termsheet's underlying basket. Stateless; one instance
// serves the whole pipeline.
type Resolver struct{}

func NewResolver() *Resolver { return &Resolver{} }

// Resolve runs the tiered cascade. Each tier is attempted only when the
// previous one produced nothing, so a sparse table never gets topped up with
// catalog guesses. The result never exceeds MaxUnderlyings.
func (r *Resolver) Resolve(text string, tables [][][]string, basket []CatalogRef) []Underlying {
	out := r.fromTables(tables)
	if len(out) == 0 {
		out = r.fromText(text)
	}
	if len(out) == 0 {
		out = r.fromCatalog(basket)
	}
	if len(out) > MaxUnderlyings {
		out = out[:MaxUnderlyings]
	}
	r.fillPrices(text, out)
	return out
}

// fromTables scans every grid whose header row names an asset concept and
// reads its rows as asset records.
func (r *Resolver) fromTables(tables [][][]string) []Underlying {
	var out []Underlying
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		if !isAssetHeader(table[0]) {
			continue
		}

		colMap := mapColumns(table[0])
		for _, row := range table[1:] {
			if len(out) >= MaxUnderlyings {
				return out
			}
			// A single mapped column is not a clean mapping: list-style
			// tables under one "Underlying" header read better per cell.
			var u Underlying
			if len(colMap) >= 2 {
				u = readMappedRow(row, colMap)
			}
			if !u.Identified() {
				u = classifyCells(row)
			}
			if u.Identified() {
				u.Origin = OriginTable
				out = append(out, u)
			}
		}
	}
	return out
}

// isAssetHeader reports whether a header row names an asset concept. Exact
// substring wins; the fuzzy pass tolerates wrapped or abbreviated header text.
func isAssetHeader(header []string) bool {
	joined := strings.ToUpper(strings.Join(header, " "))
	for _, kw := range assetHeaderKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
		if len(kw) >= 6 && fuzzy.MatchNormalizedFold(kw, joined) {
			return true
		}
	}
	return false
}

func mapColumns(header []string) map[int]assetColumn {
	colMap := make(map[int]assetColumn)
	for i, cell := range header {
		up := strings.ToUpper(cell)
		for _, ck := range columnKeywords {
			matched := false
			for _, kw := range ck.keywords {
				if strings.Contains(up, kw) {
					matched = true
					break
				}
			}
			if matched {
				colMap[i] = ck.col
				break
			}
		}
	}
	return colMap
}

func readMappedRow(row []string, colMap map[int]assetColumn) Underlying {
	var u Underlying
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		switch colMap[i] {
		case colName:
			u.Name = cell
		case colTicker:
			u.Ticker = cell
		case colBloomberg:
			u.BloombergCode = cell
		case colInitialPrice:
			u.InitialPrice = parsePriceCell(cell)
		case colKnockInPrice:
			u.KnockInPrice = parsePriceCell(cell)
		case colKnockOutPrice:
			u.KnockOutPrice = parsePriceCell(cell)
		}
	}
	return u
}

// classifyCells is the per-cell fallback for tables whose header did not map:
// each cell is typed by shape instead of position.
func classifyCells(row []string) Underlying {
	var u Underlying
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		switch {
		case u.Ticker == "" && tickerCellRe.MatchString(cell):
			u.Ticker = cell
		case u.Name == "" && companyNameRe.MatchString(cell):
			u.Name = companyNameRe.FindString(cell)
		case !u.InitialPrice.Valid && priceCellRe.MatchString(cell):
			u.InitialPrice = parsePriceCell(cell)
		}
	}
	return u
}

// fromText scans narrative text for name/ticker pairings and labeled
// Bloomberg codes, deduplicated by (name, ticker).
func (r *Resolver) fromText(text string) []Underlying {
	var out []Underlying
	seen := make(map[string]bool)

	add := func(u Underlying) {
		key := strings.ToUpper(u.Name) + "|" + strings.ToUpper(u.Ticker)
		if seen[key] || len(out) >= MaxUnderlyings {
			return
		}
		seen[key] = true
		u.Origin = OriginText
		out = append(out, u)
	}

	for _, m := range nameTickerRe.FindAllStringSubmatch(text, -1) {
		add(Underlying{Name: strings.TrimSpace(m[1]), Ticker: m[2]})
	}
	for _, m := range tickerNameRe.FindAllStringSubmatch(text, -1) {
		add(Underlying{Name: strings.TrimSpace(m[2]), Ticker: m[1]})
	}
	for _, m := range bloombergRe.FindAllStringSubmatch(text, -1) {
		add(Underlying{BloombergCode: strings.TrimSpace(m[1])})
	}
	return out
}

func (r *Resolver) fromCatalog(basket []CatalogRef) []Underlying {
	out := make([]Underlying, 0, len(basket))
	for _, ref := range basket {
		if len(out) >= MaxUnderlyings {
			break
		}
		out = append(out, Underlying{
			Name:   ref.Name,
			Ticker: ref.Ticker,
			Origin: OriginCatalog,
		})
	}
	return out
}

// fillPrices assigns keyword-adjacent price tokens positionally: within each
// keyword class, the i-th token goes to the i-th asset still missing that
// price. Initial/spot/strike tokens feed the initial price, barrier/knock-in
// the knock-in price, knock-out/autocall the knock-out price. Positional and
// fragile, like the date heuristic, but it recovers supplementary price
// tables flattened into text.
func (r *Resolver) fillPrices(text string, out []Underlying) {
	var initial, knockIn, knockOut []string
	for _, m := range priceNearKeywordRe.FindAllStringSubmatch(text, -1) {
		switch strings.ToUpper(m[1]) {
		case "INITIAL", "SPOT", "STRIKE":
			initial = append(initial, m[2])
		case "AUTOCALL", "KNOCK-OUT", "KNOCK OUT", "KNOCKOUT":
			knockOut = append(knockOut, m[2])
		default:
			knockIn = append(knockIn, m[2])
		}
	}

	fill := func(tokens []string, price func(*Underlying) *decimal.NullDecimal) {
		ti := 0
		for i := range out {
			if ti >= len(tokens) {
				return
			}
			field := price(&out[i])
			if field.Valid {
				continue
			}
			if p := parsePriceCell(tokens[ti]); p.Valid {
				*field = p
			}
			ti++
		}
	}

	fill(initial, func(u *Underlying) *decimal.NullDecimal { return &u.InitialPrice })
	fill(knockIn, func(u *Underlying) *decimal.NullDecimal { return &u.KnockInPrice })
	fill(knockOut, func(u *Underlying) *decimal.NullDecimal { return &u.KnockOutPrice })
}

func parsePriceCell(cell string) decimal.NullDecimal {
	s := cell
	if m := priceCellRe.FindStringSubmatch(cell); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
