package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Verxtics/termsheet-extractor/internal/profile"
	moneypkg "github.com/Verxtics/termsheet-extractor/pkg/money"
)

// Shared patterns used by the generic fallback tiers. Issuer-specific
// phrasing lives in the profile registry, not here.
var (
	isoCurrencyRe = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|AUD|CAD|CHF|HKD|SGD)\b`)

	percentTokenRe = regexp.MustCompile(`(\d+\.?\d*)%`)

	genericNotionalRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)notional.*?([0-9,]+)`),
		regexp.MustCompile(`(?i)principal.*?([0-9,]+)`),
		regexp.MustCompile(`(?i)amount.*?([0-9,]+)`),
		regexp.MustCompile(`(?i)issue size.*?([0-9,]+)`),
	}

	upfrontFeeRe = regexp.MustCompile(`(?i)(?:UF|Management Fee)[:\s]+(\d+(?:\.\d+)?)%`)
	revenueRe    = regexp.MustCompile(`(?i)Revenue[:\s]+(?:AUD|USD|EUR|GBP)?\s*\$?([0-9,]+(?:\.[0-9]{2})?)`)

	numericDateRe = regexp.MustCompile(`(\d{1,2})[\/\-\s](\d{1,2})[\/\-\s](\d{4})`)

	// Labeled date patterns are tried before the positional heuristic:
	// when a document tags its dates, the tags win.
	labeledDateRes = map[string][]*regexp.Regexp{
		"issue": {
			regexp.MustCompile(`(?i)Issue Date[:\s]+(\d{1,2})[\/\-\s](\d{1,2})[\/\-\s](\d{4})`),
			regexp.MustCompile(`(?i)Issue Date[:\s]+(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`),
		},
		"strike": {
			regexp.MustCompile(`(?i)Strike Date[:\s]+(\d{1,2})[\/\-\s](\d{1,2})[\/\-\s](\d{4})`),
			regexp.MustCompile(`(?i)Strike Date[:\s]+(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`),
		},
		"maturity": {
			regexp.MustCompile(`(?i)Maturity Date[:\s]+(\d{1,2})[\/\-\s](\d{1,2})[\/\-\s](\d{4})`),
			regexp.MustCompile(`(?i)Maturity Date[:\s]+(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`),
		},
	}

	valuationHeaderKeywords = []string{"OBSERVATION", "VALUATION", "COUPON", "DATE"}
)

var monthsByName = map[string]time.Month{
	"JANUARY": time.January, "FEBRUARY": time.February, "MARCH": time.March,
	"APRIL": time.April, "MAY": time.May, "JUNE": time.June,
	"JULY": time.July, "AUGUST": time.August, "SEPTEMBER": time.September,
	"OCTOBER": time.October, "NOVEMBER": time.November, "DECEMBER": time.December,
}

// snowballNoiseThreshold filters out sub-1% tokens (day counts, fees) when
// scanning escalating coupon schedules for the representative rate.
const snowballNoiseThreshold = 1.0

// Extractor applies a profile's pattern cascade to document text. One
// instance serves all issuers: dispatch is data-driven through the profile,
// not through per-issuer types.
type Extractor struct{}

// New returns a field extractor.
func New() *Extractor { return &Extractor{} }

// Extract runs every field strategy against the text and returns the partial
// field set. Absent fields stay at their zero/invalid values; extraction
// itself never fails.
func (e *Extractor) Extract(text string, tables [][][]string, prof *profile.Profile) Fields {
	f := Fields{
		IssuerKey:  prof.Key,
		IssuerName: prof.DisplayName,
	}

	f.ISIN = e.extractISIN(text, prof)
	f.ProductName = e.extractProductName(text, prof)
	f.CouponAnnual = e.extractCoupon(text, prof)
	f.KnockInPct = e.extractBarrier(text, prof.Patterns(profile.CategoryKnockIn), prof.KnockInDefault)
	f.KnockOutPct = e.extractBarrier(text, prof.Patterns(profile.CategoryKnockOut), prof.KnockOutDefault)
	f.Currency = e.extractCurrency(text, prof)
	f.Notional = e.extractNotional(text, prof)
	f.UpfrontFee = e.matchDecimal(upfrontFeeRe, text)
	f.Revenue = e.matchDecimal(revenueRe, text)
	f.IssueDate, f.StrikeDate, f.MaturityDate = e.extractDates(text, prof)
	f.ValuationDates = e.extractValuationDates(tables)

	return f
}

// extractISIN returns the first 2-letter-country + 10-alphanumeric match, or
// empty. The scan is case-sensitive: ISINs are upper-case by definition.
func (e *Extractor) extractISIN(text string, prof *profile.Profile) string {
	re := prof.FirstPattern(profile.CategoryISIN)
	if re == nil {
		return ""
	}
	return re.FindString(text)
}

func (e *Extractor) extractProductName(text string, prof *profile.Profile) string {
	for _, re := range prof.Patterns(profile.CategoryProductName) {
		if m := re.FindStringSubmatch(text); m != nil {
			if len(m) > 1 && m[1] != "" {
				return strings.TrimSpace(m[1])
			}
			return strings.TrimSpace(m[0])
		}
	}
	return ""
}

// extractCoupon resolves the headline annual rate on the raw percent scale;
// the normalization stage applies the uniform 0-1 rule afterwards.
// Quarterly-dialect rules annualize the matched per-period rate here, since
// only the matching rule knows what period its phrasing describes. Absence is
// a genuinely empty value: coupon is never defaulted.
func (e *Extractor) extractCoupon(text string, prof *profile.Profile) decimal.NullDecimal {
	if prof.CouponMode() == profile.CouponSnowballMax {
		return e.extractSnowballCoupon(text)
	}

	resolvers := make([]Resolver[decimal.Decimal], 0, 4)
	for _, rule := range prof.CouponResolvers() {
		re, annualize := rule.Re, rule.Annualize
		resolvers = append(resolvers, func() (decimal.Decimal, bool) {
			m := re.FindStringSubmatch(text)
			if m == nil || len(m) < 2 {
				return decimal.Decimal{}, false
			}
			v, ok := parseNumber(m[1])
			if !ok {
				return decimal.Decimal{}, false
			}
			return v.Mul(decimal.NewFromInt(int64(annualize))), true
		})
	}

	if v, ok := Chain(resolvers...); ok {
		return decimal.NewNullDecimal(v)
	}
	return decimal.NullDecimal{}
}

// extractSnowballCoupon scans every percentage token above the noise
// threshold and takes the maximum — escalating schedules quote each step, and
// the final step is the representative annual rate.
func (e *Extractor) extractSnowballCoupon(text string) decimal.NullDecimal {
	var best decimal.Decimal
	found := false
	for _, m := range percentTokenRe.FindAllStringSubmatch(text, -1) {
		v, ok := parseNumber(m[1])
		if !ok {
			continue
		}
		if v.LessThanOrEqual(decimal.NewFromFloat(snowballNoiseThreshold)) {
			continue
		}
		if !found || v.GreaterThan(best) {
			best = v
			found = true
		}
	}
	if !found {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(best)
}

// extractBarrier tries the profile's barrier patterns in order, falling back
// to the issuer's historical default. A zero default means the profile has no
// default on record and the field stays empty.
func (e *Extractor) extractBarrier(text string, patterns []*regexp.Regexp, fallback float64) decimal.NullDecimal {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 2 {
			continue
		}
		if v, ok := parseNumber(m[1]); ok {
			return decimal.NewNullDecimal(v)
		}
	}
	if fallback > 0 {
		return decimal.NewNullDecimal(decimal.NewFromFloat(fallback))
	}
	return decimal.NullDecimal{}
}

// extractCurrency cascades issuer phrase patterns, the generic ISO-code word
// scan, then currency-symbol heuristics; USD is the documented last resort.
func (e *Extractor) extractCurrency(text string, prof *profile.Profile) string {
	ccy, _ := Chain(
		func() (string, bool) {
			for _, re := range prof.Patterns(profile.CategoryCurrency) {
				m := re.FindStringSubmatch(text)
				if m == nil {
					continue
				}
				if len(m) > 1 && m[1] != "" {
					return strings.ToUpper(m[1]), true
				}
				// Phrase-only patterns ("Australian Dollar ... (AUD)")
				// carry the code inside the matched text.
				if code := isoCurrencyRe.FindString(strings.ToUpper(m[0])); code != "" {
					return code, true
				}
			}
			return "", false
		},
		func() (string, bool) {
			code := isoCurrencyRe.FindString(text)
			return code, code != ""
		},
		func() (string, bool) {
			switch {
			case strings.Contains(text, "$"):
				return "USD", true
			case strings.Contains(text, "€"):
				return "EUR", true
			case strings.Contains(text, "£"):
				return "GBP", true
			}
			return "", false
		},
		Constant("USD"),
	)
	return ccy
}

// extractNotional tries the issuer's labeled-amount patterns in order, then
// the generic notional/principal/amount scan. Empty when nothing parses.
func (e *Extractor) extractNotional(text string, prof *profile.Profile) decimal.NullDecimal {
	for _, re := range prof.Patterns(profile.CategoryNotional) {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 2 {
			continue
		}
		if v, ok := parseAmount(m[1]); ok {
			return decimal.NewNullDecimal(v)
		}
	}
	for _, re := range genericNotionalRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := parseAmount(m[1]); ok {
			return decimal.NewNullDecimal(v)
		}
	}
	return decimal.NullDecimal{}
}

// parseAmount parses a captured amount token, tolerating currency symbols
// and codes ("AUD 1,250,000.00", "$100,000.00") that some notional patterns
// leave in the capture group. Only positive amounts count.
func parseAmount(s string) (decimal.Decimal, bool) {
	m, err := moneypkg.NewFromString(s, moneypkg.USD)
	if err != nil || !m.IsPositive() {
		return decimal.Decimal{}, false
	}
	return m.ToDecimal(), true
}

func (e *Extractor) matchDecimal(re *regexp.Regexp, text string) decimal.NullDecimal {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.NullDecimal{}
	}
	if v, ok := parseNumber(m[1]); ok {
		return decimal.NewNullDecimal(v)
	}
	return decimal.NullDecimal{}
}

// extractDates resolves the issue/strike/maturity triple. Labeled patterns
// ("Issue Date: ...") win when present; otherwise the issuer's date pattern
// is scanned for all occurrences and assigned positionally — first as issue,
// second as strike, last as maturity. The positional pass only fills dates
// the labeled pass left unset.
func (e *Extractor) extractDates(text string, prof *profile.Profile) (issue, strike, maturity time.Time) {
	labeled := func(key string) time.Time {
		for _, re := range labeledDateRes[key] {
			if m := re.FindStringSubmatch(text); m != nil {
				if t, ok := parseDateParts(m[1], m[2], m[3], false); ok {
					return t
				}
			}
		}
		return time.Time{}
	}
	issue = labeled("issue")
	strike = labeled("strike")
	maturity = labeled("maturity")

	re := prof.FirstPattern(profile.CategoryDates)
	if re == nil {
		return issue, strike, maturity
	}

	var found []time.Time
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if len(m) < 4 {
			continue
		}
		if t, ok := parseDateParts(m[1], m[2], m[3], prof.OrdinalDates); ok {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return issue, strike, maturity
	}

	if issue.IsZero() {
		issue = found[0]
	}
	if strike.IsZero() && len(found) > 1 {
		strike = found[1]
	}
	if maturity.IsZero() {
		maturity = found[len(found)-1]
	}
	return issue, strike, maturity
}

// extractValuationDates pulls observation dates out of schedule tables. Only
// tables whose header row names an observation concept are scanned; when no
// such table exists the list stays empty and the normalization stage may
// synthesize a quarterly schedule instead.
func (e *Extractor) extractValuationDates(tables [][][]string) []time.Time {
	const maxValuationDates = 12

	var out []time.Time
	seen := make(map[string]bool)

	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		header := strings.ToUpper(strings.Join(table[0], " "))
		matched := false
		for _, kw := range valuationHeaderKeywords {
			if strings.Contains(header, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		for _, row := range table[1:] {
			for _, cell := range row {
				m := numericDateRe.FindStringSubmatch(cell)
				if m == nil {
					continue
				}
				t, ok := parseDateParts(m[1], m[2], m[3], false)
				if !ok {
					continue
				}
				key := t.Format("2006-01-02")
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, t)
				if len(out) >= maxValuationDates {
					return out
				}
			}
		}
	}
	return out
}

// parseDateParts interprets a three-group date match. The middle group may be
// a month name; ordinal dialects ("February 3rd, 2025") put the month name
// first. Numeric dates are read day-first, swapping when the day slot can
// only be a month.
func parseDateParts(a, b, c string, ordinal bool) (time.Time, bool) {
	year, err := strconv.Atoi(c)
	if err != nil || year < 1900 || year > 2200 {
		return time.Time{}, false
	}

	if ordinal {
		month, ok := monthsByName[strings.ToUpper(a)]
		if !ok {
			return time.Time{}, false
		}
		day, err := strconv.Atoi(b)
		if err != nil {
			return time.Time{}, false
		}
		return makeDate(year, month, day)
	}

	if month, ok := monthsByName[strings.ToUpper(b)]; ok {
		day, err := strconv.Atoi(a)
		if err != nil {
			return time.Time{}, false
		}
		return makeDate(year, month, day)
	}

	day, err := strconv.Atoi(a)
	if err != nil {
		return time.Time{}, false
	}
	monthNum, err := strconv.Atoi(b)
	if err != nil {
		return time.Time{}, false
	}
	// Day-first by convention; an impossible month means the document wrote
	// month-first.
	if monthNum > 12 && day <= 12 {
		day, monthNum = monthNum, day
	}
	if monthNum < 1 || monthNum > 12 {
		return time.Time{}, false
	}
	return makeDate(year, time.Month(monthNum), day)
}

func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// parseNumber parses a human-formatted number ("1,250,000.50"), returning
// false for anything that does not survive comma stripping.
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
