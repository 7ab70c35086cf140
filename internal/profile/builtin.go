package profile

// builtinSpecs declares the issuers the desk currently receives termsheets
// from. Registration order matters: the classifier scans identifiers in this
// order and the first hit wins.
//
// Pattern notes: barrier and notional phrasing is issuer house style and was
// collected from historical termsheets; the ISIN shape is universal. Searches
// are case-insensitive except ISIN, which is upper-case by definition.
func builtinSpecs() []Spec {
	return []Spec{
		{
			Key:         "morgan_stanley",
			DisplayName: "Morgan Stanley & Co. International PLC",
			Identifiers: []string{"MORGAN STANLEY", "MS&Co", "Morgan Stanley & Co"},
			NamePrefix:  "MS",
			Patterns: map[Category][]string{
				CategoryISIN:    {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryKnockIn: {`(?i)(\d+)%.*(?:knock.?in|barrier)`},
				CategoryDates:   {`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`},
			},
			CouponRules: []CouponRule{
				{Pattern: `(?i)(\d+\.?\d*)\s*%.*(?:coupon|rate)`},
			},
			// No house barrier defaults on record; knock-out falls back to
			// the generic 95% assumption.
			KnockOutDefault: 0.95,
		},
		{
			Key:         "macquarie",
			DisplayName: "Macquarie Bank Limited",
			Identifiers: []string{"MACQUARIE", "MBL", "Macquarie Bank Limited", "EQUITY LINKED NOTE"},
			NamePrefix:  "MBL",
			Patterns: map[Category][]string{
				CategoryISIN:        {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryProductName: {`(EQUITY LINKED NOTE)`},
				CategoryKnockIn:     {`(?i)Knock-in Price.*?(\d+\.?\d*)%.*?Initial Price`},
				CategoryKnockOut:    {`(?i)Knock-out Price.*?(\d+\.?\d*)%.*?Initial Price`},
				CategoryNotional:    {`(?i)Aggregate Nominal Amount.*?AUD\s*([\d,]+(?:\.\d{2})?)`},
				CategoryDates:       {`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`},
				CategoryUnderlying:  {`(ORCL\.N|AVGO\.OQ|META\.OQ|NVDA\.OQ)`},
			},
			CouponRules: []CouponRule{
				// Base rate of the escalation formula "N% x (1 + Number of Periods)".
				{Pattern: `(?i)(\d+\.?\d*)%`},
			},
			KnockInDefault:  0.60,
			KnockOutDefault: 0.90,
		},
		{
			Key:         "citigroup",
			DisplayName: "Citigroup Global Markets Holdings Inc.",
			Identifiers: []string{"CITIGROUP", "CITI", "Citigroup Global Markets Holdings", "CGMHI", "Snowballing Autocall Notes"},
			NamePrefix:  "CG",
			Patterns: map[Category][]string{
				CategoryISIN:        {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryProductName: {`(Snowballing Autocall Notes[^"]*)`},
				CategoryKnockIn:     {`(?i)Knock-In Barrier Level.*?(\d+\.?\d*)%`},
				CategoryKnockOut:    {`(?i)Autocall Barrier Level.*?(\d+\.?\d*)%`},
				CategoryCurrency: {
					`(?i)Australian Dollar.*?\(AUD\)`,
					`(?i)Currency.*?(AUD|USD|EUR|GBP|CHF)`,
				},
				CategoryNotional: {
					`(?i)Issue Size.*?AUD\s*([\d,]+)`,
					`(?i)Denomination.*?AUD\s*([\d,]+)`,
				},
				CategoryDates:      {`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`},
				CategoryUnderlying: {`(Banco Santander SA|BNP Paribas|Societe Generale|UBS Group AG)`},
			},
			CouponMode:      CouponSnowballMax,
			KnockInDefault:  0.60,
			KnockOutDefault: 0.90,
		},
		{
			Key:         "goldman_sachs",
			DisplayName: "Goldman Sachs International",
			Identifiers: []string{"GOLDMAN SACHS", "GS&Co", "Goldman Sachs"},
			NamePrefix:  "GS",
			Patterns: map[Category][]string{
				CategoryISIN:    {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryKnockIn: {`(?i)(\d+)%.*(?:protection|barrier)`},
				CategoryDates:   {`(\d{1,2})/(\d{1,2})/(\d{4})`},
			},
			CouponRules: []CouponRule{
				{Pattern: `(?i)(\d+\.?\d*)\s*%.*(?:coupon|quarterly)`},
			},
			KnockOutDefault: 0.95,
		},
		{
			Key:         "ubs",
			DisplayName: "UBS Investments Australia Pty Ltd",
			Identifiers: []string{"UBS", "UBS Investments Australia", "UBS AG", "Callable Equity Basket", "UBS Equity Goals"},
			NamePrefix:  "UBS",
			Patterns: map[Category][]string{
				CategoryISIN:        {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryProductName: {`(Callable Equity Basket[^"]*|UBS Equity Goals)`},
				CategoryKnockIn:     {`(?i)Kick-in Level.*?(\d+)%.*?Initial Level`},
				CategoryKnockOut:    {`(?i)Call Level.*?(\d+)%.*?Initial Level`},
				CategoryNotional:    {`(?i)(?:Issue proceeds|Issue Amount).*?AUD\s*([\d,]+)`},
				CategoryDates:       {`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`},
				CategoryUnderlying:  {`(Alphabet Inc|Meta Platforms Inc|Microsoft Corporation|Oracle Corporation)`},
			},
			CouponRules: []CouponRule{
				{Pattern: `(?i)Snowball Coupon Rate.*?(\d+\.?\d*)%`},
			},
			KnockInDefault:  0.60,
			KnockOutDefault: 0.90,
		},
		{
			Key:          "bnp_paribas",
			DisplayName:  "BNP Paribas Issuance B.V.",
			Identifiers:  []string{"BNP PARIBAS", "BNP Paribas Issuance", "Stock Basket Periodic Callable", "Certificate"},
			NamePrefix:   "BNP",
			OrdinalDates: true,
			Patterns: map[Category][]string{
				CategoryISIN:        {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryProductName: {`(\d+\s+Months.*?Certificates)`},
				CategoryKnockIn:     {`(?i)(\d+\.?\d*)%.*?Initial Spot Price`},
				CategoryKnockOut:    {`(?i)(\d+)%.*?Initial Spot Price`},
				CategoryNotional:    {`(?i)Issue Amount.*?AUD\s*([\d,]+)`},
				CategoryDates:       {`(\w+)\s+(\d{1,2})(?:st|nd|rd|th),\s+(\d{4})`},
				CategoryUnderlying:  {`(Alphabet Inc|Meta Platforms Inc|NVIDIA Corp|MICROSOFT CORP)`},
			},
			CouponRules: []CouponRule{
				// "C = N% p.a." formula carries the annual rate directly.
				{Pattern: `(?i)C\s*=\s*(\d+)%\s*p\.a\.`},
			},
			KnockInDefault:  0.60,
			KnockOutDefault: 0.90,
		},
		{
			Key:         "barclays",
			DisplayName: "Barclays Bank PLC",
			Identifiers: []string{"BARCLAYS", "Barclays Bank PLC", "Periodic Snowball Autocall", "Quanto AUD"},
			NamePrefix:  "BARC",
			Patterns: map[Category][]string{
				CategoryISIN:        {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryProductName: {`(Periodic Snowball Autocall|Quanto AUD[^"]*)`},
				CategoryKnockIn:     {`(?i)Knock-in Event.*?(\d+)%`},
				CategoryKnockOut:    {`(?i)Autocall Trigger.*?(\d+)%`},
				CategoryNotional: {
					`(?i)Aggregate Nominal Amount.*?AUD\s*([\d,]+)`,
					`(?i)Specified Denomination.*?AUD\s*([\d,]+)`,
				},
				CategoryDates:      {`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`},
				CategoryUnderlying: {`(ALPHABET INC|MICROSOFT CORP|META PLATFORMS|NVIDIA CORP)`},
			},
			CouponRules: []CouponRule{
				{Pattern: `(?i)(\d+\.?\d*)%.*?per quarter`, Annualize: 4},
				{Pattern: `(?i)(\d+\.?\d*)%.*?final`},
			},
			KnockInDefault:  0.60,
			KnockOutDefault: 0.90,
		},
		{
			Key:         "natixis",
			DisplayName: "NATIXIS",
			Identifiers: []string{"NATIXIS", "EMTN", "Autocall Incremental", "no-Knock-In-Coupon"},
			NamePrefix:  "NX",
			Patterns: map[Category][]string{
				CategoryISIN:        {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryProductName: {`(EMTN.*?Autocall Incremental|Autocall Incremental[^"]*)`},
				CategoryKnockIn:     {`(?i)Knock-in Event.*?(\d+)%`},
				CategoryKnockOut:    {`(?i)(\d+)%.*?Initial Price`},
				CategoryNotional: {
					`(?i)Aggregate nominal amount.*?AUD\s*([\d,]+)`,
					`(?i)Denomination.*?AUD\s*([\d,]+)`,
				},
				CategoryDates:      {`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`},
				CategoryUnderlying: {`(Banco Bilbao|Barclays PLC|UBS Group|Societe Generale)`},
			},
			CouponRules: []CouponRule{
				{Pattern: `(?i)(\d+\.?\d*)%.*?quarterly`, Annualize: 4},
				{Pattern: `(?i)Automatic Early Redemption Rate.*?(\d+\.?\d*)%`},
			},
			KnockInDefault:  0.60,
			KnockOutDefault: 0.90,
		},
		{
			Key:         GenericKey,
			DisplayName: "Unknown Issuer",
			Patterns: map[Category][]string{
				CategoryISIN:    {`[A-Z]{2}[A-Z0-9]{10}`},
				CategoryKnockIn: {`(?i)(\d+)%`},
				CategoryDates:   {`(\d{1,2})[\/\-\s](\d{1,2})[\/\-\s](\d{4})`},
			},
			CouponRules: []CouponRule{
				{Pattern: `(?i)(\d+\.?\d*)\s*%`},
			},
			KnockOutDefault: 0.95,
		},
	}
}

// Builtin compiles the built-in registry with the embedded issuer catalog.
func Builtin() (*Registry, error) {
	catalog, err := loadEmbeddedCatalog()
	if err != nil {
		return nil, err
	}
	return NewRegistry(builtinSpecs(), catalog)
}

// MustBuiltin is Builtin for wiring paths where a bad built-in table is a
// programming error.
func MustBuiltin() *Registry {
	r, err := Builtin()
	if err != nil {
		panic(err)
	}
	return r
}
