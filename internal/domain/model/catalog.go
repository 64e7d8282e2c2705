package model

// AcademicLevel is one row of the static level catalog.
type AcademicLevel struct {
	Key       string
	Name      string
	Emoji     string
	BasePrice float64 // euros per page
}

// DeadlineOption is one row of the static deadline catalog.
type DeadlineOption struct {
	Key        string
	Label      string
	Multiplier float64
}

// CryptoOption is a payable crypto currency with its payout address.
type CryptoOption struct {
	Code    string
	Name    string
	Emoji   string
	Address string
}

// BankDetails are the bank-transfer coordinates shown to the user.
type BankDetails struct {
	IBAN   string
	BIC    string
	Holder string
	Bank   string
}

// Catalog bundles the static reference data the conversation flow reads.
// Loaded once at startup, immutable afterwards. Slices keep the display
// order of the keyboards stable.
type Catalog struct {
	Levels         []AcademicLevel
	Deadlines      []DeadlineOption
	Crypto         []CryptoOption
	Bank           BankDetails
	CeilingPerPage float64

	levelByKey    map[string]AcademicLevel
	deadlineByKey map[string]DeadlineOption
	cryptoByCode  map[string]CryptoOption
}

// NewCatalog builds the lookup indexes over the given rows.
func NewCatalog(levels []AcademicLevel, deadlines []DeadlineOption, crypto []CryptoOption, bank BankDetails, ceilingPerPage float64) *Catalog {
	c := &Catalog{
		Levels:         levels,
		Deadlines:      deadlines,
		Crypto:         crypto,
		Bank:           bank,
		CeilingPerPage: ceilingPerPage,
		levelByKey:     make(map[string]AcademicLevel, len(levels)),
		deadlineByKey:  make(map[string]DeadlineOption, len(deadlines)),
		cryptoByCode:   make(map[string]CryptoOption, len(crypto)),
	}
	for _, l := range levels {
		c.levelByKey[l.Key] = l
	}
	for _, d := range deadlines {
		c.deadlineByKey[d.Key] = d
	}
	for _, cr := range crypto {
		c.cryptoByCode[cr.Code] = cr
	}
	return c
}

func (c *Catalog) Level(key string) (AcademicLevel, bool) {
	l, ok := c.levelByKey[key]
	return l, ok
}

func (c *Catalog) Deadline(key string) (DeadlineOption, bool) {
	d, ok := c.deadlineByKey[key]
	return d, ok
}

func (c *Catalog) CryptoByCode(code string) (CryptoOption, bool) {
	cr, ok := c.cryptoByCode[code]
	return cr, ok
}

// OverridePayment replaces payment coordinates with values from
// configuration. Zero-valued bank fields and unknown crypto codes are
// ignored. Must be called before the catalog is shared.
func (c *Catalog) OverridePayment(bank BankDetails, cryptoAddrs map[string]string) {
	if bank.IBAN != "" {
		c.Bank.IBAN = bank.IBAN
	}
	if bank.BIC != "" {
		c.Bank.BIC = bank.BIC
	}
	if bank.Holder != "" {
		c.Bank.Holder = bank.Holder
	}
	if bank.Bank != "" {
		c.Bank.Bank = bank.Bank
	}
	for i, cr := range c.Crypto {
		if addr, ok := cryptoAddrs[cr.Code]; ok && addr != "" {
			c.Crypto[i].Address = addr
			cr.Address = addr
			c.cryptoByCode[cr.Code] = cr
		}
	}
}

// DefaultCatalog returns the built-in service catalog. Payment coordinates
// can be overridden from configuration at startup.
func DefaultCatalog() *Catalog {
	levels := []AcademicLevel{
		{Key: "lycee", Name: "Lycée", Emoji: "🎓", BasePrice: 18.0},
		{Key: "bachelor", Name: "Licence", Emoji: "📚", BasePrice: 22.0},
		{Key: "master", Name: "Master", Emoji: "🎯", BasePrice: 26.0},
		{Key: "phd", Name: "Doctorat", Emoji: "🔬", BasePrice: 32.0},
	}
	deadlines := []DeadlineOption{
		{Key: "6h", Label: "Express - 6h", Multiplier: 1.8},
		{Key: "12h", Label: "Urgent - 12h", Multiplier: 1.7},
		{Key: "24h", Label: "Rapide - 24h", Multiplier: 1.5},
		{Key: "48h", Label: "Standard - 48h", Multiplier: 1.3},
		{Key: "3d", Label: "Normal - 3j", Multiplier: 1.2},
		{Key: "7d", Label: "Planifié - 7j", Multiplier: 1.0},
		{Key: "14d", Label: "Économique - 14j", Multiplier: 0.9},
	}
	crypto := []CryptoOption{
		{Code: "BTC", Name: "Bitcoin", Emoji: "₿", Address: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"},
		{Code: "ETH", Name: "Ethereum", Emoji: "Ξ", Address: "0x742d35Cc6641C02e8743C1C5C1fEa8efCa7fA6B8"},
		{Code: "USDT", Name: "Tether", Emoji: "₮", Address: "TQrZ2GZkfYZjqokhS7H2FfJ6AvL9vE8RbA"},
	}
	bank := BankDetails{
		IBAN:   "FR76 1234 5678 9012 3456 7890 123",
		BIC:    "SOGEFRPP",
		Holder: "EduMaster Services",
		Bank:   "Société Générale",
	}
	return NewCatalog(levels, deadlines, crypto, bank, 50.0)
}
