package currency

import "strings"

// symbols maps ISO currency codes to display symbols. Projects carry a
// single currency tag; no conversion happens anywhere in the service.
var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"AUD": "A$",
	"CAD": "C$",
	"CHF": "CHF",
	"AED": "د.إ",
	"SAR": "﷼",
	"BDT": "৳",
}

// DefaultCode is used when a project carries no currency tag.
const DefaultCode = "GBP"

// Symbol returns the display symbol for a currency code, falling back to
// the normalized code itself for currencies the table does not know.
func Symbol(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		normalized = DefaultCode
	}
	if s, ok := symbols[normalized]; ok {
		return s
	}
	return normalized
}
