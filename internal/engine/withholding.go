package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// defaultWithholdingRatePct applies to every domicile missing from the table.
const defaultWithholdingRatePct = 15

// withholdingRates holds dividend withholding rates in percent, keyed by
// lower-cased domicile name or ISO 3166 alpha-2 code.
var withholdingRates = map[string]decimal.Decimal{
	"united states":          decimal.NewFromInt(30),
	"us":                     decimal.NewFromInt(30),
	"united kingdom":         decimal.Zero,
	"gb":                     decimal.Zero,
	"cayman islands":         decimal.Zero,
	"ky":                     decimal.Zero,
	"british virgin islands": decimal.Zero,
	"vg":                     decimal.Zero,
	"bermuda":                decimal.Zero,
	"bm":                     decimal.Zero,
	"jersey":                 decimal.Zero,
	"je":                     decimal.Zero,
	"guernsey":               decimal.Zero,
	"gg":                     decimal.Zero,
	"singapore":              decimal.Zero,
	"sg":                     decimal.Zero,
	"hong kong":              decimal.Zero,
	"hk":                     decimal.Zero,
	"united arab emirates":   decimal.Zero,
	"ae":                     decimal.Zero,
	"luxembourg":             decimal.NewFromInt(15),
	"lu":                     decimal.NewFromInt(15),
	"netherlands":            decimal.NewFromInt(15),
	"nl":                     decimal.NewFromInt(15),
	"ireland":                decimal.NewFromInt(25),
	"ie":                     decimal.NewFromInt(25),
	"canada":                 decimal.NewFromInt(25),
	"ca":                     decimal.NewFromInt(25),
	"france":                 decimal.NewFromInt(25),
	"fr":                     decimal.NewFromInt(25),
	"germany":                decimal.RequireFromString("26.375"),
	"de":                     decimal.RequireFromString("26.375"),
	"switzerland":            decimal.NewFromInt(35),
	"ch":                     decimal.NewFromInt(35),
	"japan":                  decimal.RequireFromString("20.42"),
	"jp":                     decimal.RequireFromString("20.42"),
	"australia":              decimal.NewFromInt(30),
	"au":                     decimal.NewFromInt(30),
	"spain":                  decimal.NewFromInt(19),
	"es":                     decimal.NewFromInt(19),
	"italy":                  decimal.NewFromInt(26),
	"it":                     decimal.NewFromInt(26),
	"sweden":                 decimal.NewFromInt(30),
	"se":                     decimal.NewFromInt(30),
	"norway":                 decimal.NewFromInt(25),
	"no":                     decimal.NewFromInt(25),
	"denmark":                decimal.NewFromInt(27),
	"dk":                     decimal.NewFromInt(27),
	"china":                  decimal.NewFromInt(10),
	"cn":                     decimal.NewFromInt(10),
	"south korea":            decimal.NewFromInt(22),
	"kr":                     decimal.NewFromInt(22),
	"india":                  decimal.NewFromInt(20),
	"in":                     decimal.NewFromInt(20),
}

// LookupWithholdingRate returns the table rate for a domicile and whether it was listed.
func LookupWithholdingRate(domicile string) (decimal.Decimal, bool) {
	rate, ok := withholdingRates[strings.ToLower(strings.TrimSpace(domicile))]
	return rate, ok
}

// WithholdingTaxRate returns the withholding rate for a domicile in percent,
// falling back to 15 when the domicile is not listed.
func WithholdingTaxRate(domicile string) decimal.Decimal {
	if rate, ok := LookupWithholdingRate(domicile); ok {
		return rate
	}
	return decimal.NewFromInt(defaultWithholdingRatePct)
}
