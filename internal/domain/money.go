package domain

import "github.com/shopspring/decimal"

// CurrencyPrecision is the number of decimal places money amounts are rounded to.
const CurrencyPrecision int32 = 2

// MultiplePrecision is the number of decimal places DPI/RVPI/TVPI are reported with.
const MultiplePrecision int32 = 4

var (
	// Hundred converts between percentages and fractions.
	Hundred = decimal.NewFromInt(100)

	// MinorUnit is the smallest representable money amount (one cent).
	MinorUnit = decimal.New(1, -CurrencyPrecision)
)

// RoundMoney rounds an amount to currency precision, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPrecision)
}

// PctToFraction turns 8 into 0.08.
func PctToFraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(Hundred)
}
