package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundTerms are the economic terms of a limited partnership agreement
// that drive the distribution waterfall and performance attribution.
type FundTerms struct {
	PreferredReturnPct  decimal.Decimal
	CarriedInterestPct  decimal.Decimal
	CatchUpPct          decimal.Decimal
	HurdleRatePct       decimal.Decimal
	ManagementFeeOffset bool
}

// DefaultFundTerms returns the market-standard 8/20/100 terms.
func DefaultFundTerms() FundTerms {
	return FundTerms{
		PreferredReturnPct: decimal.NewFromInt(8),
		CarriedInterestPct: decimal.NewFromInt(20),
		CatchUpPct:         decimal.NewFromInt(100),
		HurdleRatePct:      decimal.NewFromInt(8),
	}
}

// Validate checks every rate is within its allowed range.
func (t FundTerms) Validate() error {
	if err := ValidateRatePct("preferred_return", t.PreferredReturnPct); err != nil {
		return err
	}
	if err := ValidateCarryPct(t.CarriedInterestPct); err != nil {
		return err
	}
	if err := ValidateRatePct("catch_up", t.CatchUpPct); err != nil {
		return err
	}
	return ValidateRatePct("hurdle_rate", t.HurdleRatePct)
}

// Fund is a pooled investment vehicle whose investors share calls and distributions pro rata.
type Fund struct {
	ID        string
	Name      string
	Currency  string
	Terms     FundTerms
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WaterfallInput builds the engine input for distributing proceeds across the given investors.
func (f *Fund) WaterfallInput(proceeds decimal.Decimal, investors []*Investor) WaterfallInput {
	return WaterfallInput{
		TotalProceeds:       proceeds,
		PreferredReturnPct:  f.Terms.PreferredReturnPct,
		CarriedInterestPct:  f.Terms.CarriedInterestPct,
		CatchUpPct:          f.Terms.CatchUpPct,
		ManagementFeeOffset: f.Terms.ManagementFeeOffset,
		Commitments:         Commitments(investors),
	}
}
