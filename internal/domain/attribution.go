package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttributionMetrics are the performance figures of one investor as of a point in time.
// DPI + RVPI == TVPI and MOIC == TVPI hold exactly.
type AttributionMetrics struct {
	InvestorID          string
	AsOf                time.Time
	AgeYears            float64
	NAV                 decimal.Decimal
	DPI                 decimal.Decimal
	RVPI                decimal.Decimal
	TVPI                decimal.Decimal
	MOIC                decimal.Decimal
	GrossIRR            decimal.Decimal
	NetIRR              decimal.Decimal
	WithholdingIRR      decimal.Decimal
	AfterTaxIRR         decimal.Decimal
	WithholdingRatePct  decimal.Decimal
	EffectiveTaxRatePct decimal.Decimal
}

// FundAttribution aggregates investor metrics across a fund.
type FundAttribution struct {
	FundID           string
	AsOf             time.Time
	TotalCommitted   decimal.Decimal
	TotalCalled      decimal.Decimal
	TotalDistributed decimal.Decimal
	TotalNAV         decimal.Decimal
	DPI              decimal.Decimal
	RVPI             decimal.Decimal
	TVPI             decimal.Decimal
	Investors        []AttributionMetrics
}
