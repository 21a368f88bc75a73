package engine

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

const hoursPerYear = 24 * 365.25

// AttributionConfig holds the policy constants of the attribution calculator.
// All rates are percentages.
type AttributionConfig struct {
	HurdleRatePct        float64
	CarryRatePct         float64
	ManagementFeeDragPct float64
	// NAVMarkupPct is the simple annual markup applied to called capital to estimate unrealized gain.
	NAVMarkupPct      float64
	DefaultTaxRatePct float64
	MinAgeYears       float64
	MaxAgeYears       float64
	// TVPIFloor keeps the IRR exponentiation away from zero and negative bases.
	TVPIFloor float64
}

// DefaultAttributionConfig returns the stable policy used for reporting.
func DefaultAttributionConfig() AttributionConfig {
	return AttributionConfig{
		HurdleRatePct:        8,
		CarryRatePct:         20,
		ManagementFeeDragPct: 2,
		NAVMarkupPct:         10,
		DefaultTaxRatePct:    20,
		MinAgeYears:          1,
		MaxAgeYears:          12,
		TVPIFloor:            0.0001,
	}
}

// Fingerprint is a short stable digest of the policy, for cache keys.
func (c AttributionConfig) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%g|%g|%g|%g|%g|%g|%g|%g",
		c.HurdleRatePct, c.CarryRatePct, c.ManagementFeeDragPct, c.NAVMarkupPct,
		c.DefaultTaxRatePct, c.MinAgeYears, c.MaxAgeYears, c.TVPIFloor)
	return strconv.FormatUint(h.Sum64(), 36)
}

// Attributor computes per-investor performance metrics under a fixed policy.
type Attributor struct {
	cfg AttributionConfig
}

// NewAttributor creates a new Attributor.
func NewAttributor(cfg AttributionConfig) *Attributor {
	return &Attributor{cfg: cfg}
}

// Config returns the policy the attributor runs with.
func (a *Attributor) Config() AttributionConfig {
	return a.cfg
}

// CalculateAttribution computes metrics with the default policy. A nil
// hurdleRatePct keeps the default 8% hurdle.
func CalculateAttribution(record domain.InvestorRecord, asOf time.Time, hurdleRatePct *decimal.Decimal) domain.AttributionMetrics {
	cfg := DefaultAttributionConfig()
	if hurdleRatePct != nil {
		cfg.HurdleRatePct = hurdleRatePct.InexactFloat64()
	}
	return NewAttributor(cfg).Calculate(record, asOf)
}

// Calculate computes the attribution metrics of one investor as of asOf.
// A zero asOf means now.
func (a *Attributor) Calculate(record domain.InvestorRecord, asOf time.Time) domain.AttributionMetrics {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	age := a.ageYears(record.OnboardedAt, asOf)
	withholding := WithholdingTaxRate(record.Domicile)
	taxRate := decimal.NewFromFloat(a.cfg.DefaultTaxRatePct)
	if record.EffectiveTaxRatePct != nil {
		taxRate = *record.EffectiveTaxRatePct
	}

	m := domain.AttributionMetrics{
		InvestorID:          record.InvestorID,
		AsOf:                asOf,
		AgeYears:            age,
		NAV:                 decimal.Zero,
		DPI:                 decimal.Zero,
		RVPI:                decimal.Zero,
		TVPI:                decimal.Zero,
		MOIC:                decimal.Zero,
		GrossIRR:            decimal.Zero,
		NetIRR:              decimal.Zero,
		WithholdingIRR:      decimal.Zero,
		AfterTaxIRR:         decimal.Zero,
		WithholdingRatePct:  withholding,
		EffectiveTaxRatePct: taxRate,
	}

	called := record.CalledCapital
	accruedGain := called.Mul(decimal.NewFromFloat(a.cfg.NAVMarkupPct / 100 * age))
	nav := called.Sub(record.DistributionsReceived).Add(accruedGain)
	m.NAV = domain.RoundMoney(decimal.Max(decimal.Zero, nav))

	if !called.IsPositive() {
		return m
	}

	m.DPI = record.DistributionsReceived.DivRound(called, domain.MultiplePrecision)
	m.RVPI = m.NAV.DivRound(called, domain.MultiplePrecision)
	m.TVPI = m.DPI.Add(m.RVPI)
	m.MOIC = m.TVPI

	tvpi := math.Max(m.TVPI.InexactFloat64(), a.cfg.TVPIFloor)
	gross := (math.Pow(tvpi, 1/age) - 1) * 100
	carryDrag := math.Max(0, gross-a.cfg.HurdleRatePct) * a.cfg.CarryRatePct / 100
	net := gross - a.cfg.ManagementFeeDragPct - carryDrag
	afterWithholding := net * (1 - withholding.InexactFloat64()/100)
	afterTax := afterWithholding * (1 - taxRate.InexactFloat64()/100)

	m.GrossIRR = pctDecimal(gross)
	m.NetIRR = pctDecimal(net)
	m.WithholdingIRR = pctDecimal(afterWithholding)
	m.AfterTaxIRR = pctDecimal(afterTax)

	return m
}

// ageYears is the time since onboarding clamped to the configured range.
// An unknown onboarding date counts as the minimum age.
func (a *Attributor) ageYears(onboardedAt, asOf time.Time) float64 {
	if onboardedAt.IsZero() {
		return a.cfg.MinAgeYears
	}

	years := asOf.Sub(onboardedAt).Hours() / hoursPerYear
	return math.Min(a.cfg.MaxAgeYears, math.Max(a.cfg.MinAgeYears, years))
}

// pctDecimal rounds a percentage to two places and maps non-finite values to zero.
func pctDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// CalculateFund computes metrics for every investor and pools them into fund totals.
// Pooled multiples follow the same identities as the per-investor ones.
func (a *Attributor) CalculateFund(fundID string, records []domain.InvestorRecord, asOf time.Time) domain.FundAttribution {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	fa := domain.FundAttribution{
		FundID:           fundID,
		AsOf:             asOf,
		TotalCommitted:   decimal.Zero,
		TotalCalled:      decimal.Zero,
		TotalDistributed: decimal.Zero,
		TotalNAV:         decimal.Zero,
		DPI:              decimal.Zero,
		RVPI:             decimal.Zero,
		TVPI:             decimal.Zero,
		Investors:        make([]domain.AttributionMetrics, 0, len(records)),
	}

	for _, r := range records {
		m := a.Calculate(r, asOf)
		fa.Investors = append(fa.Investors, m)
		fa.TotalCommitted = fa.TotalCommitted.Add(r.Commitment)
		fa.TotalCalled = fa.TotalCalled.Add(r.CalledCapital)
		fa.TotalDistributed = fa.TotalDistributed.Add(r.DistributionsReceived)
		fa.TotalNAV = fa.TotalNAV.Add(m.NAV)
	}

	if fa.TotalCalled.IsPositive() {
		fa.DPI = fa.TotalDistributed.DivRound(fa.TotalCalled, domain.MultiplePrecision)
		fa.RVPI = fa.TotalNAV.DivRound(fa.TotalCalled, domain.MultiplePrecision)
		fa.TVPI = fa.DPI.Add(fa.RVPI)
	}

	return fa
}
