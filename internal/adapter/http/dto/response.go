package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// FundTermsResponse represents fund terms in API responses.
type FundTermsResponse struct {
	PreferredReturnPct  decimal.Decimal `json:"preferred_return_pct"`
	CarriedInterestPct  decimal.Decimal `json:"carried_interest_pct"`
	CatchUpPct          decimal.Decimal `json:"catch_up_pct"`
	HurdleRatePct       decimal.Decimal `json:"hurdle_rate_pct"`
	ManagementFeeOffset bool            `json:"management_fee_offset"`
}

// FundResponse represents a fund in API responses.
type FundResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	Terms     FundTermsResponse `json:"terms"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FundFromDomain converts a domain fund to a response.
func FundFromDomain(f *domain.Fund) *FundResponse {
	return &FundResponse{
		ID:       f.ID,
		Name:     f.Name,
		Currency: f.Currency,
		Terms: FundTermsResponse{
			PreferredReturnPct:  f.Terms.PreferredReturnPct,
			CarriedInterestPct:  f.Terms.CarriedInterestPct,
			CatchUpPct:          f.Terms.CatchUpPct,
			HurdleRatePct:       f.Terms.HurdleRatePct,
			ManagementFeeOffset: f.Terms.ManagementFeeOffset,
		},
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ListFundsResponse is a page of funds.
type ListFundsResponse struct {
	Funds []*FundResponse `json:"funds"`
	Total int64           `json:"total"`
}

// FundsFromDomain converts domain funds to a list response.
func FundsFromDomain(funds []*domain.Fund) ListFundsResponse {
	result := make([]*FundResponse, len(funds))
	for i, f := range funds {
		result[i] = FundFromDomain(f)
	}
	return ListFundsResponse{Funds: result, Total: int64(len(result))}
}

// InvestorResponse represents an investor in API responses.
type InvestorResponse struct {
	ID                    string           `json:"id"`
	FundID                string           `json:"fund_id"`
	Name                  string           `json:"name"`
	Domicile              string           `json:"domicile"`
	Commitment            decimal.Decimal  `json:"commitment"`
	CalledCapital         decimal.Decimal  `json:"called_capital"`
	Unfunded              decimal.Decimal  `json:"unfunded"`
	DistributionsReceived decimal.Decimal  `json:"distributions_received"`
	EffectiveTaxRatePct   *decimal.Decimal `json:"effective_tax_rate_pct,omitempty"`
	OnboardedAt           time.Time        `json:"onboarded_at"`
	Version               int64            `json:"version"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// InvestorFromDomain converts a domain investor to a response.
func InvestorFromDomain(inv *domain.Investor) *InvestorResponse {
	return &InvestorResponse{
		ID:                    inv.ID,
		FundID:                inv.FundID,
		Name:                  inv.Name,
		Domicile:              inv.Domicile,
		Commitment:            inv.Commitment,
		CalledCapital:         inv.CalledCapital,
		Unfunded:              inv.Unfunded(),
		DistributionsReceived: inv.DistributionsReceived,
		EffectiveTaxRatePct:   inv.EffectiveTaxRatePct,
		OnboardedAt:           inv.OnboardedAt,
		Version:               inv.Version,
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
}

// ListInvestorsResponse is a page of investors.
type ListInvestorsResponse struct {
	Investors []*InvestorResponse `json:"investors"`
	Total     int64               `json:"total"`
}

// InvestorsFromDomain converts domain investors to a list response.
func InvestorsFromDomain(investors []*domain.Investor) ListInvestorsResponse {
	result := make([]*InvestorResponse, len(investors))
	for i, inv := range investors {
		result[i] = InvestorFromDomain(inv)
	}
	return ListInvestorsResponse{Investors: result, Total: int64(len(result))}
}

// AllocationResponse is one investor's share of a capital call.
type AllocationResponse struct {
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
	SharePct   decimal.Decimal `json:"share_pct"`
}

// AllocationsFromDomain converts allocations to responses.
func AllocationsFromDomain(allocs []domain.CapitalCallAllocation) []AllocationResponse {
	result := make([]AllocationResponse, len(allocs))
	for i, a := range allocs {
		result[i] = AllocationResponse{InvestorID: a.InvestorID, Amount: a.Amount, SharePct: a.SharePct}
	}
	return result
}

// CapitalCallResponse represents a capital call in API responses.
// ID and CreatedAt are empty for previews.
type CapitalCallResponse struct {
	ID          string               `json:"id,omitempty"`
	FundID      string               `json:"fund_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Allocations []AllocationResponse `json:"allocations"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	CreatedAt   *time.Time           `json:"created_at,omitempty"`
}

// CapitalCallFromDomain converts a domain capital call to a response.
func CapitalCallFromDomain(c *domain.CapitalCall) *CapitalCallResponse {
	resp := &CapitalCallResponse{
		ID:          c.ID,
		FundID:      c.FundID,
		Amount:      c.Amount,
		Allocations: AllocationsFromDomain(c.Allocations),
		DueDate:     c.DueDate,
	}
	if !c.CreatedAt.IsZero() {
		createdAt := c.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// ListCapitalCallsResponse is a page of capital calls.
type ListCapitalCallsResponse struct {
	CapitalCalls []*CapitalCallResponse `json:"capital_calls"`
	Total        int64                  `json:"total"`
}

// CapitalCallsFromDomain converts capital calls to a list response.
func CapitalCallsFromDomain(calls []*domain.CapitalCall) ListCapitalCallsResponse {
	result := make([]*CapitalCallResponse, len(calls))
	for i, c := range calls {
		result[i] = CapitalCallFromDomain(c)
	}
	return ListCapitalCallsResponse{CapitalCalls: result, Total: int64(len(result))}
}

// TierResponse is one waterfall tier.
type TierResponse struct {
	Sequence        int             `json:"sequence"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Recipient       string          `json:"recipient"`
	Amount          decimal.Decimal `json:"amount"`
	InvestorAmount  decimal.Decimal `json:"investor_amount"`
	ManagerAmount   decimal.Decimal `json:"manager_amount"`
	ManagerSplitPct decimal.Decimal `json:"manager_split_pct"`
}

// InvestorDistributionResponse is one investor's share of a waterfall.
type InvestorDistributionResponse struct {
	InvestorID         string            `json:"investor_id"`
	Name               string            `json:"name,omitempty"`
	Commitment         decimal.Decimal   `json:"commitment"`
	Amount             decimal.Decimal   `json:"amount"`
	EffectiveReturnPct decimal.Decimal   `json:"effective_return_pct"`
	TierAmounts        []decimal.Decimal `json:"tier_amounts"`
}

// WaterfallResponse represents a waterfall result.
type WaterfallResponse struct {
	Tiers            []TierResponse                 `json:"tiers"`
	Investors        []InvestorDistributionResponse `json:"investors"`
	TotalProceeds    decimal.Decimal                `json:"total_proceeds"`
	GPCarry          decimal.Decimal                `json:"gp_carry"`
	TotalDistributed decimal.Decimal                `json:"total_distributed"`
	RoundingResidual decimal.Decimal                `json:"rounding_residual"`
}

// WaterfallFromDomain converts a waterfall output to a response.
func WaterfallFromDomain(out domain.WaterfallOutput) WaterfallResponse {
	tiers := make([]TierResponse, len(out.Tiers))
	for i, t := range out.Tiers {
		tiers[i] = TierResponse{
			Sequence:        t.Sequence,
			Name:            t.Name,
			Description:     t.Description,
			Recipient:       string(t.Recipient),
			Amount:          t.Amount,
			InvestorAmount:  t.InvestorAmount,
			ManagerAmount:   t.ManagerAmount,
			ManagerSplitPct: t.ManagerSplitPct,
		}
	}

	investors := make([]InvestorDistributionResponse, len(out.Investors))
	for i, inv := range out.Investors {
		investors[i] = InvestorDistributionResponse{
			InvestorID:         inv.InvestorID,
			Name:               inv.Name,
			Commitment:         inv.Commitment,
			Amount:             inv.Amount,
			EffectiveReturnPct: inv.EffectiveReturnPct,
			TierAmounts:        inv.TierAmounts,
		}
	}

	return WaterfallResponse{
		Tiers:            tiers,
		Investors:        investors,
		TotalProceeds:    out.TotalProceeds,
		GPCarry:          out.GPCarry,
		TotalDistributed: out.TotalDistributed,
		RoundingResidual: out.RoundingResidual,
	}
}

// DistributionResponse represents a distribution in API responses.
type DistributionResponse struct {
	ID        string            `json:"id,omitempty"`
	FundID    string            `json:"fund_id"`
	Proceeds  decimal.Decimal   `json:"proceeds"`
	Waterfall WaterfallResponse `json:"waterfall"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
}

// DistributionFromDomain converts a distribution to a response.
func DistributionFromDomain(d *domain.Distribution) *DistributionResponse {
	resp := &DistributionResponse{
		ID:        d.ID,
		FundID:    d.FundID,
		Proceeds:  d.Proceeds,
		Waterfall: WaterfallFromDomain(d.Result),
	}
	if !d.CreatedAt.IsZero() {
		createdAt := d.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// ListDistributionsResponse is a page of distributions.
type ListDistributionsResponse struct {
	Distributions []*DistributionResponse `json:"distributions"`
	Total         int64                   `json:"total"`
}

// DistributionsFromDomain converts distributions to a list response.
func DistributionsFromDomain(dists []*domain.Distribution) ListDistributionsResponse {
	result := make([]*DistributionResponse, len(dists))
	for i, d := range dists {
		result[i] = DistributionFromDomain(d)
	}
	return ListDistributionsResponse{Distributions: result, Total: int64(len(result))}
}

// AttributionResponse represents one investor's performance metrics.
type AttributionResponse struct {
	InvestorID          string          `json:"investor_id"`
	AsOf                time.Time       `json:"as_of"`
	AgeYears            float64         `json:"age_years"`
	NAV                 decimal.Decimal `json:"nav"`
	DPI                 decimal.Decimal `json:"dpi"`
	RVPI                decimal.Decimal `json:"rvpi"`
	TVPI                decimal.Decimal `json:"tvpi"`
	MOIC                decimal.Decimal `json:"moic"`
	GrossIRR            decimal.Decimal `json:"gross_irr_pct"`
	NetIRR              decimal.Decimal `json:"net_irr_pct"`
	WithholdingIRR      decimal.Decimal `json:"withholding_irr_pct"`
	AfterTaxIRR         decimal.Decimal `json:"after_tax_irr_pct"`
	WithholdingRatePct  decimal.Decimal `json:"withholding_rate_pct"`
	EffectiveTaxRatePct decimal.Decimal `json:"effective_tax_rate_pct"`
}

// AttributionFromDomain converts attribution metrics to a response.
func AttributionFromDomain(m domain.AttributionMetrics) AttributionResponse {
	return AttributionResponse{
		InvestorID:          m.InvestorID,
		AsOf:                m.AsOf,
		AgeYears:            m.AgeYears,
		NAV:                 m.NAV,
		DPI:                 m.DPI,
		RVPI:                m.RVPI,
		TVPI:                m.TVPI,
		MOIC:                m.MOIC,
		GrossIRR:            m.GrossIRR,
		NetIRR:              m.NetIRR,
		WithholdingIRR:      m.WithholdingIRR,
		AfterTaxIRR:         m.AfterTaxIRR,
		WithholdingRatePct:  m.WithholdingRatePct,
		EffectiveTaxRatePct: m.EffectiveTaxRatePct,
	}
}

// FundAttributionResponse represents pooled fund metrics.
type FundAttributionResponse struct {
	FundID           string                `json:"fund_id"`
	AsOf             time.Time             `json:"as_of"`
	TotalCommitted   decimal.Decimal       `json:"total_committed"`
	TotalCalled      decimal.Decimal       `json:"total_called"`
	TotalDistributed decimal.Decimal       `json:"total_distributed"`
	TotalNAV         decimal.Decimal       `json:"total_nav"`
	DPI              decimal.Decimal       `json:"dpi"`
	RVPI             decimal.Decimal       `json:"rvpi"`
	TVPI             decimal.Decimal       `json:"tvpi"`
	Investors        []AttributionResponse `json:"investors"`
}

// FundAttributionFromDomain converts fund attribution to a response.
func FundAttributionFromDomain(f *domain.FundAttribution) *FundAttributionResponse {
	investors := make([]AttributionResponse, len(f.Investors))
	for i, m := range f.Investors {
		investors[i] = AttributionFromDomain(m)
	}

	return &FundAttributionResponse{
		FundID:           f.FundID,
		AsOf:             f.AsOf,
		TotalCommitted:   f.TotalCommitted,
		TotalCalled:      f.TotalCalled,
		TotalDistributed: f.TotalDistributed,
		TotalNAV:         f.TotalNAV,
		DPI:              f.DPI,
		RVPI:             f.RVPI,
		TVPI:             f.TVPI,
		Investors:        investors,
	}
}

// InvestorReconciliationResponse compares one investor's balances with history.
type InvestorReconciliationResponse struct {
	InvestorID             string          `json:"investor_id"`
	RecordedCalled         decimal.Decimal `json:"recorded_called"`
	AllocatedCalled        decimal.Decimal `json:"allocated_called"`
	CalledDifference       decimal.Decimal `json:"called_difference"`
	RecordedDistributions  decimal.Decimal `json:"recorded_distributions"`
	DistributedAmount      decimal.Decimal `json:"distributed_amount"`
	DistributionDifference decimal.Decimal `json:"distribution_difference"`
	IsReconciled           bool            `json:"is_reconciled"`
}

// ReconciliationResponse is a fund reconciliation report.
type ReconciliationResponse struct {
	FundID             string                           `json:"fund_id"`
	TotalCalled        decimal.Decimal                  `json:"total_called"`
	TotalAllocated     decimal.Decimal                  `json:"total_allocated"`
	TotalDistributions decimal.Decimal                  `json:"total_distributions"`
	TotalDistributed   decimal.Decimal                  `json:"total_distributed"`
	Investors          []InvestorReconciliationResponse `json:"investors"`
	Discrepancies      int                              `json:"discrepancies"`
	Consistent         bool                             `json:"consistent"`
	CheckedAt          time.Time                        `json:"checked_at"`
}

// ReconciliationFromReport converts a reconciliation report to a response.
func ReconciliationFromReport(r *usecase.FundReconciliationReport) *ReconciliationResponse {
	investors := make([]InvestorReconciliationResponse, len(r.Investors))
	for i, inv := range r.Investors {
		investors[i] = InvestorReconciliationResponse{
			InvestorID:             inv.InvestorID,
			RecordedCalled:         inv.RecordedCalled,
			AllocatedCalled:        inv.AllocatedCalled,
			CalledDifference:       inv.CalledDifference,
			RecordedDistributions:  inv.RecordedDistributions,
			DistributedAmount:      inv.DistributedAmount,
			DistributionDifference: inv.DistributionDifference,
			IsReconciled:           inv.IsReconciled,
		}
	}

	return &ReconciliationResponse{
		FundID:             r.FundID,
		TotalCalled:        r.TotalCalled,
		TotalAllocated:     r.TotalAllocated,
		TotalDistributions: r.TotalDistributions,
		TotalDistributed:   r.TotalDistributed,
		Investors:          investors,
		Discrepancies:      r.Discrepancies,
		Consistent:         r.Consistent,
		CheckedAt:          r.CheckedAt,
	}
}

// WithholdingResponse reports the withholding rate for a domicile.
type WithholdingResponse struct {
	Domicile string          `json:"domicile"`
	RatePct  decimal.Decimal `json:"rate_pct"`
	Default  bool            `json:"default"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
