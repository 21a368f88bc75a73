package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// parseDecimal parses a required decimal string field.
func parseDecimal(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", field, value)
	}

	return d, nil
}

// parseOptionalDecimal parses a decimal string field that may be omitted.
func parseOptionalDecimal(field string, value *string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}

	d, err := parseDecimal(field, *value)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// FundTermsRequest carries fund terms. Omitted rates keep the 8/20/100 defaults.
type FundTermsRequest struct {
	PreferredReturnPct  *string `json:"preferred_return_pct,omitempty"`
	CarriedInterestPct  *string `json:"carried_interest_pct,omitempty"`
	CatchUpPct          *string `json:"catch_up_pct,omitempty"`
	HurdleRatePct       *string `json:"hurdle_rate_pct,omitempty"`
	ManagementFeeOffset bool    `json:"management_fee_offset"`
}

// ToDomain converts to domain fund terms.
func (r *FundTermsRequest) ToDomain() (domain.FundTerms, error) {
	terms := domain.DefaultFundTerms()
	terms.ManagementFeeOffset = r.ManagementFeeOffset

	fields := []struct {
		name  string
		value *string
		dest  *decimal.Decimal
	}{
		{"preferred_return_pct", r.PreferredReturnPct, &terms.PreferredReturnPct},
		{"carried_interest_pct", r.CarriedInterestPct, &terms.CarriedInterestPct},
		{"catch_up_pct", r.CatchUpPct, &terms.CatchUpPct},
		{"hurdle_rate_pct", r.HurdleRatePct, &terms.HurdleRatePct},
	}
	for _, f := range fields {
		d, err := parseOptionalDecimal(f.name, f.value)
		if err != nil {
			return domain.FundTerms{}, err
		}
		if d != nil {
			*f.dest = *d
		}
	}

	return terms, nil
}

// CreateFundRequest represents a request to create a fund.
type CreateFundRequest struct {
	Name     string            `json:"name"`
	Currency string            `json:"currency"`
	Terms    *FundTermsRequest `json:"terms,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateFundRequest) ToUseCaseInput() (usecase.CreateFundInput, error) {
	input := usecase.CreateFundInput{
		Name:     r.Name,
		Currency: r.Currency,
	}

	if r.Terms != nil {
		terms, err := r.Terms.ToDomain()
		if err != nil {
			return usecase.CreateFundInput{}, err
		}
		input.Terms = &terms
	}

	return input, nil
}

// OnboardInvestorRequest represents a request to add an investor to a fund.
type OnboardInvestorRequest struct {
	Name                string     `json:"name"`
	Domicile            string     `json:"domicile"`
	Commitment          string     `json:"commitment"`
	EffectiveTaxRatePct *string    `json:"effective_tax_rate_pct,omitempty"`
	OnboardedAt         *time.Time `json:"onboarded_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OnboardInvestorRequest) ToUseCaseInput(fundID string) (usecase.OnboardInvestorInput, error) {
	commitment, err := parseDecimal("commitment", r.Commitment)
	if err != nil {
		return usecase.OnboardInvestorInput{}, err
	}

	taxRate, err := parseOptionalDecimal("effective_tax_rate_pct", r.EffectiveTaxRatePct)
	if err != nil {
		return usecase.OnboardInvestorInput{}, err
	}

	return usecase.OnboardInvestorInput{
		FundID:              fundID,
		Name:                r.Name,
		Domicile:            r.Domicile,
		Commitment:          commitment,
		EffectiveTaxRatePct: taxRate,
		OnboardedAt:         r.OnboardedAt,
	}, nil
}

// IssueCapitalCallRequest represents a request to issue a capital call.
type IssueCapitalCallRequest struct {
	Amount  string     `json:"amount"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IssueCapitalCallRequest) ToUseCaseInput(fundID string) (usecase.IssueCapitalCallInput, error) {
	amount, err := parseDecimal("amount", r.Amount)
	if err != nil {
		return usecase.IssueCapitalCallInput{}, err
	}

	return usecase.IssueCapitalCallInput{
		FundID:  fundID,
		Amount:  amount,
		DueDate: r.DueDate,
	}, nil
}

// ExecuteDistributionRequest represents a request to distribute proceeds.
type ExecuteDistributionRequest struct {
	Proceeds string `json:"proceeds"`
}

// ProceedsDecimal parses the proceeds amount.
func (r *ExecuteDistributionRequest) ProceedsDecimal() (decimal.Decimal, error) {
	return parseDecimal("proceeds", r.Proceeds)
}

// CommitmentRequest is one row of a commitment table.
type CommitmentRequest struct {
	InvestorID string `json:"investor_id"`
	Name       string `json:"name,omitempty"`
	Commitment string `json:"commitment"`
}

func commitmentsToDomain(rows []CommitmentRequest) ([]domain.InvestorCommitment, error) {
	commitments := make([]domain.InvestorCommitment, 0, len(rows))
	for i, row := range rows {
		amount, err := parseDecimal(fmt.Sprintf("commitments[%d].commitment", i), row.Commitment)
		if err != nil {
			return nil, err
		}
		commitments = append(commitments, domain.InvestorCommitment{
			InvestorID: row.InvestorID,
			Name:       row.Name,
			Commitment: amount,
		})
	}

	return commitments, nil
}

// CapitalCallCalculatorRequest asks for a stateless pro-rata allocation.
type CapitalCallCalculatorRequest struct {
	TotalAmount string              `json:"total_amount"`
	Commitments []CommitmentRequest `json:"commitments"`
}

// ToDomain converts to a domain capital call request.
func (r *CapitalCallCalculatorRequest) ToDomain() (domain.CapitalCallRequest, error) {
	total, err := parseDecimal("total_amount", r.TotalAmount)
	if err != nil {
		return domain.CapitalCallRequest{}, err
	}

	commitments, err := commitmentsToDomain(r.Commitments)
	if err != nil {
		return domain.CapitalCallRequest{}, err
	}

	return domain.CapitalCallRequest{TotalAmount: total, Commitments: commitments}, nil
}

// WaterfallCalculatorRequest asks for a stateless waterfall run.
type WaterfallCalculatorRequest struct {
	TotalProceeds       string              `json:"total_proceeds"`
	PreferredReturnPct  string              `json:"preferred_return_pct"`
	CarriedInterestPct  string              `json:"carried_interest_pct"`
	CatchUpPct          string              `json:"catch_up_pct"`
	ManagementFeeOffset bool                `json:"management_fee_offset"`
	Commitments         []CommitmentRequest `json:"commitments"`
}

// ToDomain converts to a domain waterfall input.
func (r *WaterfallCalculatorRequest) ToDomain() (domain.WaterfallInput, error) {
	var (
		in  domain.WaterfallInput
		err error
	)

	if in.TotalProceeds, err = parseDecimal("total_proceeds", r.TotalProceeds); err != nil {
		return domain.WaterfallInput{}, err
	}
	if in.PreferredReturnPct, err = parseDecimal("preferred_return_pct", r.PreferredReturnPct); err != nil {
		return domain.WaterfallInput{}, err
	}
	if in.CarriedInterestPct, err = parseDecimal("carried_interest_pct", r.CarriedInterestPct); err != nil {
		return domain.WaterfallInput{}, err
	}
	if in.CatchUpPct, err = parseDecimal("catch_up_pct", r.CatchUpPct); err != nil {
		return domain.WaterfallInput{}, err
	}
	if in.Commitments, err = commitmentsToDomain(r.Commitments); err != nil {
		return domain.WaterfallInput{}, err
	}
	in.ManagementFeeOffset = r.ManagementFeeOffset

	return in, nil
}

// AttributionCalculatorRequest asks for stateless attribution of one investor record.
type AttributionCalculatorRequest struct {
	InvestorID            string     `json:"investor_id"`
	Domicile              string     `json:"domicile"`
	Commitment            string     `json:"commitment"`
	CalledCapital         string     `json:"called_capital"`
	DistributionsReceived string     `json:"distributions_received"`
	OnboardedAt           time.Time  `json:"onboarded_at"`
	EffectiveTaxRatePct   *string    `json:"effective_tax_rate_pct,omitempty"`
	HurdleRatePct         *string    `json:"hurdle_rate_pct,omitempty"`
	AsOf                  *time.Time `json:"as_of,omitempty"`
}

// ToDomain converts to a domain investor record plus the optional hurdle override.
func (r *AttributionCalculatorRequest) ToDomain() (domain.InvestorRecord, *decimal.Decimal, error) {
	rec := domain.InvestorRecord{
		InvestorID:  r.InvestorID,
		Domicile:    r.Domicile,
		OnboardedAt: r.OnboardedAt,
	}

	var err error
	if rec.Commitment, err = parseDecimal("commitment", r.Commitment); err != nil {
		return domain.InvestorRecord{}, nil, err
	}
	if rec.CalledCapital, err = parseDecimal("called_capital", r.CalledCapital); err != nil {
		return domain.InvestorRecord{}, nil, err
	}
	if rec.DistributionsReceived, err = parseDecimal("distributions_received", r.DistributionsReceived); err != nil {
		return domain.InvestorRecord{}, nil, err
	}
	if rec.EffectiveTaxRatePct, err = parseOptionalDecimal("effective_tax_rate_pct", r.EffectiveTaxRatePct); err != nil {
		return domain.InvestorRecord{}, nil, err
	}

	hurdle, err := parseOptionalDecimal("hurdle_rate_pct", r.HurdleRatePct)
	if err != nil {
		return domain.InvestorRecord{}, nil, err
	}

	return rec, hurdle, nil
}
