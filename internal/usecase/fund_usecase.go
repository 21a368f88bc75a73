package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

// FundUseCase handles fund and investor registration.
type FundUseCase struct {
	txManager    TransactionManager
	fundRepo     FundRepository
	investorRepo InvestorRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      Metrics
}

// NewFundUseCase creates a new FundUseCase.
func NewFundUseCase(
	txManager TransactionManager,
	fundRepo FundRepository,
	investorRepo InvestorRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics Metrics,
) *FundUseCase {
	return &FundUseCase{
		txManager:    txManager,
		fundRepo:     fundRepo,
		investorRepo: investorRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// CreateFundInput represents input for creating a fund.
// Nil terms fall back to DefaultFundTerms.
type CreateFundInput struct {
	Name     string
	Currency string
	Terms    *domain.FundTerms
}

// CreateFund registers a new fund.
func (uc *FundUseCase) CreateFund(ctx context.Context, input CreateFundInput) (*domain.Fund, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateFundName(name); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	terms := domain.DefaultFundTerms()
	if input.Terms != nil {
		terms = *input.Terms
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fund := &domain.Fund{
		ID:        uc.idGen.Generate(),
		Name:      name,
		Currency:  currency,
		Terms:     terms,
		CreatedAt: now,
		UpdatedAt: now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.fundRepo.Create(txCtx, tx, fund); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   fund.ID,
		AggregateType: domain.AggregateTypeFund,
		EventType:     domain.EventTypeFundCreated,
		Payload: map[string]any{
			"fund_id":               fund.ID,
			"name":                  fund.Name,
			"currency":              fund.Currency,
			"preferred_return":      terms.PreferredReturnPct.String(),
			"carried_interest":      terms.CarriedInterestPct.String(),
			"catch_up":              terms.CatchUpPct.String(),
			"hurdle_rate":           terms.HurdleRatePct.String(),
			"management_fee_offset": terms.ManagementFeeOffset,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.FundCreated()
	}

	return fund, nil
}

// GetFund retrieves a fund by ID.
func (uc *FundUseCase) GetFund(ctx context.Context, id string) (*domain.Fund, error) {
	return uc.fundRepo.GetByID(ctx, id)
}

// ListFunds retrieves funds with pagination.
func (uc *FundUseCase) ListFunds(ctx context.Context, limit, offset int) ([]*domain.Fund, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.fundRepo.List(ctx, limit, offset)
}

// OnboardInvestorInput represents input for registering an investor in a fund.
type OnboardInvestorInput struct {
	FundID              string
	Name                string
	Domicile            string
	Commitment          decimal.Decimal
	EffectiveTaxRatePct *decimal.Decimal
	OnboardedAt         *time.Time
}

// OnboardInvestor registers an investor and its commitment in a fund.
func (uc *FundUseCase) OnboardInvestor(ctx context.Context, input OnboardInvestorInput) (*domain.Investor, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateInvestorName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePositiveAmount(input.Commitment); err != nil {
		return nil, err
	}
	if input.EffectiveTaxRatePct != nil {
		if err := domain.ValidateRatePct("effective_tax_rate", *input.EffectiveTaxRatePct); err != nil {
			return nil, err
		}
	}

	fund, err := uc.fundRepo.GetByID(ctx, input.FundID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	onboardedAt := now
	if input.OnboardedAt != nil {
		onboardedAt = input.OnboardedAt.UTC()
	}

	investor := &domain.Investor{
		ID:                    uc.idGen.Generate(),
		FundID:                fund.ID,
		Name:                  name,
		Domicile:              strings.TrimSpace(input.Domicile),
		Commitment:            input.Commitment,
		CalledCapital:         decimal.Zero,
		DistributionsReceived: decimal.Zero,
		EffectiveTaxRatePct:   input.EffectiveTaxRatePct,
		OnboardedAt:           onboardedAt,
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.investorRepo.Create(txCtx, tx, investor); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   investor.ID,
		AggregateType: domain.AggregateTypeInvestor,
		EventType:     domain.EventTypeInvestorOnboarded,
		Payload: map[string]any{
			"investor_id": investor.ID,
			"fund_id":     fund.ID,
			"name":        investor.Name,
			"domicile":    investor.Domicile,
			"commitment":  investor.Commitment.String(),
			"currency":    fund.Currency,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvestorOnboarded()
	}

	return investor, nil
}

// GetInvestor retrieves an investor by ID.
func (uc *FundUseCase) GetInvestor(ctx context.Context, id string) (*domain.Investor, error) {
	return uc.investorRepo.GetByID(ctx, id)
}

// ListInvestors retrieves the investors of a fund with pagination.
func (uc *FundUseCase) ListInvestors(ctx context.Context, fundID string, limit, offset int) ([]*domain.Investor, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	if _, err := uc.fundRepo.GetByID(ctx, fundID); err != nil {
		return nil, err
	}

	return uc.investorRepo.ListByFund(ctx, fundID, limit, offset)
}
