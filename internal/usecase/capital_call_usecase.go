package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/engine"
)

// CapitalCallUseCase issues capital calls against a fund's unfunded commitments.
type CapitalCallUseCase struct {
	txManager    TransactionManager
	fundRepo     FundRepository
	investorRepo InvestorRepository
	callRepo     CapitalCallRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      Metrics
	logger       zerolog.Logger
}

// NewCapitalCallUseCase creates a new CapitalCallUseCase.
func NewCapitalCallUseCase(
	txManager TransactionManager,
	fundRepo FundRepository,
	investorRepo InvestorRepository,
	callRepo CapitalCallRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics Metrics,
	logger zerolog.Logger,
) *CapitalCallUseCase {
	return &CapitalCallUseCase{
		txManager:    txManager,
		fundRepo:     fundRepo,
		investorRepo: investorRepo,
		callRepo:     callRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      metrics,
		logger:       logger.With().Str("component", "capital_calls").Logger(),
	}
}

// IssueCapitalCallInput represents input for issuing a capital call.
type IssueCapitalCallInput struct {
	FundID  string
	Amount  decimal.Decimal
	DueDate *time.Time
}

// IssueCapitalCall allocates a call across the fund's investors and records it.
// Investors are locked for the duration so concurrent calls cannot overdraw commitments.
func (uc *CapitalCallUseCase) IssueCapitalCall(ctx context.Context, input IssueCapitalCallInput) (*domain.CapitalCall, error) {
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	start := time.Now()

	var call *domain.CapitalCall
	operation := func() error {
		var err error
		call, err = uc.issue(ctx, input)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CapitalCallIssued(call.Amount, time.Since(start))
	}

	uc.logger.Info().
		Str("fund_id", call.FundID).
		Str("capital_call_id", call.ID).
		Str("requested", input.Amount.String()).
		Str("amount", call.Amount.String()).
		Int("investors", len(call.Allocations)).
		Msg("capital call issued")

	return call, nil
}

func (uc *CapitalCallUseCase) issue(ctx context.Context, input IssueCapitalCallInput) (*domain.CapitalCall, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	fund, err := uc.fundRepo.GetByID(txCtx, input.FundID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	investors, err := uc.investorRepo.ListByFundForUpdate(txCtx, tx, fund.ID)
	if err != nil {
		return nil, err
	}
	if len(investors) == 0 {
		return nil, domain.ErrNoInvestors
	}

	unfunded := domain.TotalUnfunded(investors)
	if input.Amount.GreaterThan(unfunded) {
		return nil, fmt.Errorf("%w: requested %s, unfunded %s", domain.ErrCallExceedsUnfunded, input.Amount, unfunded)
	}

	allocations, allocated, err := allocateCall(input.Amount, investors)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	call := &domain.CapitalCall{
		ID:          uc.idGen.Generate(),
		FundID:      fund.ID,
		Amount:      allocated,
		Allocations: allocations,
		DueDate:     input.DueDate,
		CreatedAt:   now,
	}

	byID := make(map[string]*domain.Investor, len(investors))
	for _, inv := range investors {
		byID[inv.ID] = inv
	}

	for _, alloc := range allocations {
		inv := byID[alloc.InvestorID]
		if err := inv.ValidateCall(alloc.Amount); err != nil {
			return nil, fmt.Errorf("%w: investor %s allocated %s, unfunded %s", err, inv.ID, alloc.Amount, inv.Unfunded())
		}
	}

	if err := uc.callRepo.Create(txCtx, tx, call); err != nil {
		return nil, err
	}

	payloadAllocations := make(map[string]string, len(allocations))
	for _, alloc := range allocations {
		inv := byID[alloc.InvestorID]
		inv.CalledCapital = inv.ApplyCall(alloc.Amount)
		inv.Version++
		inv.UpdatedAt = now
		if err := uc.investorRepo.UpdateCapital(txCtx, tx, inv); err != nil {
			return nil, err
		}

		payloadAllocations[alloc.InvestorID] = alloc.Amount.String()
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   call.ID,
		AggregateType: domain.AggregateTypeCapitalCall,
		EventType:     domain.EventTypeCapitalCallIssued,
		Payload: domain.CapitalCallIssuedEvent{
			CapitalCallID: call.ID,
			FundID:        fund.ID,
			Amount:        call.Amount.String(),
			Currency:      fund.Currency,
			Allocations:   payloadAllocations,
		}.ToPayload(),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return call, nil
}

// PreviewCapitalCall computes the allocations a call would produce without recording anything.
func (uc *CapitalCallUseCase) PreviewCapitalCall(ctx context.Context, fundID string, amount decimal.Decimal) (*domain.CapitalCall, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}

	fund, err := uc.fundRepo.GetByID(ctx, fundID)
	if err != nil {
		return nil, err
	}

	investors, err := uc.investorRepo.ListAllByFund(ctx, fund.ID)
	if err != nil {
		return nil, err
	}
	if len(investors) == 0 {
		return nil, domain.ErrNoInvestors
	}

	allocations, allocated, err := allocateCall(amount, investors)
	if err != nil {
		return nil, err
	}

	return &domain.CapitalCall{
		FundID:      fund.ID,
		Amount:      allocated,
		Allocations: allocations,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// allocateCall splits amount across investors and returns what was actually allocated.
// Tied remainders can leave a few cents of the request unallocated; the call records
// the allocated sum so it always equals what investors owe.
func allocateCall(amount decimal.Decimal, investors []*domain.Investor) ([]domain.CapitalCallAllocation, decimal.Decimal, error) {
	allocations := engine.AllocateCapitalCall(amount, domain.Commitments(investors))

	allocated := decimal.Zero
	for _, a := range allocations {
		allocated = allocated.Add(a.Amount)
	}
	if !allocated.IsPositive() {
		return nil, decimal.Zero, fmt.Errorf("%w: %s allocates nothing across %d investors", domain.ErrInvalidAmount, amount, len(investors))
	}

	return allocations, allocated, nil
}

// GetCapitalCall retrieves a capital call by ID.
func (uc *CapitalCallUseCase) GetCapitalCall(ctx context.Context, id string) (*domain.CapitalCall, error) {
	return uc.callRepo.GetByID(ctx, id)
}

// ListCapitalCalls retrieves the capital calls of a fund, newest first.
func (uc *CapitalCallUseCase) ListCapitalCalls(ctx context.Context, fundID string, limit, offset int) ([]*domain.CapitalCall, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.callRepo.ListByFund(ctx, fundID, limit, offset)
}
