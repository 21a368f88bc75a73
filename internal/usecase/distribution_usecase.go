package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/engine"
)

// DistributionUseCase runs fund proceeds through the waterfall and records the result.
type DistributionUseCase struct {
	txManager    TransactionManager
	fundRepo     FundRepository
	investorRepo InvestorRepository
	distRepo     DistributionRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      Metrics
	logger       zerolog.Logger
}

// NewDistributionUseCase creates a new DistributionUseCase.
func NewDistributionUseCase(
	txManager TransactionManager,
	fundRepo FundRepository,
	investorRepo InvestorRepository,
	distRepo DistributionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics Metrics,
	logger zerolog.Logger,
) *DistributionUseCase {
	return &DistributionUseCase{
		txManager:    txManager,
		fundRepo:     fundRepo,
		investorRepo: investorRepo,
		distRepo:     distRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      metrics,
		logger:       logger.With().Str("component", "distributions").Logger(),
	}
}

// ExecuteDistribution distributes proceeds across the fund's investors under the fund terms.
func (uc *DistributionUseCase) ExecuteDistribution(ctx context.Context, fundID string, proceeds decimal.Decimal) (*domain.Distribution, error) {
	if err := domain.ValidatePositiveAmount(proceeds); err != nil {
		return nil, err
	}

	start := time.Now()

	var dist *domain.Distribution
	operation := func() error {
		var err error
		dist, err = uc.execute(ctx, fundID, proceeds)
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
		uc.metrics.DistributionExecuted(dist.Proceeds, dist.Result.GPCarry, time.Since(start))
	}

	logEvent := uc.logger.Info()
	if !dist.Result.RoundingResidual.IsZero() {
		logEvent = uc.logger.Warn()
	}
	logEvent.
		Str("fund_id", dist.FundID).
		Str("distribution_id", dist.ID).
		Str("proceeds", dist.Proceeds.String()).
		Str("gp_carry", dist.Result.GPCarry.String()).
		Str("rounding_residual", dist.Result.RoundingResidual.String()).
		Msg("distribution executed")

	return dist, nil
}

func (uc *DistributionUseCase) execute(ctx context.Context, fundID string, proceeds decimal.Decimal) (*domain.Distribution, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	fund, err := uc.fundRepo.GetByID(txCtx, fundID)
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

	result := engine.CalculateWaterfall(fund.WaterfallInput(proceeds, investors))

	now := time.Now().UTC()
	dist := &domain.Distribution{
		ID:        uc.idGen.Generate(),
		FundID:    fund.ID,
		Proceeds:  result.TotalProceeds,
		Result:    result,
		CreatedAt: now,
	}

	if err := uc.distRepo.Create(txCtx, tx, dist); err != nil {
		return nil, err
	}

	for _, inv := range investors {
		amount := result.AmountFor(inv.ID)
		if amount.IsZero() {
			continue
		}

		inv.DistributionsReceived = inv.ApplyDistribution(amount)
		inv.Version++
		inv.UpdatedAt = now
		if err := uc.investorRepo.UpdateCapital(txCtx, tx, inv); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   dist.ID,
		AggregateType: domain.AggregateTypeDistribution,
		EventType:     domain.EventTypeDistributionExecuted,
		Payload: domain.DistributionExecutedEvent{
			DistributionID:   dist.ID,
			FundID:           fund.ID,
			Proceeds:         dist.Proceeds.String(),
			GPCarry:          result.GPCarry.String(),
			TotalDistributed: result.TotalDistributed.String(),
			Currency:         fund.Currency,
		}.ToPayload(),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return dist, nil
}

// PreviewDistribution runs the waterfall over the current investors without recording anything.
func (uc *DistributionUseCase) PreviewDistribution(ctx context.Context, fundID string, proceeds decimal.Decimal) (*domain.Distribution, error) {
	if err := domain.ValidatePositiveAmount(proceeds); err != nil {
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

	result := engine.CalculateWaterfall(fund.WaterfallInput(proceeds, investors))

	return &domain.Distribution{
		FundID:    fund.ID,
		Proceeds:  result.TotalProceeds,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// GetDistribution retrieves a distribution by ID.
func (uc *DistributionUseCase) GetDistribution(ctx context.Context, id string) (*domain.Distribution, error) {
	return uc.distRepo.GetByID(ctx, id)
}

// ListDistributions retrieves the distributions of a fund, newest first.
func (uc *DistributionUseCase) ListDistributions(ctx context.Context, fundID string, limit, offset int) ([]*domain.Distribution, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.distRepo.ListByFund(ctx, fundID, limit, offset)
}
