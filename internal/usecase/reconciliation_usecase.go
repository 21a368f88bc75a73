package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

// ReconciliationUseCase checks investor balances against the recorded calls and distributions
type ReconciliationUseCase struct {
	fundRepo     FundRepository
	investorRepo InvestorRepository
	callRepo     CapitalCallRepository
	distRepo     DistributionRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	fundRepo FundRepository,
	investorRepo InvestorRepository,
	callRepo CapitalCallRepository,
	distRepo DistributionRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		fundRepo:     fundRepo,
		investorRepo: investorRepo,
		callRepo:     callRepo,
		distRepo:     distRepo,
	}
}

// InvestorReconciliation compares one investor's running balances with the event history
type InvestorReconciliation struct {
	InvestorID             string
	RecordedCalled         decimal.Decimal
	AllocatedCalled        decimal.Decimal
	CalledDifference       decimal.Decimal
	RecordedDistributions  decimal.Decimal
	DistributedAmount      decimal.Decimal
	DistributionDifference decimal.Decimal
	IsReconciled           bool
}

// FundReconciliationReport is the outcome of a fund reconciliation
type FundReconciliationReport struct {
	FundID             string
	TotalCalled        decimal.Decimal
	TotalAllocated     decimal.Decimal
	TotalDistributions decimal.Decimal
	TotalDistributed   decimal.Decimal
	Investors          []*InvestorReconciliation
	Discrepancies      int
	Consistent         bool
	CheckedAt          time.Time
}

// CheckFund reconciles every investor of a fund.
// The report is returned even when it is inconsistent, together with an error wrapping ErrInconsistentFund.
func (uc *ReconciliationUseCase) CheckFund(ctx context.Context, fundID string) (*FundReconciliationReport, error) {
	fund, err := uc.fundRepo.GetByID(ctx, fundID)
	if err != nil {
		return nil, err
	}

	investors, err := uc.investorRepo.ListAllByFund(ctx, fund.ID)
	if err != nil {
		return nil, err
	}

	allocated, err := uc.callRepo.SumAllocationsByInvestor(ctx, fund.ID)
	if err != nil {
		return nil, err
	}

	distributed, err := uc.distRepo.SumByInvestor(ctx, fund.ID)
	if err != nil {
		return nil, err
	}

	report := &FundReconciliationReport{
		FundID:             fund.ID,
		TotalCalled:        decimal.Zero,
		TotalAllocated:     decimal.Zero,
		TotalDistributions: decimal.Zero,
		TotalDistributed:   decimal.Zero,
		Investors:          make([]*InvestorReconciliation, 0, len(investors)),
		CheckedAt:          time.Now().UTC(),
	}

	for _, inv := range investors {
		result := reconcileInvestor(inv, allocated[inv.ID], distributed[inv.ID])
		report.Investors = append(report.Investors, result)

		report.TotalCalled = report.TotalCalled.Add(result.RecordedCalled)
		report.TotalAllocated = report.TotalAllocated.Add(result.AllocatedCalled)
		report.TotalDistributions = report.TotalDistributions.Add(result.RecordedDistributions)
		report.TotalDistributed = report.TotalDistributed.Add(result.DistributedAmount)

		if !result.IsReconciled {
			report.Discrepancies++
		}
	}

	report.Consistent = report.Discrepancies == 0
	if !report.Consistent {
		return report, fmt.Errorf(
			"%w: %d investors differ, called=%s allocated=%s received=%s distributed=%s",
			domain.ErrInconsistentFund,
			report.Discrepancies,
			report.TotalCalled.String(),
			report.TotalAllocated.String(),
			report.TotalDistributions.String(),
			report.TotalDistributed.String(),
		)
	}

	return report, nil
}

func reconcileInvestor(inv *domain.Investor, allocated, distributed decimal.Decimal) *InvestorReconciliation {
	calledDiff := inv.CalledCapital.Sub(allocated)
	distDiff := inv.DistributionsReceived.Sub(distributed)

	return &InvestorReconciliation{
		InvestorID:             inv.ID,
		RecordedCalled:         inv.CalledCapital,
		AllocatedCalled:        allocated,
		CalledDifference:       calledDiff,
		RecordedDistributions:  inv.DistributionsReceived,
		DistributedAmount:      distributed,
		DistributionDifference: distDiff,
		IsReconciled:           calledDiff.IsZero() && distDiff.IsZero(),
	}
}
