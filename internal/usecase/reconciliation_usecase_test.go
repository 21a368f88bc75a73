package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
	"github.com/iho/fundflow/internal/usecase/mocks"
)

func TestReconciliationUseCase_CheckFund(t *testing.T) {
	tests := []struct {
		name          string
		investors     []*domain.Investor
		allocated     map[string]decimal.Decimal
		distributed   map[string]decimal.Decimal
		wantErr       error
		discrepancies int
	}{
		{
			name: "balanced fund",
			investors: []*domain.Investor{
				testInvestor("inv-a", "60", "30", "74.4"),
				testInvestor("inv-b", "40", "20", "49.6"),
			},
			allocated:   map[string]decimal.Decimal{"inv-a": d("30"), "inv-b": d("20")},
			distributed: map[string]decimal.Decimal{"inv-a": d("74.4"), "inv-b": d("49.6")},
		},
		{
			name: "nothing recorded yet",
			investors: []*domain.Investor{
				testInvestor("inv-a", "60", "0", "0"),
			},
			allocated:   map[string]decimal.Decimal{},
			distributed: map[string]decimal.Decimal{},
		},
		{
			name: "called capital drifted",
			investors: []*domain.Investor{
				testInvestor("inv-a", "60", "31", "0"),
				testInvestor("inv-b", "40", "20", "0"),
			},
			allocated:     map[string]decimal.Decimal{"inv-a": d("30"), "inv-b": d("20")},
			distributed:   map[string]decimal.Decimal{},
			wantErr:       domain.ErrInconsistentFund,
			discrepancies: 1,
		},
		{
			name: "distribution missing from balances",
			investors: []*domain.Investor{
				testInvestor("inv-a", "60", "0", "0"),
				testInvestor("inv-b", "40", "0", "0"),
			},
			allocated:     map[string]decimal.Decimal{},
			distributed:   map[string]decimal.Decimal{"inv-a": d("1"), "inv-b": d("2")},
			wantErr:       domain.ErrInconsistentFund,
			discrepancies: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			fundRepo := mocks.NewMockFundRepository(ctrl)
			investorRepo := mocks.NewMockInvestorRepository(ctrl)
			callRepo := mocks.NewMockCapitalCallRepository(ctrl)
			distRepo := mocks.NewMockDistributionRepository(ctrl)

			fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(testFund(), nil)
			investorRepo.EXPECT().ListAllByFund(gomock.Any(), "fund-1").Return(tt.investors, nil)
			callRepo.EXPECT().SumAllocationsByInvestor(gomock.Any(), "fund-1").Return(tt.allocated, nil)
			distRepo.EXPECT().SumByInvestor(gomock.Any(), "fund-1").Return(tt.distributed, nil)

			uc := usecase.NewReconciliationUseCase(fundRepo, investorRepo, callRepo, distRepo)
			report, err := uc.CheckFund(context.Background(), "fund-1")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if report == nil {
				t.Fatal("expected a report even when inconsistent")
			}
			if report.Discrepancies != tt.discrepancies {
				t.Errorf("expected %d discrepancies, got %d", tt.discrepancies, report.Discrepancies)
			}
			if report.Consistent != (tt.discrepancies == 0) {
				t.Errorf("consistent flag %v does not match discrepancies %d", report.Consistent, report.Discrepancies)
			}
			if len(report.Investors) != len(tt.investors) {
				t.Errorf("expected %d investor rows, got %d", len(tt.investors), len(report.Investors))
			}
		})
	}
}

func TestReconciliationUseCase_CheckFundReportsDifference(t *testing.T) {
	ctrl := gomock.NewController(t)

	fundRepo := mocks.NewMockFundRepository(ctrl)
	investorRepo := mocks.NewMockInvestorRepository(ctrl)
	callRepo := mocks.NewMockCapitalCallRepository(ctrl)
	distRepo := mocks.NewMockDistributionRepository(ctrl)

	fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(testFund(), nil)
	investorRepo.EXPECT().ListAllByFund(gomock.Any(), "fund-1").Return([]*domain.Investor{
		testInvestor("inv-a", "60", "45.5", "0"),
	}, nil)
	callRepo.EXPECT().SumAllocationsByInvestor(gomock.Any(), "fund-1").Return(map[string]decimal.Decimal{"inv-a": d("40")}, nil)
	distRepo.EXPECT().SumByInvestor(gomock.Any(), "fund-1").Return(nil, nil)

	uc := usecase.NewReconciliationUseCase(fundRepo, investorRepo, callRepo, distRepo)
	report, err := uc.CheckFund(context.Background(), "fund-1")
	if !errors.Is(err, domain.ErrInconsistentFund) {
		t.Fatalf("expected ErrInconsistentFund, got %v", err)
	}

	row := report.Investors[0]
	if !row.CalledDifference.Equal(d("5.5")) {
		t.Errorf("expected called difference 5.5, got %s", row.CalledDifference)
	}
	if !row.DistributionDifference.IsZero() || row.IsReconciled {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestReconciliationUseCase_PropagatesRepositoryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)

	fundRepo := mocks.NewMockFundRepository(ctrl)
	investorRepo := mocks.NewMockInvestorRepository(ctrl)
	callRepo := mocks.NewMockCapitalCallRepository(ctrl)

	boom := errors.New("boom")
	fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(testFund(), nil)
	investorRepo.EXPECT().ListAllByFund(gomock.Any(), "fund-1").Return(nil, nil)
	callRepo.EXPECT().SumAllocationsByInvestor(gomock.Any(), "fund-1").Return(nil, boom)

	uc := usecase.NewReconciliationUseCase(fundRepo, investorRepo, callRepo, mocks.NewMockDistributionRepository(ctrl))
	if _, err := uc.CheckFund(context.Background(), "fund-1"); !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
