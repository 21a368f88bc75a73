package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
	"github.com/iho/fundflow/internal/usecase/mocks"
)

type distributionMocks struct {
	txMgr        *mocks.MockTransactionManager
	fundRepo     *mocks.MockFundRepository
	investorRepo *mocks.MockInvestorRepository
	distRepo     *mocks.MockDistributionRepository
	outboxRepo   *mocks.MockOutboxRepository
	metrics      *mocks.MockMetrics
}

func newDistributionUseCase(ctrl *gomock.Controller) (*usecase.DistributionUseCase, distributionMocks) {
	m := distributionMocks{
		txMgr:        mocks.NewMockTransactionManager(ctrl),
		fundRepo:     mocks.NewMockFundRepository(ctrl),
		investorRepo: mocks.NewMockInvestorRepository(ctrl),
		distRepo:     mocks.NewMockDistributionRepository(ctrl),
		outboxRepo:   mocks.NewMockOutboxRepository(ctrl),
		metrics:      mocks.NewMockMetrics(ctrl),
	}
	uc := usecase.NewDistributionUseCase(
		m.txMgr, m.fundRepo, m.investorRepo, m.distRepo, m.outboxRepo,
		newSequentialIDGen(ctrl, "id"), newPassthroughRetrier(ctrl), m.metrics, zerolog.Nop(),
	)
	return uc, m
}

func TestDistributionUseCase_ExecuteDistribution(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newDistributionUseCase(ctrl)

	m.fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(testFund(), nil)
	tx := expectTx(ctrl, m.txMgr, true)
	m.investorRepo.EXPECT().ListByFundForUpdate(gomock.Any(), tx, "fund-1").Return([]*domain.Investor{
		testInvestor("inv-a", "60", "60", "0"),
		testInvestor("inv-b", "40", "40", "10"),
	}, nil)

	var stored *domain.Distribution
	m.distRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, dist *domain.Distribution) error {
			stored = dist
			return nil
		},
	)

	received := map[string]decimal.Decimal{}
	m.investorRepo.EXPECT().UpdateCapital(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, inv *domain.Investor) error {
			received[inv.ID] = inv.DistributionsReceived
			return nil
		},
	).Times(2)

	m.outboxRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, event *domain.OutboxEvent) error {
			if event.EventType != domain.EventTypeDistributionExecuted {
				t.Fatalf("unexpected event type %s", event.EventType)
			}
			if event.Payload["gp_carry"] != "6" {
				t.Fatalf("expected carry 6 in payload, got %v", event.Payload["gp_carry"])
			}
			return nil
		},
	)
	m.metrics.EXPECT().DistributionExecuted(gomock.Any(), gomock.Any(), gomock.Any())

	dist, err := uc.ExecuteDistribution(context.Background(), "fund-1", d("130"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored != dist {
		t.Fatalf("expected the stored distribution to be returned")
	}
	if !dist.Result.GPCarry.Equal(d("6")) {
		t.Errorf("expected carry 6, got %s", dist.Result.GPCarry)
	}
	if !received["inv-a"].Equal(d("74.4")) {
		t.Errorf("expected inv-a to have received 74.4, got %s", received["inv-a"])
	}
	// 10 from an earlier distribution plus 49.6
	if !received["inv-b"].Equal(d("59.6")) {
		t.Errorf("expected inv-b to have received 59.6, got %s", received["inv-b"])
	}
}

func TestDistributionUseCase_ExecuteErrors(t *testing.T) {
	t.Run("negative proceeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, _ := newDistributionUseCase(ctrl)

		_, err := uc.ExecuteDistribution(context.Background(), "fund-1", d("-5"))
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("sub-cent proceeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, _ := newDistributionUseCase(ctrl)

		_, err := uc.ExecuteDistribution(context.Background(), "fund-1", d("10.001"))
		if !errors.Is(err, domain.ErrAmountPrecision) {
			t.Fatalf("expected ErrAmountPrecision, got %v", err)
		}
	})

	t.Run("no investors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newDistributionUseCase(ctrl)
		m.fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(testFund(), nil)
		tx := expectTx(ctrl, m.txMgr, false)
		m.investorRepo.EXPECT().ListByFundForUpdate(gomock.Any(), tx, "fund-1").Return([]*domain.Investor{}, nil)

		_, err := uc.ExecuteDistribution(context.Background(), "fund-1", d("100"))
		if !errors.Is(err, domain.ErrNoInvestors) {
			t.Fatalf("expected ErrNoInvestors, got %v", err)
		}
	})

	t.Run("repository failure rolls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newDistributionUseCase(ctrl)
		storeErr := errors.New("disk full")

		m.fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(testFund(), nil)
		tx := expectTx(ctrl, m.txMgr, false)
		m.investorRepo.EXPECT().ListByFundForUpdate(gomock.Any(), tx, "fund-1").Return([]*domain.Investor{
			testInvestor("inv-a", "100", "100", "0"),
		}, nil)
		m.distRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(storeErr)

		_, err := uc.ExecuteDistribution(context.Background(), "fund-1", d("100"))
		if !errors.Is(err, storeErr) {
			t.Fatalf("expected repository error, got %v", err)
		}
	})
}

func TestDistributionUseCase_PreviewUsesFundTerms(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newDistributionUseCase(ctrl)

	fund := testFund()
	fund.Terms.CatchUpPct = decimal.Zero
	m.fundRepo.EXPECT().GetByID(gomock.Any(), "fund-1").Return(fund, nil)
	m.investorRepo.EXPECT().ListAllByFund(gomock.Any(), "fund-1").Return([]*domain.Investor{
		testInvestor("inv-a", "100", "100", "0"),
	}, nil)

	dist, err := uc.PreviewDistribution(context.Background(), "fund-1", d("130"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !dist.Result.Tiers[2].Amount.IsZero() {
		t.Errorf("expected no catch-up, got %s", dist.Result.Tiers[2].Amount)
	}
	if !dist.Result.GPCarry.Equal(d("4.4")) {
		t.Errorf("expected carry 4.4, got %s", dist.Result.GPCarry)
	}
}
