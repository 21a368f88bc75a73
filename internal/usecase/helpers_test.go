package usecase_test

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase/mocks"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSequentialIDGen(ctrl *gomock.Controller, prefix string) *mocks.MockIDGenerator {
	idGen := mocks.NewMockIDGenerator(ctrl)
	n := 0
	idGen.EXPECT().Generate().DoAndReturn(func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}).AnyTimes()
	return idGen
}

// expectTx wires one transaction that is always rolled back on exit and committed only when commit is true.
func expectTx(ctrl *gomock.Controller, txMgr *mocks.MockTransactionManager, commit bool) *mocks.MockTransaction {
	tx := mocks.NewMockTransaction(ctrl)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	if commit {
		tx.EXPECT().Commit(gomock.Any()).Return(nil)
	}
	return tx
}

func newPassthroughRetrier(ctrl *gomock.Controller) *mocks.MockRetrier {
	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, operation func() error) error {
			return operation()
		},
	).AnyTimes()
	return retrier
}

func testFund() *domain.Fund {
	return &domain.Fund{
		ID:       "fund-1",
		Name:     "Growth Fund I",
		Currency: "USD",
		Terms:    domain.DefaultFundTerms(),
	}
}

func testInvestor(id, commitment, called, distributed string) *domain.Investor {
	return &domain.Investor{
		ID:                    id,
		FundID:                "fund-1",
		Name:                  "Investor " + id,
		Domicile:              "Cayman Islands",
		Commitment:            d(commitment),
		CalledCapital:         d(called),
		DistributionsReceived: d(distributed),
		Version:               1,
	}
}
