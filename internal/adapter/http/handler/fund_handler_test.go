package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

type fundServiceStub struct {
	createFn        func(ctx context.Context, input usecase.CreateFundInput) (*domain.Fund, error)
	getFn           func(ctx context.Context, id string) (*domain.Fund, error)
	listFn          func(ctx context.Context, limit, offset int) ([]*domain.Fund, error)
	onboardFn       func(ctx context.Context, input usecase.OnboardInvestorInput) (*domain.Investor, error)
	getInvestorFn   func(ctx context.Context, id string) (*domain.Investor, error)
	listInvestorsFn func(ctx context.Context, fundID string, limit, offset int) ([]*domain.Investor, error)
}

func (s *fundServiceStub) CreateFund(ctx context.Context, input usecase.CreateFundInput) (*domain.Fund, error) {
	return s.createFn(ctx, input)
}

func (s *fundServiceStub) GetFund(ctx context.Context, id string) (*domain.Fund, error) {
	return s.getFn(ctx, id)
}

func (s *fundServiceStub) ListFunds(ctx context.Context, limit, offset int) ([]*domain.Fund, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *fundServiceStub) OnboardInvestor(ctx context.Context, input usecase.OnboardInvestorInput) (*domain.Investor, error) {
	return s.onboardFn(ctx, input)
}

func (s *fundServiceStub) GetInvestor(ctx context.Context, id string) (*domain.Investor, error) {
	return s.getInvestorFn(ctx, id)
}

func (s *fundServiceStub) ListInvestors(ctx context.Context, fundID string, limit, offset int) ([]*domain.Investor, error) {
	return s.listInvestorsFn(ctx, fundID, limit, offset)
}

func TestFundHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateFundInput
	h := NewFundHandler(&fundServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateFundInput) (*domain.Fund, error) {
			captured = input
			return &domain.Fund{ID: "fund-1", Name: input.Name, Currency: "USD", Terms: *input.Terms}, nil
		},
	})

	body := `{"name":"Growth I","currency":"usd","terms":{"carried_interest_pct":"25","management_fee_offset":true}}`
	req := httptest.NewRequest(http.MethodPost, "/funds", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Terms == nil {
		t.Fatalf("expected terms to be passed through")
	}
	if !captured.Terms.CarriedInterestPct.Equal(d("25")) || !captured.Terms.PreferredReturnPct.Equal(d("8")) {
		t.Fatalf("expected carry override on default terms, got %+v", captured.Terms)
	}

	var resp dto.FundResponse
	decodeBody(t, rec, &resp)
	if resp.ID != "fund-1" || !resp.Terms.ManagementFeeOffset {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestFundHandler_Create_InvalidTerms(t *testing.T) {
	h := NewFundHandler(&fundServiceStub{})

	body := `{"name":"Growth I","currency":"USD","terms":{"catch_up_pct":"lots"}}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/funds", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFundHandler_Create_ValidationError(t *testing.T) {
	h := NewFundHandler(&fundServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateFundInput) (*domain.Fund, error) {
			return nil, domain.ErrInvalidCurrency
		},
	})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/funds", strings.NewReader(`{"name":"X","currency":"XXX"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFundHandler_Get_NotFound(t *testing.T) {
	h := NewFundHandler(&fundServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Fund, error) {
			return nil, domain.ErrFundNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/funds/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFundHandler_List_PassesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	h := NewFundHandler(&fundServiceStub{
		listFn: func(ctx context.Context, limit, offset int) ([]*domain.Fund, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.Fund{{ID: "fund-1"}, {ID: "fund-2"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/funds?limit=5&offset=10", nil))

	if gotLimit != 5 || gotOffset != 10 {
		t.Fatalf("expected limit=5 offset=10, got %d/%d", gotLimit, gotOffset)
	}

	var resp dto.ListFundsResponse
	decodeBody(t, rec, &resp)
	if resp.Total != 2 {
		t.Fatalf("expected 2 funds, got %d", resp.Total)
	}
}

func TestFundHandler_OnboardInvestor(t *testing.T) {
	var captured usecase.OnboardInvestorInput
	h := NewFundHandler(&fundServiceStub{
		onboardFn: func(ctx context.Context, input usecase.OnboardInvestorInput) (*domain.Investor, error) {
			captured = input
			return &domain.Investor{
				ID:          "inv-1",
				FundID:      input.FundID,
				Name:        input.Name,
				Commitment:  input.Commitment,
				OnboardedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Version:     1,
			}, nil
		},
	})

	body := `{"name":"Pension","domicile":"US","commitment":"1000000.00","effective_tax_rate_pct":"21"}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/funds/fund-1/investors", strings.NewReader(body)), "id", "fund-1")
	rec := httptest.NewRecorder()
	h.OnboardInvestor(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.FundID != "fund-1" || !captured.Commitment.Equal(d("1000000")) {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.EffectiveTaxRatePct == nil || !captured.EffectiveTaxRatePct.Equal(d("21")) {
		t.Fatalf("expected tax rate 21, got %v", captured.EffectiveTaxRatePct)
	}

	var resp dto.InvestorResponse
	decodeBody(t, rec, &resp)
	if !resp.Unfunded.Equal(d("1000000")) {
		t.Fatalf("expected unfunded to equal commitment, got %s", resp.Unfunded)
	}
}

func TestFundHandler_OnboardInvestor_Duplicate(t *testing.T) {
	h := NewFundHandler(&fundServiceStub{
		onboardFn: func(ctx context.Context, input usecase.OnboardInvestorInput) (*domain.Investor, error) {
			return nil, domain.ErrDuplicateInvestor
		},
	})

	body := `{"name":"Pension","domicile":"US","commitment":"10"}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/funds/fund-1/investors", strings.NewReader(body)), "id", "fund-1")
	rec := httptest.NewRecorder()
	h.OnboardInvestor(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestFundHandler_OnboardInvestor_MissingCommitment(t *testing.T) {
	h := NewFundHandler(&fundServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/funds/fund-1/investors", strings.NewReader(`{"name":"Pension"}`)), "id", "fund-1")
	rec := httptest.NewRecorder()
	h.OnboardInvestor(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
