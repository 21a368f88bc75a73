package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

type attributionServiceStub struct {
	investorFn func(ctx context.Context, investorID string, asOf *time.Time) (*domain.AttributionMetrics, error)
	fundFn     func(ctx context.Context, fundID string, asOf *time.Time) (*domain.FundAttribution, error)
}

func (s *attributionServiceStub) InvestorAttribution(ctx context.Context, investorID string, asOf *time.Time) (*domain.AttributionMetrics, error) {
	return s.investorFn(ctx, investorID, asOf)
}

func (s *attributionServiceStub) FundAttribution(ctx context.Context, fundID string, asOf *time.Time) (*domain.FundAttribution, error) {
	return s.fundFn(ctx, fundID, asOf)
}

type reconciliationServiceStub struct {
	report *usecase.FundReconciliationReport
	err    error
}

func (s *reconciliationServiceStub) CheckFund(ctx context.Context, fundID string) (*usecase.FundReconciliationReport, error) {
	return s.report, s.err
}

func TestAttributionHandler_InvestorPassesAsOf(t *testing.T) {
	var gotAsOf *time.Time
	h := NewAttributionHandler(&attributionServiceStub{
		investorFn: func(ctx context.Context, investorID string, asOf *time.Time) (*domain.AttributionMetrics, error) {
			gotAsOf = asOf
			return &domain.AttributionMetrics{InvestorID: investorID, TVPI: d("1.1"), NAV: d("11")}, nil
		},
	}, &reconciliationServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/investors/inv-1/attribution?as_of=2026-06-30", nil), "id", "inv-1")
	rec := httptest.NewRecorder()
	h.Investor(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotAsOf == nil || !gotAsOf.Equal(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected as_of %v", gotAsOf)
	}

	var resp dto.AttributionResponse
	decodeBody(t, rec, &resp)
	if resp.InvestorID != "inv-1" || !resp.TVPI.Equal(d("1.1")) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAttributionHandler_InvestorRejectsBadAsOf(t *testing.T) {
	h := NewAttributionHandler(&attributionServiceStub{
		investorFn: func(ctx context.Context, investorID string, asOf *time.Time) (*domain.AttributionMetrics, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}, &reconciliationServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/investors/inv-1/attribution?as_of=yesterday", nil), "id", "inv-1")
	rec := httptest.NewRecorder()
	h.Investor(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAttributionHandler_Fund(t *testing.T) {
	h := NewAttributionHandler(&attributionServiceStub{
		fundFn: func(ctx context.Context, fundID string, asOf *time.Time) (*domain.FundAttribution, error) {
			if asOf != nil {
				t.Fatalf("expected no as_of, got %v", asOf)
			}
			return &domain.FundAttribution{
				FundID:    fundID,
				TVPI:      d("1.2"),
				Investors: []domain.AttributionMetrics{{InvestorID: "inv-a"}, {InvestorID: "inv-b"}},
			}, nil
		},
	}, &reconciliationServiceStub{})

	rec := httptest.NewRecorder()
	h.Fund(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/funds/fund-1/attribution", nil), "id", "fund-1"))

	var resp dto.FundAttributionResponse
	decodeBody(t, rec, &resp)
	if resp.FundID != "fund-1" || len(resp.Investors) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAttributionHandler_FundNotFound(t *testing.T) {
	h := NewAttributionHandler(&attributionServiceStub{
		fundFn: func(ctx context.Context, fundID string, asOf *time.Time) (*domain.FundAttribution, error) {
			return nil, domain.ErrFundNotFound
		},
	}, &reconciliationServiceStub{})

	rec := httptest.NewRecorder()
	h.Fund(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/funds/x/attribution", nil), "id", "x"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAttributionHandler_ReconcileConsistent(t *testing.T) {
	h := NewAttributionHandler(&attributionServiceStub{}, &reconciliationServiceStub{
		report: &usecase.FundReconciliationReport{
			FundID:     "fund-1",
			Consistent: true,
			Investors: []*usecase.InvestorReconciliation{
				{InvestorID: "inv-a", RecordedCalled: d("60"), AllocatedCalled: d("60"), IsReconciled: true},
			},
		},
	})

	rec := httptest.NewRecorder()
	h.Reconcile(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/funds/fund-1/reconciliation", nil), "id", "fund-1"))

	var resp dto.ReconciliationResponse
	decodeBody(t, rec, &resp)
	if rec.Code != http.StatusOK || !resp.Consistent || len(resp.Investors) != 1 {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestAttributionHandler_ReconcileInconsistentIsStillReported(t *testing.T) {
	h := NewAttributionHandler(&attributionServiceStub{}, &reconciliationServiceStub{
		report: &usecase.FundReconciliationReport{
			FundID:        "fund-1",
			Discrepancies: 1,
			Investors: []*usecase.InvestorReconciliation{
				{InvestorID: "inv-a", RecordedCalled: d("70"), AllocatedCalled: d("60"), CalledDifference: d("10")},
			},
		},
		err: fmt.Errorf("%w: 1 discrepancies", domain.ErrInconsistentFund),
	})

	rec := httptest.NewRecorder()
	h.Reconcile(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/funds/fund-1/reconciliation", nil), "id", "fund-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ReconciliationResponse
	decodeBody(t, rec, &resp)
	if resp.Consistent || resp.Discrepancies != 1 || !resp.Investors[0].CalledDifference.Equal(d("10")) {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestAttributionHandler_ReconcileFundNotFound(t *testing.T) {
	h := NewAttributionHandler(&attributionServiceStub{}, &reconciliationServiceStub{err: domain.ErrFundNotFound})

	rec := httptest.NewRecorder()
	h.Reconcile(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/funds/x/reconciliation", nil), "id", "x"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
