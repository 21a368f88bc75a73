package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// AttributionService defines the behavior needed by AttributionHandler.
type AttributionService interface {
	InvestorAttribution(ctx context.Context, investorID string, asOf *time.Time) (*domain.AttributionMetrics, error)
	FundAttribution(ctx context.Context, fundID string, asOf *time.Time) (*domain.FundAttribution, error)
}

// ReconciliationService defines the behavior needed by AttributionHandler for reconciliation.
type ReconciliationService interface {
	CheckFund(ctx context.Context, fundID string) (*usecase.FundReconciliationReport, error)
}

// AttributionHandler serves performance and reconciliation reports.
type AttributionHandler struct {
	attributionUC    AttributionService
	reconciliationUC ReconciliationService
}

// NewAttributionHandler creates a new AttributionHandler.
func NewAttributionHandler(attributionUC AttributionService, reconciliationUC ReconciliationService) *AttributionHandler {
	return &AttributionHandler{
		attributionUC:    attributionUC,
		reconciliationUC: reconciliationUC,
	}
}

// Investor returns attribution for the investor in the URL.
func (h *AttributionHandler) Investor(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	metrics, err := h.attributionUC.InvestorAttribution(r.Context(), chi.URLParam(r, "id"), asOf)
	if err != nil {
		writeDomainError(w, r, "failed to calculate attribution", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AttributionFromDomain(*metrics))
}

// Fund returns pooled attribution for the fund in the URL.
func (h *AttributionHandler) Fund(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	fund, err := h.attributionUC.FundAttribution(r.Context(), chi.URLParam(r, "id"), asOf)
	if err != nil {
		writeDomainError(w, r, "failed to calculate fund attribution", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundAttributionFromDomain(fund))
}

// Reconcile checks the fund in the URL. An unbalanced fund is still a
// successful report; the body carries consistent=false.
func (h *AttributionHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.CheckFund(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, domain.ErrInconsistentFund) {
		writeDomainError(w, r, "failed to reconcile fund", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromReport(report))
}
