package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// CapitalCallService defines the behavior needed by CapitalCallHandler.
type CapitalCallService interface {
	IssueCapitalCall(ctx context.Context, input usecase.IssueCapitalCallInput) (*domain.CapitalCall, error)
	PreviewCapitalCall(ctx context.Context, fundID string, amount decimal.Decimal) (*domain.CapitalCall, error)
	GetCapitalCall(ctx context.Context, id string) (*domain.CapitalCall, error)
	ListCapitalCalls(ctx context.Context, fundID string, limit, offset int) ([]*domain.CapitalCall, error)
}

// CapitalCallHandler handles capital call HTTP requests.
type CapitalCallHandler struct {
	callUC CapitalCallService
}

// NewCapitalCallHandler creates a new CapitalCallHandler.
func NewCapitalCallHandler(callUC CapitalCallService) *CapitalCallHandler {
	return &CapitalCallHandler{callUC: callUC}
}

// Issue issues a capital call on the fund in the URL. With ?preview=true
// the allocation is computed and nothing is written.
func (h *CapitalCallHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueCapitalCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	if r.URL.Query().Get("preview") == "true" {
		call, err := h.callUC.PreviewCapitalCall(r.Context(), input.FundID, input.Amount)
		if err != nil {
			writeDomainError(w, r, "failed to preview capital call", err)
			return
		}

		call.DueDate = input.DueDate
		writeJSON(w, http.StatusOK, dto.CapitalCallFromDomain(call))
		return
	}

	call, err := h.callUC.IssueCapitalCall(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to issue capital call", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CapitalCallFromDomain(call))
}

// Get retrieves a capital call by ID.
func (h *CapitalCallHandler) Get(w http.ResponseWriter, r *http.Request) {
	call, err := h.callUC.GetCapitalCall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get capital call", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CapitalCallFromDomain(call))
}

// ListByFund lists capital calls of the fund in the URL.
func (h *CapitalCallHandler) ListByFund(w http.ResponseWriter, r *http.Request) {
	calls, err := h.callUC.ListCapitalCalls(r.Context(), chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list capital calls", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CapitalCallsFromDomain(calls))
}
