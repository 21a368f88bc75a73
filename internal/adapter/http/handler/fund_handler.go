package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// FundService defines the behavior needed by FundHandler.
type FundService interface {
	CreateFund(ctx context.Context, input usecase.CreateFundInput) (*domain.Fund, error)
	GetFund(ctx context.Context, id string) (*domain.Fund, error)
	ListFunds(ctx context.Context, limit, offset int) ([]*domain.Fund, error)
	OnboardInvestor(ctx context.Context, input usecase.OnboardInvestorInput) (*domain.Investor, error)
	GetInvestor(ctx context.Context, id string) (*domain.Investor, error)
	ListInvestors(ctx context.Context, fundID string, limit, offset int) ([]*domain.Investor, error)
}

// FundHandler handles fund and investor HTTP requests.
type FundHandler struct {
	fundUC FundService
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(fundUC FundService) *FundHandler {
	return &FundHandler{fundUC: fundUC}
}

// Create creates a new fund.
func (h *FundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fund terms", err.Error())
		return
	}

	fund, err := h.fundUC.CreateFund(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create fund", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FundFromDomain(fund))
}

// Get retrieves a fund by ID.
func (h *FundHandler) Get(w http.ResponseWriter, r *http.Request) {
	fund, err := h.fundUC.GetFund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get fund", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundFromDomain(fund))
}

// List lists funds.
func (h *FundHandler) List(w http.ResponseWriter, r *http.Request) {
	funds, err := h.fundUC.ListFunds(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list funds", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundsFromDomain(funds))
}

// OnboardInvestor adds an investor to the fund in the URL.
func (h *FundHandler) OnboardInvestor(w http.ResponseWriter, r *http.Request) {
	var req dto.OnboardInvestorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investor", err.Error())
		return
	}

	investor, err := h.fundUC.OnboardInvestor(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to onboard investor", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvestorFromDomain(investor))
}

// ListInvestors lists investors of the fund in the URL.
func (h *FundHandler) ListInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := h.fundUC.ListInvestors(r.Context(), chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list investors", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvestorsFromDomain(investors))
}

// GetInvestor retrieves an investor by ID.
func (h *FundHandler) GetInvestor(w http.ResponseWriter, r *http.Request) {
	investor, err := h.fundUC.GetInvestor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get investor", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvestorFromDomain(investor))
}
