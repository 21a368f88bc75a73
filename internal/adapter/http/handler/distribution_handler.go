package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
)

// DistributionService defines the behavior needed by DistributionHandler.
type DistributionService interface {
	ExecuteDistribution(ctx context.Context, fundID string, proceeds decimal.Decimal) (*domain.Distribution, error)
	PreviewDistribution(ctx context.Context, fundID string, proceeds decimal.Decimal) (*domain.Distribution, error)
	GetDistribution(ctx context.Context, id string) (*domain.Distribution, error)
	ListDistributions(ctx context.Context, fundID string, limit, offset int) ([]*domain.Distribution, error)
}

// DistributionHandler handles distribution HTTP requests.
type DistributionHandler struct {
	distUC DistributionService
}

// NewDistributionHandler creates a new DistributionHandler.
func NewDistributionHandler(distUC DistributionService) *DistributionHandler {
	return &DistributionHandler{distUC: distUC}
}

// Execute runs the waterfall for the fund in the URL and records the result.
// With ?preview=true nothing is written.
func (h *DistributionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req dto.ExecuteDistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	proceeds, err := req.ProceedsDecimal()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proceeds", err.Error())
		return
	}

	fundID := chi.URLParam(r, "id")

	if r.URL.Query().Get("preview") == "true" {
		dist, err := h.distUC.PreviewDistribution(r.Context(), fundID, proceeds)
		if err != nil {
			writeDomainError(w, r, "failed to preview distribution", err)
			return
		}

		writeJSON(w, http.StatusOK, dto.DistributionFromDomain(dist))
		return
	}

	dist, err := h.distUC.ExecuteDistribution(r.Context(), fundID, proceeds)
	if err != nil {
		writeDomainError(w, r, "failed to execute distribution", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DistributionFromDomain(dist))
}

// Get retrieves a distribution by ID.
func (h *DistributionHandler) Get(w http.ResponseWriter, r *http.Request) {
	dist, err := h.distUC.GetDistribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get distribution", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionFromDomain(dist))
}

// ListByFund lists distributions of the fund in the URL.
func (h *DistributionHandler) ListByFund(w http.ResponseWriter, r *http.Request) {
	dists, err := h.distUC.ListDistributions(r.Context(), chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, "failed to list distributions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionsFromDomain(dists))
}
