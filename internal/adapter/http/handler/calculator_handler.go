package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/engine"
)

// CalculatorHandler exposes the engine without touching storage.
type CalculatorHandler struct {
	attributor *engine.Attributor
	now        func() time.Time
}

// NewCalculatorHandler creates a new CalculatorHandler with the given attribution policy.
func NewCalculatorHandler(cfg engine.AttributionConfig) *CalculatorHandler {
	return &CalculatorHandler{
		attributor: engine.NewAttributor(cfg),
		now:        time.Now,
	}
}

// CapitalCall allocates a capital call pro rata over a commitment table.
func (h *CalculatorHandler) CapitalCall(w http.ResponseWriter, r *http.Request) {
	var req dto.CapitalCallCalculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	callReq, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid capital call", err.Error())
		return
	}

	if err := domain.ValidateAmount(callReq.TotalAmount); err != nil {
		writeDomainError(w, r, "invalid capital call", err)
		return
	}
	if err := domain.ValidateCommitments(callReq.Commitments); err != nil {
		writeDomainError(w, r, "invalid capital call", err)
		return
	}

	allocations := engine.AllocateRequest(callReq)

	writeJSON(w, http.StatusOK, dto.CapitalCallResponse{
		Amount:      callReq.TotalAmount,
		Allocations: dto.AllocationsFromDomain(allocations),
	})
}

// Waterfall runs the four-tier distribution waterfall.
func (h *CalculatorHandler) Waterfall(w http.ResponseWriter, r *http.Request) {
	var req dto.WaterfallCalculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid waterfall input", err.Error())
		return
	}

	if err := domain.ValidateWaterfallInput(in); err != nil {
		writeDomainError(w, r, "invalid waterfall input", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WaterfallFromDomain(engine.CalculateWaterfall(in)))
}

// Attribution computes performance metrics for a single investor record.
func (h *CalculatorHandler) Attribution(w http.ResponseWriter, r *http.Request) {
	var req dto.AttributionCalculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, hurdle, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investor record", err.Error())
		return
	}

	if err := validateRecord(record); err != nil {
		writeDomainError(w, r, "invalid investor record", err)
		return
	}

	asOf := h.now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	attributor := h.attributor
	if hurdle != nil {
		if err := domain.ValidateRatePct("hurdle_rate_pct", *hurdle); err != nil {
			writeDomainError(w, r, "invalid investor record", err)
			return
		}
		cfg := h.attributor.Config()
		cfg.HurdleRatePct = hurdle.InexactFloat64()
		attributor = engine.NewAttributor(cfg)
	}

	writeJSON(w, http.StatusOK, dto.AttributionFromDomain(attributor.Calculate(record, asOf)))
}

// Withholding returns the treaty withholding rate for the domicile in the URL.
func (h *CalculatorHandler) Withholding(w http.ResponseWriter, r *http.Request) {
	domicile := strings.TrimSpace(chi.URLParam(r, "domicile"))
	_, listed := engine.LookupWithholdingRate(domicile)

	writeJSON(w, http.StatusOK, dto.WithholdingResponse{
		Domicile: domicile,
		RatePct:  engine.WithholdingTaxRate(domicile),
		Default:  !listed,
	})
}

func validateRecord(record domain.InvestorRecord) error {
	if err := domain.ValidateAmount(record.Commitment); err != nil {
		return err
	}
	if err := domain.ValidateAmount(record.CalledCapital); err != nil {
		return err
	}
	if err := domain.ValidateAmount(record.DistributionsReceived); err != nil {
		return err
	}
	if record.EffectiveTaxRatePct != nil {
		return domain.ValidateRatePct("effective_tax_rate_pct", *record.EffectiveTaxRatePct)
	}
	return nil
}
