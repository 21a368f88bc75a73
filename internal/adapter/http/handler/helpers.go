package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
)

const asOfDateLayout = "2006-01-02"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status code and writes it. Internal errors
// are logged with the request logger and their details are not exposed.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(message)
		writeError(w, status, message, "internal error")
		return
	}

	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrFundNotFound),
		errors.Is(err, domain.ErrInvestorNotFound),
		errors.Is(err, domain.ErrCapitalCallNotFound),
		errors.Is(err, domain.ErrDistributionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateInvestor),
		errors.Is(err, domain.ErrInconsistentFund):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCallExceedsUnfunded),
		errors.Is(err, domain.ErrNoInvestors):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidCommitments),
		errors.Is(err, domain.ErrInvalidFundName),
		errors.Is(err, domain.ErrInvalidInvestorName),
		errors.Is(err, domain.ErrInvalidCurrency):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseAsOf reads the optional as_of query parameter as a date or an RFC 3339 timestamp.
func parseAsOf(r *http.Request) (*time.Time, error) {
	val := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if val == "" {
		return nil, nil
	}

	if t, err := time.Parse(asOfDateLayout, val); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
