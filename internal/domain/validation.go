package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidFundName     = errors.New("invalid fund name")
	ErrInvalidInvestorName = errors.New("invalid investor name")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidRate         = errors.New("invalid rate")
	ErrInvalidCommitments  = errors.New("invalid commitments")
	ErrAmountTooLarge      = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall      = errors.New("amount below minimum allowed")
	ErrAmountPrecision     = errors.New("amount has more than two decimal places")
)

// Validation constants
const (
	MaxNameLength     = 255
	MinNameLength     = 1
	MaxAmount         = "1000000000000" // 1 trillion
	MinPositiveAmount = "0.01"
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "HKD": true, "AED": true, "DKK": true,
}

func validateName(name string, sentinel error) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", sentinel)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", sentinel, MaxNameLength)
	}

	return nil
}

// ValidateFundName validates fund name
func ValidateFundName(name string) error {
	return validateName(name, ErrInvalidFundName)
}

// ValidateInvestorName validates investor name
func ValidateInvestorName(name string) error {
	return validateName(name, ErrInvalidInvestorName)
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a non-negative money amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	if !amount.Equal(RoundMoney(amount)) {
		return ErrAmountPrecision
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidatePositiveAmount validates an amount that must move at least one cent.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	minAmount, _ := decimal.NewFromString(MinPositiveAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinPositiveAmount)
	}

	return nil
}

// ValidateRatePct validates a percentage in [0, 100].
func ValidateRatePct(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(Hundred) {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %s", ErrInvalidRate, field, pct.String())
	}
	return nil
}

// ValidateCarryPct validates a carried interest rate in [0, 100).
// 100% carry would make the catch-up target unbounded.
func ValidateCarryPct(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThanOrEqual(Hundred) {
		return fmt.Errorf("%w: carried_interest must be at least 0 and below 100, got %s", ErrInvalidRate, pct.String())
	}
	return nil
}

// ValidateCommitments validates a commitment table before it reaches the engine.
func ValidateCommitments(commitments []InvestorCommitment) error {
	if len(commitments) == 0 {
		return fmt.Errorf("%w: at least one investor is required", ErrInvalidCommitments)
	}

	seen := make(map[string]bool, len(commitments))
	for _, c := range commitments {
		if strings.TrimSpace(c.InvestorID) == "" {
			return fmt.Errorf("%w: investor id cannot be empty", ErrInvalidCommitments)
		}
		if seen[c.InvestorID] {
			return fmt.Errorf("%w: duplicate investor %s", ErrInvalidCommitments, c.InvestorID)
		}
		seen[c.InvestorID] = true

		if c.Commitment.IsNegative() {
			return fmt.Errorf("%w: investor %s has a negative commitment", ErrInvalidCommitments, c.InvestorID)
		}
	}

	return nil
}

// ValidateWaterfallInput validates everything the service layer checks before running a waterfall.
func ValidateWaterfallInput(in WaterfallInput) error {
	if err := ValidateAmount(in.TotalProceeds); err != nil {
		return err
	}
	if err := ValidateRatePct("preferred_return", in.PreferredReturnPct); err != nil {
		return err
	}
	if err := ValidateCarryPct(in.CarriedInterestPct); err != nil {
		return err
	}
	if err := ValidateRatePct("catch_up", in.CatchUpPct); err != nil {
		return err
	}
	return ValidateCommitments(in.Commitments)
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
