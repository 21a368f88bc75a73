package domain

import "errors"

var (
	// Fund errors
	ErrFundNotFound     = errors.New("fund not found")
	ErrNoInvestors      = errors.New("fund has no investors")
	ErrInconsistentFund = errors.New("fund is inconsistent: investor balances do not match events")

	// Investor errors
	ErrInvestorNotFound    = errors.New("investor not found")
	ErrDuplicateInvestor   = errors.New("investor already registered in fund")
	ErrCallExceedsUnfunded = errors.New("capital call exceeds unfunded commitment")

	// Event errors
	ErrCapitalCallNotFound  = errors.New("capital call not found")
	ErrDistributionNotFound = errors.New("distribution not found")
	ErrInvalidAmount        = errors.New("amount must not be negative")
)
