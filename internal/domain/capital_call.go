package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalCallRequest asks investors to fund TotalAmount pro rata to their commitments.
type CapitalCallRequest struct {
	TotalAmount decimal.Decimal
	Commitments []InvestorCommitment
}

// CapitalCallAllocation is one investor's share of a capital call.
type CapitalCallAllocation struct {
	InvestorID string
	Amount     decimal.Decimal
	// SharePct is commitment / totalCommitted * 100, zero when nothing is committed.
	SharePct decimal.Decimal
}

// CapitalCall is an issued capital call with its per-investor allocations.
type CapitalCall struct {
	ID          string
	FundID      string
	Amount      decimal.Decimal
	Allocations []CapitalCallAllocation
	DueDate     *time.Time
	CreatedAt   time.Time
}

// AllocatedTotal sums the allocation amounts.
func (c *CapitalCall) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
