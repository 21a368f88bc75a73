package engine

import (
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

const sharePrecision int32 = 4

// AllocateCapitalCall splits totalAmount across investors pro rata to committed capital.
//
// One allocation is returned per commitment, in input order. When nothing is
// committed every allocation is zero. A negative total is treated as zero.
// Rounding follows the largest-remainder policy of splitLargestRemainder.
func AllocateCapitalCall(totalAmount decimal.Decimal, commitments []domain.InvestorCommitment) []domain.CapitalCallAllocation {
	if totalAmount.IsNegative() {
		totalAmount = decimal.Zero
	}

	weights, sum := weightsOf(commitments)
	amounts := splitLargestRemainder(totalAmount, weights, sum)

	allocations := make([]domain.CapitalCallAllocation, len(commitments))
	for i, c := range commitments {
		share := decimal.Zero
		if sum.IsPositive() {
			share = weights[i].Mul(domain.Hundred).DivRound(sum, sharePrecision)
		}

		allocations[i] = domain.CapitalCallAllocation{
			InvestorID: c.InvestorID,
			Amount:     amounts[i],
			SharePct:   share,
		}
	}

	return allocations
}

// AllocateRequest is AllocateCapitalCall over a CapitalCallRequest.
func AllocateRequest(req domain.CapitalCallRequest) []domain.CapitalCallAllocation {
	return AllocateCapitalCall(req.TotalAmount, req.Commitments)
}
